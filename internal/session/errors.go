package session

import "errors"

var (
	// ErrTimeout is returned when an expected prompt does not appear in time.
	ErrTimeout = errors.New("timed out waiting for prompt")
	// ErrClosed is returned when the terminal stream ends before a prompt.
	ErrClosed = errors.New("terminal stream closed")
	// ErrSpawn wraps failures to start the remote terminal.
	ErrSpawn = errors.New("failed to start remote terminal")
	// ErrLabelNotFound is returned when a labelled field is missing from
	// device output.
	ErrLabelNotFound = errors.New("label not found in device output")
)
