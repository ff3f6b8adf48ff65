package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"
)

// closeWait bounds how long close waits for the reader goroutine to notice
// the transport went away.
const closeWait = time.Second

// pattern is either a literal string or a compiled regular expression.
type pattern struct {
	literal string
	re      *regexp.Regexp
}

func literal(s string) pattern { return pattern{literal: s} }

func regex(re *regexp.Regexp) pattern { return pattern{re: re} }

// find returns the bounds of the first match in b, or -1, -1.
func (p pattern) find(b []byte) (int, int) {
	if p.re != nil {
		loc := p.re.FindIndex(b)
		if loc == nil {
			return -1, -1
		}
		return loc[0], loc[1]
	}
	i := bytes.Index(b, []byte(p.literal))
	if i < 0 {
		return -1, -1
	}
	return i, i + len(p.literal)
}

func (p pattern) String() string {
	if p.re != nil {
		return p.re.String()
	}
	return fmt.Sprintf("%q", p.literal)
}

func describe(patterns []pattern) string {
	s := make([]string, len(patterns))
	for i, p := range patterns {
		s[i] = p.String()
	}
	return strings.Join(s, " or ")
}

// expecter buffers everything read from a terminal stream and lets callers
// block until a prompt shows up. A single goroutine drains the transport so
// writes never stall behind unread output.
type expecter struct {
	rw io.ReadWriteCloser

	debugMu sync.Mutex
	debug   io.Writer

	mu     sync.Mutex
	buf    []byte
	err    error
	notify chan struct{}
	done   chan struct{}
}

func newExpecter(rw io.ReadWriteCloser, debug io.Writer) *expecter {
	e := &expecter{
		rw:     rw,
		debug:  debug,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go e.pump()
	return e
}

func (e *expecter) pump() {
	defer close(e.done)
	chunk := make([]byte, 32*1024)
	for {
		n, err := e.rw.Read(chunk)
		if n > 0 {
			e.mirror(chunk[:n])
			e.mu.Lock()
			e.buf = append(e.buf, chunk[:n]...)
			e.mu.Unlock()
			e.signal()
		}
		if err != nil {
			e.mu.Lock()
			e.err = err
			e.mu.Unlock()
			e.signal()
			return
		}
	}
}

func (e *expecter) signal() {
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *expecter) mirror(b []byte) {
	if e.debug == nil {
		return
	}
	e.debugMu.Lock()
	_, _ = e.debug.Write(b)
	e.debugMu.Unlock()
}

// match looks for the earliest match among patterns; ties go to the pattern
// listed first. On success the buffer is consumed through the match.
// Callers hold e.mu.
func (e *expecter) match(patterns []pattern) (int, string, bool) {
	best, bestStart, bestEnd := -1, -1, -1
	for i, p := range patterns {
		start, end := p.find(e.buf)
		if start < 0 {
			continue
		}
		if best < 0 || start < bestStart {
			best, bestStart, bestEnd = i, start, end
		}
	}
	if best < 0 {
		return -1, "", false
	}
	before := string(e.buf[:bestStart])
	e.buf = e.buf[bestEnd:]
	return best, before, true
}

// expect waits until one of patterns appears in the unread output and
// returns its index with the text printed before it. A timeout <= 0 waits
// until the stream ends or ctx is done.
func (e *expecter) expect(ctx context.Context, timeout time.Duration, patterns ...pattern) (int, string, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}
	for {
		e.mu.Lock()
		idx, before, ok := e.match(patterns)
		streamErr := e.err
		e.mu.Unlock()
		if ok {
			return idx, before, nil
		}
		if streamErr != nil {
			return -1, "", fmt.Errorf("%w while waiting for %s: %w", ErrClosed, describe(patterns), streamErr)
		}
		select {
		case <-e.notify:
		case <-deadline:
			return -1, "", fmt.Errorf("%w %s after %s", ErrTimeout, describe(patterns), timeout)
		case <-ctx.Done():
			return -1, "", ctx.Err()
		}
	}
}

// sendLine writes s followed by a newline.
func (e *expecter) sendLine(s string) error {
	line := s + "\n"
	e.mirror([]byte(line))
	if _, err := io.WriteString(e.rw, line); err != nil {
		return fmt.Errorf("send %q: %w", s, err)
	}
	return nil
}

// close shuts the transport and waits briefly for the reader to exit.
func (e *expecter) close() error {
	err := e.rw.Close()
	select {
	case <-e.done:
	case <-time.After(closeWait):
	}
	return err
}
