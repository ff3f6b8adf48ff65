package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// loadManifest reads and validates the YAML manifest, ensuring the presence of
// required top-level fields (name, description) and that every command has a
// non-empty command string, a known mode and a parseable timeout.
func loadManifest(path string) (*manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mf := &manifest{}
	if err := yamlUnmarshal(b, mf); err != nil {
		return nil, err
	}
	if mf.Name == "" {
		return nil, errors.New("manifest.name is required")
	}
	if mf.Description == "" {
		return nil, errors.New("manifest.description is required")
	}
	for i, c := range mf.Commands {
		if strings.TrimSpace(c.Command) == "" {
			return nil, fmt.Errorf("commands[%d].command is required", i)
		}
		if strings.TrimSpace(c.Mode) == "" {
			return nil, fmt.Errorf("commands[%d].mode is required (vendor or general)", i)
		}
		if _, err := c.mode(); err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		if c.Timeout != "" {
			d, err := time.ParseDuration(c.Timeout)
			if err != nil {
				return nil, fmt.Errorf("commands[%d].timeout: %w", i, err)
			}
			if d <= 0 {
				return nil, fmt.Errorf("commands[%d].timeout must be positive, got %s", i, c.Timeout)
			}
		}
	}
	return mf, nil
}

// steps converts the manifest commands into session steps. The manifest
// must already have been validated by loadManifest.
func (mf *manifest) steps() []session.Step {
	out := make([]session.Step, 0, len(mf.Commands))
	for _, c := range mf.Commands {
		m, _ := c.mode()
		out = append(out, session.Step{Mode: m, Command: c.line()})
	}
	return out
}
