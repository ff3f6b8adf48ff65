package cmd

import (
	"strings"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// line builds the fully rendered command line by appending arguments with
// safe shell quoting.
func (c *commandEntry) line() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	quoted := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		quoted = append(quoted, session.ShellQuote(a))
	}
	return strings.TrimSpace(c.Command + " " + strings.Join(quoted, " "))
}
