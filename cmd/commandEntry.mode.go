package cmd

import (
	"strings"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

func (c *commandEntry) mode() (session.Mode, error) {
	return session.ParseMode(strings.ToLower(strings.TrimSpace(c.Mode)))
}
