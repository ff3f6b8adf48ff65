package cmd

import "time"

// perCommandTimeout returns the prompt wait for c, or defaultTimeout when the
// manifest leaves it unset.
func (c *commandEntry) perCommandTimeout(defaultTimeout time.Duration) time.Duration {
	if c.Timeout == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return defaultTimeout
	}
	return d
}
