// Package session drives a Ruckus access point's two command-line interfaces
// over a single interactive SSH terminal.
//
// The device exposes a vendor shell (rkscli, prompt "rkscli: ") and an
// underlying POSIX shell (prompt "# "). A Session logs in through the
// in-band login/password prompts, remembers which of the two shells is
// active, and switches between them transparently before each command.
// Output is captured by waiting for the next prompt and returning everything
// printed before it.
//
// Start with session.go for the lifecycle and mode handling, expect.go for
// the prompt matcher, and device.go for the higher-level device operations
// (copy, reboot, factory reset, version and serial queries).
package session
