// Package cmd implements the rks command-line interface.
//
// The package wires cobra subcommands (vendor, shell, get, copy, reboot,
// factory-reset, run, verify) onto internal/session, which owns the single
// interactive SSH terminal to the access point and its vendor/general shell
// switching.
//
// Start with init.go for the flag and environment surface, withDevice.go for
// how a command borrows a connected session, and runCmd.go for the
// manifest-driven collection flow that writes a YAML or text report.
package cmd
