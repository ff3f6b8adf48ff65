package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// errCopyFailed is returned when the device never reported the copy as done.
var errCopyFailed = errors.New("copy did not complete")

// copyCmd runs scp from the device's general shell, answering the host
// authenticity and password prompts along the way.
var copyCmd = &cobra.Command{
	Use:   "copy <src> <dst>",
	Short: "Copy a file with scp from the access point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgCopyPassword == "" {
			return errors.New("--copy-password is required (or set RKS_COPY_PASSWORD)")
		}
		return withDevice(cmd, func(ctx context.Context, s *session.Session) error {
			var opts []session.RunOption
			if cfgCmdTimeout > 0 {
				opts = append(opts, session.WithTimeout(cfgCmdTimeout))
			}
			ok, err := s.CopyFile(ctx, args[0], args[1], cfgCopyPassword, opts...)
			if err != nil {
				return fmt.Errorf("%w: %w", errCopyFailed, err)
			}
			if !ok {
				return errCopyFailed
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s\n", args[0], args[1])
			return nil
		})
	},
}
