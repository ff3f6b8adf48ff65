package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// vendorCmd runs one rkscli command and prints what the device returned
// before the prompt came back.
var vendorCmd = &cobra.Command{
	Use:   "vendor <command...>",
	Short: "Run a command in the rkscli vendor shell",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Join(args, " ")
		return withDevice(cmd, func(ctx context.Context, s *session.Session) error {
			out, err := s.RunVendor(ctx, line, commandOptions()...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		})
	},
}
