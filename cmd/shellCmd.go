package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

var shellCmd = &cobra.Command{
	Use:   "shell <command...>",
	Short: "Run a command in the general (POSIX) shell",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Join(args, " ")
		return withDevice(cmd, func(ctx context.Context, s *session.Session) error {
			out, err := s.RunGeneral(ctx, line, commandOptions()...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		})
	},
}
