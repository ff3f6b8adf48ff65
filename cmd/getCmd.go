package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Read device identity fields",
}

var getVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the firmware version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printField(cmd, (*session.Session).Version)
	},
}

var getSerialCmd = &cobra.Command{
	Use:   "serial",
	Short: "Print the board serial number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printField(cmd, (*session.Session).Serial)
	},
}

func printField(cmd *cobra.Command, get func(*session.Session, context.Context) (string, error)) error {
	return withDevice(cmd, func(ctx context.Context, s *session.Session) error {
		v, err := get(s, ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	})
}
