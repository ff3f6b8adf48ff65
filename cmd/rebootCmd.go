package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the access point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.Reboot(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reboot issued to %s\n", cfgHost)
			return nil
		})
	},
}

// factoryResetCmd wipes the device configuration; it refuses to run
// without --yes.
var factoryResetCmd = &cobra.Command{
	Use:   "factory-reset",
	Short: "Restore factory defaults and reboot the access point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfgYes {
			return errors.New("factory-reset erases the device configuration; pass --yes to confirm")
		}
		return withDevice(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.FactoryReset(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Factory reset issued to %s\n", cfgHost)
			return nil
		})
	},
}
