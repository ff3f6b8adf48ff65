package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rks",
	Short: "Drive a Ruckus access point's rkscli and shell over SSH",
	Long: "Connects to a Ruckus access point over an interactive SSH terminal, logs in through the " +
		"rkscli prompts, and runs commands in either the vendor shell or the underlying POSIX shell, " +
		"switching between them as needed.",
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cfgInitErr
	},
}
