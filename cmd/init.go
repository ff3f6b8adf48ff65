package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// init configures the persistent connection flags, binds them to RKS_*
// environment variables and the optional config file via Viper, and
// registers all subcommands.
func init() {
	// Persistent flags (inherited by every subcommand)
	rootCmd.PersistentFlags().StringVar(&cfgConfigFile, "config", "", "Path to a YAML config file (connection settings and prompt overrides)")
	rootCmd.PersistentFlags().StringVarP(&cfgHost, "host", "H", "", "Access point address")
	rootCmd.PersistentFlags().IntVarP(&cfgPort, "port", "p", session.DefaultPort, "SSH port")
	rootCmd.PersistentFlags().StringVarP(&cfgUser, "user", "u", "", "Device login user")
	rootCmd.PersistentFlags().StringVar(&cfgPassword, "password", "", "Device login password (or set RKS_PASSWORD)")
	rootCmd.PersistentFlags().DurationVar(&cfgTimeout, "timeout", session.DefaultTimeout, "Prompt wait timeout")
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Mirror raw terminal traffic to stdout")
	rootCmd.PersistentFlags().BoolVarP(&cfgVerbose, "verbose", "v", false, "Enable debug-level structured logs on stderr")
	rootCmd.PersistentFlags().StringVar(&cfgTransport, "transport", string(session.TransportExec), "Terminal transport: exec (system ssh client) or native")
	rootCmd.PersistentFlags().BoolVar(&cfgStrictHost, "strict-host-key", false, "Verify the host key against known_hosts (native transport)")
	rootCmd.PersistentFlags().StringVar(&cfgKnownHosts, "known-hosts", filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts"), "Path to known_hosts file")

	// Command-specific flags
	for _, c := range []*cobra.Command{vendorCmd, shellCmd} {
		c.Flags().BoolVar(&cfgNoWait, "no-wait", false, "Send the command without waiting for the prompt to return")
		c.Flags().DurationVar(&cfgCmdTimeout, "cmd-timeout", 0, "Prompt wait timeout for this command (defaults to --timeout)")
	}
	copyCmd.Flags().StringVar(&cfgCopyPassword, "copy-password", "", "Password for the scp peer (or set RKS_COPY_PASSWORD)")
	copyCmd.Flags().DurationVar(&cfgCmdTimeout, "cmd-timeout", 0, "Prompt wait timeout for the copy (defaults to --timeout)")
	factoryResetCmd.Flags().BoolVar(&cfgYes, "yes", false, "Confirm the factory reset")
	runCmd.Flags().StringVarP(&cfgManifest, "manifest", "m", "", "Path to YAML manifest file")
	runCmd.Flags().StringVarP(&cfgOutPath, "out", "o", "", "Path to output report")
	runCmd.Flags().StringVar(&cfgFormat, "format", "yaml", "Report format: yaml or text")
	runCmd.Flags().BoolVar(&cfgNoop, "noop", false, "Do not connect; write the planned terminal lines to debug.out")
	verifyCmd.Flags().StringVarP(&cfgManifest, "manifest", "m", "", "Path to YAML manifest file")

	bindFlags()

	// Pull in config file and environment overrides on init
	cobra.OnInitialize(loadConfig)

	// Add subcommands
	getCmd.AddCommand(getVersionCmd)
	getCmd.AddCommand(getSerialCmd)
	rootCmd.AddCommand(vendorCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(factoryResetCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
}

// bindFlags binds the connection flags to Viper keys and sets the RKS_
// environment mapping; dashes in keys become underscores
// (strict-host-key -> RKS_STRICT_HOST_KEY).
func bindFlags() {
	_ = viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("transport", rootCmd.PersistentFlags().Lookup("transport"))
	_ = viper.BindPFlag("strict-host-key", rootCmd.PersistentFlags().Lookup("strict-host-key"))
	_ = viper.BindPFlag("known-hosts", rootCmd.PersistentFlags().Lookup("known-hosts"))
	_ = viper.BindPFlag("copy-password", copyCmd.Flags().Lookup("copy-password"))

	viper.SetEnvPrefix("RKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the optional config file and copies non-empty values
// from Viper (flag, env, file, in that order of precedence) into the cfg
// variables.
func loadConfig() {
	cfgInitErr = nil
	if cfgConfigFile != "" {
		viper.SetConfigFile(cfgConfigFile)
		if err := viper.ReadInConfig(); err != nil {
			cfgInitErr = fmt.Errorf("failed to read config %s: %w", cfgConfigFile, err)
			return
		}
	}
	if v := viper.GetString("host"); v != "" {
		cfgHost = v
	}
	if v := viper.GetInt("port"); v != 0 {
		cfgPort = v
	}
	if v := viper.GetString("user"); v != "" {
		cfgUser = v
	}
	if v := viper.GetString("password"); v != "" {
		cfgPassword = v
	}
	if v := viper.GetDuration("timeout"); v != 0 {
		cfgTimeout = v
	}
	if v := viper.GetString("transport"); v != "" {
		cfgTransport = v
	}
	if v := viper.GetString("known-hosts"); v != "" {
		cfgKnownHosts = v
	}
	if v := viper.GetString("copy-password"); v != "" {
		cfgCopyPassword = v
	}
	// Booleans
	if viper.IsSet("debug") {
		cfgDebug = viper.GetBool("debug")
	}
	if viper.IsSet("verbose") {
		cfgVerbose = viper.GetBool("verbose")
	}
	if viper.IsSet("strict-host-key") {
		cfgStrictHost = viper.GetBool("strict-host-key")
	}
}
