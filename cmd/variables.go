package cmd

import (
	"time"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	// Global configuration populated by flags, environment variables and the
	// optional config file. Declared here so every subcommand sees them.
	cfgConfigFile   string
	cfgHost         string
	cfgPort         int
	cfgUser         string
	cfgPassword     string
	cfgTimeout      time.Duration
	cfgDebug        bool
	cfgVerbose      bool
	cfgTransport    string
	cfgStrictHost   bool
	cfgKnownHosts   string
	cfgManifest     string
	cfgOutPath      string
	cfgFormat       string
	cfgNoop         bool
	cfgNoWait       bool
	cfgCmdTimeout   time.Duration
	cfgCopyPassword string
	cfgYes          bool

	// cfgInitErr records a config file that failed to load during
	// cobra.OnInitialize, where errors cannot be returned directly.
	cfgInitErr error
)

// Allow tests to stub session construction and logger setup
var (
	newSessionFunc = session.New
	newLoggerFunc  = newLogger
)
