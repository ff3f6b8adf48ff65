package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// configuredPrompts returns the prompt overrides from the config file's
// "prompts" section. Unset entries keep the built-in defaults.
func configuredPrompts() (session.Prompts, error) {
	var p session.Prompts
	if !viper.IsSet("prompts") {
		return p, nil
	}
	if err := viper.UnmarshalKey("prompts", &p); err != nil {
		return p, fmt.Errorf("invalid prompts section: %w", err)
	}
	return p, nil
}

// deviceConfig assembles a session.Config from the resolved flag values.
func deviceConfig() (session.Config, error) {
	if strings.TrimSpace(cfgHost) == "" {
		return session.Config{}, errors.New("--host is required (access point address)")
	}
	if strings.TrimSpace(cfgUser) == "" {
		return session.Config{}, errors.New("--user is required for the device login")
	}
	prompts, err := configuredPrompts()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Host:           strings.TrimSpace(cfgHost),
		Port:           cfgPort,
		Username:       cfgUser,
		Password:       cfgPassword,
		Timeout:        cfgTimeout,
		Debug:          cfgDebug,
		Prompts:        prompts,
		Transport:      session.TransportKind(cfgTransport),
		StrictHostKey:  cfgStrictHost,
		KnownHostsPath: cfgKnownHosts,
	}, nil
}

// withDevice opens a session to the configured access point, runs fn inside
// it and always closes the connection afterwards.
func withDevice(cmd *cobra.Command, fn func(ctx context.Context, s *session.Session) error) error {
	cfg, err := deviceConfig()
	if err != nil {
		return err
	}
	logger, err := newLoggerFunc(cfgVerbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	s, err := newSessionFunc(cfg,
		session.WithLogger(logger.Named("session")),
		session.WithDebugWriter(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Do(ctx, func(s *session.Session) error {
		return fn(ctx, s)
	})
}

// commandOptions maps --cmd-timeout and --no-wait onto run options.
func commandOptions() []session.RunOption {
	var opts []session.RunOption
	if cfgCmdTimeout > 0 {
		opts = append(opts, session.WithTimeout(cfgCmdTimeout))
	}
	if cfgNoWait {
		opts = append(opts, session.NoWait())
	}
	return opts
}
