package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

// runCmd executes the primary workflow: loads the manifest, opens one
// session to the access point, reads its version and serial, then runs every
// command in its shell, switching between rkscli and the general shell as
// needed. Results are written to a YAML (or text) report. With --noop it only
// writes the planned terminal lines.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a manifest of commands against one access point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Require manifest and output path first, since manifest may provide defaults
		if cfgManifest == "" {
			return errors.New("--manifest is required (path to YAML)")
		}
		if cfgOutPath == "" {
			return errors.New("--out is required (path to output file)")
		}
		if cfgFormat != "yaml" && cfgFormat != "text" {
			return fmt.Errorf("--format must be yaml or text, got %q", cfgFormat)
		}

		mf, err := loadManifest(cfgManifest)
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}
		applyManifestDefaults(mf)

		// Prepare output file (create dirs if needed)
		if err := os.MkdirAll(filepath.Dir(cfgOutPath), 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		report := newYAMLReport(mf, cfgHost)

		if cfgNoop {
			return writePlan(cmd, mf, report)
		}

		runErr := withDevice(cmd, func(ctx context.Context, s *session.Session) error {
			report.Session = s.ID()
			return runManifest(ctx, cmd, s, mf, report)
		})

		if err := saveReport(report); err != nil {
			return errors.Join(runErr, err)
		}
		if runErr != nil {
			return runErr
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Done. Output written to %s\n", cfgOutPath)
		return nil
	},
}

// applyManifestDefaults falls back to the manifest's device section when the
// connection settings were not given by flag, environment or config file.
func applyManifestDefaults(mf *manifest) {
	if cfgHost == "" {
		cfgHost = strings.TrimSpace(mf.Device.Host)
	}
	if cfgUser == "" {
		cfgUser = strings.TrimSpace(mf.Device.User)
	}
	if mf.Device.Port != 0 && !viper.IsSet("port") {
		cfgPort = mf.Device.Port
	}
}

// runManifest reads the device identity and then runs each command in order,
// stopping at the first command that fails.
func runManifest(ctx context.Context, cmd *cobra.Command, s *session.Session, mf *manifest, report *yamlReport) error {
	version, verr := s.Version(ctx)
	if verr != nil && !errors.Is(verr, session.ErrLabelNotFound) {
		return fmt.Errorf("read version: %w", verr)
	}
	serial, serr := s.Serial(ctx)
	if serr != nil && !errors.Is(serr, session.ErrLabelNotFound) {
		return fmt.Errorf("read serial: %w", serr)
	}
	report.setIdentity(version, verr, serial, serr)

	for i, c := range mf.Commands {
		mode, _ := c.mode()
		title := fmt.Sprintf("[%d/%d] %s", i+1, len(mf.Commands), c.line())
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Executing %s\n", title)

		cmdTimeout := c.perCommandTimeout(cfgTimeout)
		opts := []session.RunOption{session.WithTimeout(cmdTimeout)}
		if c.NoWait {
			opts = append(opts, session.NoWait())
		}

		var (
			out    string
			runErr error
		)
		if mode == session.ModeGeneral {
			out, runErr = s.RunGeneral(ctx, c.line(), opts...)
		} else {
			out, runErr = s.RunVendor(ctx, c.line(), opts...)
		}

		res := yamlCmdResult{
			Title:   strings.TrimSpace(c.Title),
			Command: c.line(),
			Mode:    mode.String(),
			NoWait:  c.NoWait,
			Output:  out,
		}
		if c.Timeout != "" {
			res.Timeout = cmdTimeout.String()
		}
		if runErr != nil {
			res.Error = runErr.Error()
		}
		report.addResult(res)

		if runErr != nil {
			return fmt.Errorf("commands[%d]: %w", i, runErr)
		}
	}
	return nil
}

// writePlan writes the terminal lines a run would send after login, the
// identity queries and mode switches included, to debug.out beside the
// report, and emits a report without results.
func writePlan(cmd *cobra.Command, mf *manifest, report *yamlReport) error {
	prompts, err := configuredPrompts()
	if err != nil {
		return err
	}
	lines := session.Plan(prompts, append(session.IdentitySteps(), mf.steps()...))
	report.Planned = lines

	dbgPath := filepath.Join(filepath.Dir(cfgOutPath), "debug.out")
	f, err := os.Create(dbgPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", dbgPath, err)
	}
	bw := bufio.NewWriter(f)
	_, _ = fmt.Fprintf(bw, "# Planned lines (%d commands)\n", len(mf.Commands))
	for _, l := range lines {
		_, _ = fmt.Fprintln(bw, l)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", dbgPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", dbgPath, err)
	}

	if err := saveReport(report); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Noop mode: wrote planned lines to %s\n", dbgPath)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Done. Output written to %s\n", cfgOutPath)
	return nil
}

// saveReport writes the report to --out in the selected format.
func saveReport(report *yamlReport) error {
	outFile, err := os.Create(cfgOutPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeReport(outFile, cfgFormat, report); err != nil {
		_ = outFile.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return outFile.Close()
}
