package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Vendor shell commands and the labels their output is parsed by.
const (
	cmdReboot       = "reboot"
	cmdExit         = "exit"
	cmdFactoryReset = "set factory"
	cmdGetVersion   = "get version"
	cmdGetBoardData = "get boarddata"

	labelVersion = "Version:"
	labelSerial  = "Serial#:"
)

// CopyFile runs scp from the general shell and answers its prompts. When
// scp asks to confirm an unknown host key the answer is sent first, then the
// password. It reports true once the general prompt returns. src and dst are
// sent as given so the device shell expands globs and ~; callers quote
// arguments that must stay literal.
func (s *Session) CopyFile(ctx context.Context, src, dst, password string, opts ...RunOption) (bool, error) {
	o := s.runOptions(opts)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureModeLocked(ctx, ModeGeneral); err != nil {
		return false, err
	}

	p := s.cfg.Prompts
	line := fmt.Sprintf("scp %s %s", src, dst)
	s.log.Debug("copying file", zap.String("src", src), zap.String("dst", dst))
	if err := s.exp.sendLine(line); err != nil {
		return false, err
	}

	i, _, err := s.exp.expect(ctx, o.timeout, regex(s.authRe), literal(p.CopyPassword))
	if err != nil {
		return false, fmt.Errorf("copy %s: %w", src, err)
	}
	if i == 0 {
		if err := s.exp.sendLine(p.HostAuthenticityAnswer); err != nil {
			return false, err
		}
		if _, _, err := s.exp.expect(ctx, o.timeout, literal(p.CopyPassword)); err != nil {
			return false, fmt.Errorf("copy %s: %w", src, err)
		}
	}
	if err := s.exp.sendLine(password); err != nil {
		return false, err
	}
	if _, _, err := s.exp.expect(ctx, o.timeout, literal(p.General)); err != nil {
		return false, fmt.Errorf("copy %s: %w", src, err)
	}
	return true, nil
}

// Reboot restarts the device. The trailing exit is not awaited because the
// device drops the connection; the session is closed afterwards.
func (s *Session) Reboot(ctx context.Context) error {
	if _, err := s.RunVendor(ctx, cmdReboot); err != nil {
		return err
	}
	if _, err := s.RunVendor(ctx, cmdExit, NoWait()); err != nil {
		return err
	}
	s.log.Info("reboot issued")
	return s.Close()
}

// FactoryReset restores factory defaults and reboots. The reboot is sent
// even though the reset's effect cannot be confirmed.
func (s *Session) FactoryReset(ctx context.Context) error {
	if _, err := s.RunVendor(ctx, cmdFactoryReset); err != nil {
		return err
	}
	return s.Reboot(ctx)
}

// IdentitySteps are the commands Version and Serial send, in that order.
func IdentitySteps() []Step {
	return []Step{
		{Mode: ModeVendor, Command: cmdGetVersion},
		{Mode: ModeVendor, Command: cmdGetBoardData},
	}
}

// Version returns the firmware version reported by "get version".
func (s *Session) Version(ctx context.Context) (string, error) {
	out, err := s.RunVendor(ctx, cmdGetVersion)
	if err != nil {
		return "", err
	}
	return fieldAfter(out, labelVersion)
}

// Serial returns the serial number reported by "get boarddata".
func (s *Session) Serial(ctx context.Context) (string, error) {
	out, err := s.RunVendor(ctx, cmdGetBoardData)
	if err != nil {
		return "", err
	}
	return fieldAfter(out, labelSerial)
}

// fieldAfter returns the whitespace-separated token following label.
func fieldAfter(text, label string) (string, error) {
	fields := strings.Fields(text)
	for i, f := range fields {
		if f == label {
			if i+1 < len(fields) {
				return fields[i+1], nil
			}
			break
		}
	}
	return "", fmt.Errorf("%w: %q", ErrLabelNotFound, label)
}
