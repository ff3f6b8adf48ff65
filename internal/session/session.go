package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultPort is the SSH port used when Config.Port is zero.
	DefaultPort = 22
	// DefaultTimeout bounds every prompt wait unless overridden.
	DefaultTimeout = 30 * time.Second
)

// Config identifies the device and tunes the terminal session.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
	// Debug mirrors all raw terminal traffic to the debug writer (stdout
	// unless WithDebugWriter is given).
	Debug   bool
	Prompts Prompts

	Transport TransportKind
	// StrictHostKey and KnownHostsPath apply to TransportNative only.
	StrictHostKey  bool
	KnownHostsPath string
}

func (c Config) address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithDebugWriter sets where raw traffic goes when Config.Debug is on.
func WithDebugWriter(w io.Writer) Option {
	return func(s *Session) { s.debugOut = w }
}

// WithSpawner replaces the function that opens the terminal.
func WithSpawner(fn SpawnFunc) Option {
	return func(s *Session) { s.spawn = fn }
}

// Session owns one interactive terminal to a device and tracks which shell
// is active on the far end. A Session runs one command at a time.
type Session struct {
	cfg      Config
	authRe   *regexp.Regexp
	log      *zap.Logger
	debugOut io.Writer
	spawn    SpawnFunc
	id       string

	mu   sync.Mutex
	exp  *expecter
	mode Mode
}

// New validates cfg and returns an unconnected Session.
func New(cfg Config, opts ...Option) (*Session, error) {
	if cfg.Host == "" {
		return nil, errors.New("session: host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch cfg.Transport {
	case "":
		cfg.Transport = TransportExec
	case TransportExec, TransportNative:
	default:
		return nil, fmt.Errorf("session: unknown transport %q", cfg.Transport)
	}
	cfg.Prompts = cfg.Prompts.withDefaults()
	re, err := cfg.Prompts.compile()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		authRe:   re,
		log:      zap.NewNop(),
		debugOut: os.Stdout,
		spawn:    spawn,
		id:       uuid.NewString(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("session_id", s.id), zap.String("device", cfg.address()))
	return s, nil
}

// ID returns the identifier used to correlate this session's log lines.
func (s *Session) ID() string { return s.id }

// Mode reports the shell observed at the last prompt.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Connected reports whether a terminal is open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exp != nil
}

// Connect opens the terminal and logs in, leaving the device at the vendor
// shell. It does nothing when the session is already connected.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(ctx)
}

func (s *Session) connectLocked(ctx context.Context) error {
	if s.exp != nil {
		return nil
	}
	addr := s.cfg.address()
	s.log.Debug("connecting", zap.String("transport", string(s.cfg.Transport)))

	rw, err := s.spawn(ctx, s.cfg)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrSpawn, addr, err)
	}
	var debug io.Writer
	if s.cfg.Debug {
		debug = s.debugOut
	}
	exp := newExpecter(rw, debug)

	p := s.cfg.Prompts
	login := []struct{ await, send string }{
		{p.Login, s.cfg.Username},
		{p.Password, s.cfg.Password},
	}
	for _, step := range login {
		if _, _, err := exp.expect(ctx, s.cfg.Timeout, literal(step.await)); err != nil {
			_ = exp.close()
			return fmt.Errorf("connect %s: %w", addr, err)
		}
		if err := exp.sendLine(step.send); err != nil {
			_ = exp.close()
			return fmt.Errorf("connect %s: %w", addr, err)
		}
	}
	if _, _, err := exp.expect(ctx, s.cfg.Timeout, literal(p.Vendor)); err != nil {
		_ = exp.close()
		return fmt.Errorf("connect %s: %w", addr, err)
	}

	s.exp = exp
	s.mode = ModeVendor
	s.log.Info("connected", zap.Stringer("mode", s.mode))
	return nil
}

// Close releases the terminal. It is safe to call on an unconnected
// session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	if s.exp == nil {
		return nil
	}
	err := s.exp.close()
	s.exp = nil
	s.mode = ModeUnknown
	s.log.Debug("closed")
	return err
}

// Do connects if needed, runs fn, and always closes the session afterwards,
// including when fn fails or panics. fn's error takes precedence over the
// close error.
func (s *Session) Do(ctx context.Context, fn func(*Session) error) (err error) {
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return fn(s)
}

// ensureModeLocked connects if needed and switches shells when the current
// one differs from want.
func (s *Session) ensureModeLocked(ctx context.Context, want Mode) error {
	if err := s.connectLocked(ctx); err != nil {
		return err
	}
	step, ok := s.cfg.Prompts.transition(s.mode, want)
	if !ok {
		return nil
	}
	s.log.Debug("switching shell", zap.Stringer("from", s.mode), zap.Stringer("to", want))
	if err := s.exp.sendLine(step.send); err != nil {
		return err
	}
	if _, _, err := s.exp.expect(ctx, s.cfg.Timeout, literal(step.await)); err != nil {
		return fmt.Errorf("switch to %s shell: %w", want, err)
	}
	s.mode = want
	return nil
}

// RunOption tunes a single command.
type RunOption func(*runOptions)

type runOptions struct {
	timeout time.Duration
	noWait  bool
}

// WithTimeout overrides the session timeout for one prompt wait.
func WithTimeout(d time.Duration) RunOption {
	return func(o *runOptions) { o.timeout = d }
}

// NoWait sends the command without waiting for the prompt to return. Use it
// for commands that end the session, where no prompt will follow.
func NoWait() RunOption {
	return func(o *runOptions) { o.noWait = true }
}

func (s *Session) runOptions(opts []RunOption) runOptions {
	o := runOptions{timeout: s.cfg.Timeout}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// RunVendor runs cmd in the vendor shell and returns its output.
func (s *Session) RunVendor(ctx context.Context, cmd string, opts ...RunOption) (string, error) {
	return s.run(ctx, ModeVendor, cmd, s.runOptions(opts))
}

// RunGeneral runs cmd in the general shell and returns its output.
func (s *Session) RunGeneral(ctx context.Context, cmd string, opts ...RunOption) (string, error) {
	return s.run(ctx, ModeGeneral, cmd, s.runOptions(opts))
}

func (s *Session) run(ctx context.Context, mode Mode, cmd string, o runOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureModeLocked(ctx, mode); err != nil {
		return "", err
	}
	s.log.Debug("sending command", zap.Stringer("mode", mode), zap.String("command", cmd), zap.Bool("no_wait", o.noWait))
	if err := s.exp.sendLine(cmd); err != nil {
		return "", err
	}
	if o.noWait {
		return "", nil
	}
	_, out, err := s.exp.expect(ctx, o.timeout, literal(s.cfg.Prompts.prompt(mode)))
	if err != nil {
		return "", fmt.Errorf("%s command %q: %w", mode, cmd, err)
	}
	return out, nil
}
