package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/creack/pty"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// TransportKind selects how the interactive terminal is opened.
type TransportKind string

const (
	// TransportExec runs the system ssh client under a pseudo-terminal.
	TransportExec TransportKind = "exec"
	// TransportNative opens the terminal with an in-process SSH client.
	TransportNative TransportKind = "native"
)

// SpawnFunc opens the interactive terminal described by cfg. The returned
// stream carries raw terminal bytes in both directions.
type SpawnFunc func(ctx context.Context, cfg Config) (io.ReadWriteCloser, error)

// spawn dispatches on cfg.Transport.
func spawn(ctx context.Context, cfg Config) (io.ReadWriteCloser, error) {
	switch cfg.Transport {
	case TransportNative:
		return dialNative(ctx, cfg)
	case TransportExec, "":
		return spawnExec(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}

// sshCommand is the pinned client invocation. Host keys are not checked.
func sshCommand(host string, port int) []string {
	return []string{"ssh", "-q", "-o", "StrictHostKeyChecking=no", "-p", strconv.Itoa(port), host}
}

// ptyProcess is an ssh client process attached to a pty master.
type ptyProcess struct {
	cmd  *exec.Cmd
	ptmx *os.File
	once sync.Once
}

// spawnExec starts the ssh client. ctx only gates the start: the process
// outlives the call that connected the session and is stopped by Close.
func spawnExec(ctx context.Context, cfg Config) (io.ReadWriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	argv := sshCommand(cfg.Host, cfg.Port)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}
	return &ptyProcess{cmd: cmd, ptmx: ptmx}, nil
}

func (p *ptyProcess) Read(b []byte) (int, error)  { return p.ptmx.Read(b) }
func (p *ptyProcess) Write(b []byte) (int, error) { return p.ptmx.Write(b) }

// Close releases the pty and reaps the ssh process. It is safe to call more
// than once.
func (p *ptyProcess) Close() error {
	var err error
	p.once.Do(func() {
		err = p.ptmx.Close()
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		_ = p.cmd.Wait()
	})
	return err
}

// nativeShell is an interactive PTY shell on an in-process SSH connection.
type nativeShell struct {
	client *ssh.Client
	sess   *ssh.Session
	stdin  io.WriteCloser
	pr     *io.PipeReader
	pw     *io.PipeWriter
	agent  net.Conn
	once   sync.Once
}

// dialAgent connects to the SSH agent named by SSH_AUTH_SOCK, if any.
func dialAgent() (net.Conn, ssh.AuthMethod) {
	a := os.Getenv("SSH_AUTH_SOCK")
	if a == "" {
		return nil, nil
	}
	conn, err := net.Dial("unix", a)
	if err != nil {
		return nil, nil
	}
	return conn, ssh.PublicKeysCallback(agent.NewClient(conn).Signers)
}

func dialNative(ctx context.Context, cfg Config) (io.ReadWriteCloser, error) {
	hostKeyCB := ssh.InsecureIgnoreHostKey()
	if cfg.StrictHostKey {
		cb, err := knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("known_hosts: %w", err)
		}
		hostKeyCB = cb
	}

	auths := []ssh.AuthMethod{ssh.Password(cfg.Password)}
	agentConn, agentAuth := dialAgent()
	if agentAuth != nil {
		auths = append(auths, agentAuth)
	}
	closeAgent := func() {
		if agentConn != nil {
			_ = agentConn.Close()
		}
	}

	target := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	clientCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         cfg.Timeout,
	}
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		closeAgent()
		return nil, err
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, target, clientCfg)
	if err != nil {
		_ = conn.Close()
		closeAgent()
		return nil, err
	}
	client := ssh.NewClient(c, chans, reqs)

	sh, err := openShell(client)
	if err != nil {
		_ = client.Close()
		closeAgent()
		return nil, err
	}
	sh.agent = agentConn
	return sh, nil
}

func openShell(client *ssh.Client) (*nativeShell, error) {
	s, err := client.NewSession()
	if err != nil {
		return nil, err
	}

	// Create a single combined stream for stdout+stderr
	pr, pw := io.Pipe()
	s.Stdout = pw
	s.Stderr = pw

	stdin, err := s.StdinPipe()
	if err != nil {
		_ = pw.Close()
		_ = s.Close()
		return nil, err
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := s.RequestPty("xterm", 40, 120, modes); err != nil {
		_ = stdin.Close()
		_ = pw.Close()
		_ = s.Close()
		return nil, err
	}
	if err := s.Shell(); err != nil {
		_ = stdin.Close()
		_ = pw.Close()
		_ = s.Close()
		return nil, err
	}

	// Surface the end of the remote shell as EOF on the read side.
	go func() {
		_ = s.Wait()
		_ = pw.Close()
	}()

	return &nativeShell{client: client, sess: s, stdin: stdin, pr: pr, pw: pw}, nil
}

func (n *nativeShell) Read(b []byte) (int, error)  { return n.pr.Read(b) }
func (n *nativeShell) Write(b []byte) (int, error) { return n.stdin.Write(b) }

// Close tears down the shell and the SSH connection. Errors from a peer that
// already hung up are ignored.
func (n *nativeShell) Close() error {
	var err error
	n.once.Do(func() {
		_ = n.stdin.Close()
		_ = n.sess.Close()
		_ = n.pw.Close()
		_ = n.pr.Close()
		err = n.client.Close()
		if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
			err = nil
		}
		if n.agent != nil {
			_ = n.agent.Close()
		}
	})
	return err
}
