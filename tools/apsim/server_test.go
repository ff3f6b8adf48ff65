package apsim

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// readUntil reads from r until the accumulated text ends with suffix.
func readUntil(t *testing.T, r *bufio.Reader, suffix string) string {
	t.Helper()
	var sb strings.Builder
	for !strings.HasSuffix(sb.String(), suffix) {
		b, err := r.ReadByte()
		require.NoError(t, err, "waiting for %q, got %q", suffix, sb.String())
		sb.WriteByte(b)
	}
	return sb.String()
}

func TestDeviceServe_Conversation(t *testing.T) {
	d := &Device{Username: "u", Password: "p", Version: "9.9", Serial: "S1", AskHostKey: true}
	client, server := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- d.Serve(server) }()

	r := bufio.NewReader(client)
	send := func(s string) {
		_, err := io.WriteString(client, s+"\n")
		require.NoError(t, err)
	}

	readUntil(t, r, "login: ")
	send("u")
	readUntil(t, r, "password : ")
	send("p")
	readUntil(t, r, "rkscli: ")

	send("get version")
	require.Contains(t, readUntil(t, r, "rkscli: "), "Version: 9.9")
	send("get boarddata")
	require.Contains(t, readUntil(t, r, "rkscli: "), "Serial#: S1")

	send("!v54!")
	readUntil(t, r, "# ")
	send("scp /a h:/b")
	require.Contains(t, readUntil(t, r, "(y/n) "), "Do you want to continue connecting")
	send("yes")
	readUntil(t, r, "password: ")
	send("pw")
	require.Contains(t, readUntil(t, r, "# "), "100%")

	send("rkscli")
	readUntil(t, r, "rkscli: ")
	send("exit")
	require.NoError(t, <-done)

	require.Equal(t, []string{"u", "p", "get version", "get boarddata", "!v54!", "scp /a h:/b", "yes", "pw", "rkscli", "exit"}, d.Lines())
}

func TestDeviceServe_RejectsBadLogin(t *testing.T) {
	d := &Device{Username: "u", Password: "p"}
	client, server := net.Pipe()
	go func() {
		_ = d.Serve(server)
		_ = server.Close()
	}()

	r := bufio.NewReader(client)
	readUntil(t, r, "login: ")
	_, _ = io.WriteString(client, "u\n")
	readUntil(t, r, "password : ")
	_, _ = io.WriteString(client, "wrong\n")
	require.Contains(t, readUntil(t, r, "\r\n"), "Login incorrect")
	_, err := io.ReadAll(r)
	require.NoError(t, err)
}

func TestStart_ServesShellOverSSH(t *testing.T) {
	d := &Device{Version: "1.0"}
	addr, stop, err := Start("127.0.0.1:0", d)
	require.NoError(t, err)
	defer stop()

	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "anyone",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         3 * time.Second,
	})
	require.NoError(t, err)
	defer client.Close()

	sess, err := client.NewSession()
	require.NoError(t, err)
	defer sess.Close()
	stdin, err := sess.StdinPipe()
	require.NoError(t, err)
	stdout, err := sess.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, sess.RequestPty("xterm", 40, 120, ssh.TerminalModes{}))
	require.NoError(t, sess.Shell())

	r := bufio.NewReader(stdout)
	readUntil(t, r, "login: ")
	_, _ = io.WriteString(stdin, "x\n")
	readUntil(t, r, "password : ")
	_, _ = io.WriteString(stdin, "y\n")
	readUntil(t, r, "rkscli: ")
	_, _ = io.WriteString(stdin, "exit\n")
	require.NoError(t, sess.Wait())
}
