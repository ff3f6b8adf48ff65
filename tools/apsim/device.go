package apsim

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Device emulates the terminal side of a Ruckus access point: the in-band
// login, the rkscli vendor shell and the "!v54!" escape into the POSIX shell.
// One Device may serve many connections; each connection keeps its own shell
// state while received lines are recorded across all of them.
type Device struct {
	Username string
	Password string
	Version  string
	Serial   string
	// CopyPassword, when set, is the only password scp accepts.
	CopyPassword string
	// AskHostKey makes the first scp on a connection ask to confirm the
	// remote host key.
	AskHostKey bool
	// Responses overrides the output of individual vendor commands.
	Responses map[string]string

	mu    sync.Mutex
	lines []string
}

// Lines returns every line received so far, without line terminators.
func (d *Device) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Device) record(s string) {
	d.mu.Lock()
	d.lines = append(d.lines, s)
	d.mu.Unlock()
}

const (
	vendorPrompt  = "rkscli: "
	generalPrompt = "# "
)

// Serve runs one terminal conversation over rw until the client exits or the
// stream ends.
func (d *Device) Serve(rw io.ReadWriter) error {
	br := bufio.NewReader(rw)
	write := func(s string) error {
		_, err := io.WriteString(rw, s)
		return err
	}
	readLine := func() (string, error) {
		line, err := br.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		d.record(line)
		return line, nil
	}

	if err := write("\r\nPlease login: "); err != nil {
		return err
	}
	user, err := readLine()
	if err != nil {
		return err
	}
	if err := write("password : "); err != nil {
		return err
	}
	pass, err := readLine()
	if err != nil {
		return err
	}
	if (d.Username != "" && user != d.Username) || (d.Password != "" && pass != d.Password) {
		_ = write("Login incorrect\r\n")
		return nil
	}
	if err := write("\r\nCopyright(C) 2024 Ruckus Wireless, Inc. All Rights Reserved.\r\n\r\n** Ruckus Wireless AP\r\n\r\n" + vendorPrompt); err != nil {
		return err
	}

	general := false
	hostKnown := !d.AskHostKey
	for {
		line, err := readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if general {
			out, done, err := d.general(line, &general, &hostKnown, write, readLine)
			if err != nil || done {
				return err
			}
			if err := write(out); err != nil {
				return err
			}
			continue
		}

		cmd := strings.TrimSpace(line)
		switch cmd {
		case "exit":
			return nil
		case "!v54!":
			general = true
			if err := write("\r\n\r\nRuckus Wireless -- Command Interface\r\n" + generalPrompt); err != nil {
				return err
			}
			continue
		}
		if err := write(d.vendor(cmd) + vendorPrompt); err != nil {
			return err
		}
	}
}

// vendor returns the output of an rkscli command.
func (d *Device) vendor(cmd string) string {
	if out, ok := d.Responses[cmd]; ok {
		return out
	}
	switch cmd {
	case "":
		return ""
	case "get version":
		return fmt.Sprintf("Ruckus R710 Multimedia Hotzone Wireless AP\r\nVersion: %s\r\nOK\r\n", d.Version)
	case "get boarddata":
		return fmt.Sprintf("name: R710\r\ncusID:\r\nmodel: R710\r\nSerial#: %s\r\nCustomer ID: 4bss\r\nOK\r\n", d.Serial)
	case "set factory", "reboot":
		return "OK\r\n"
	}
	return fmt.Sprintf("%s\r\nOK\r\n", cmd)
}

// general handles one POSIX shell line. done is true when the conversation
// should end.
func (d *Device) general(line string, general, hostKnown *bool, write func(string) error, readLine func() (string, error)) (string, bool, error) {
	cmd := strings.TrimSpace(line)
	switch {
	case cmd == "rkscli":
		*general = false
		return vendorPrompt, false, nil
	case cmd == "exit":
		return "", true, nil
	case strings.HasPrefix(cmd, "scp "):
		remote := "localhost"
		for _, arg := range strings.Fields(cmd)[1:] {
			if i := strings.Index(arg, ":"); i > 0 {
				remote = arg[:i]
				break
			}
		}
		if !*hostKnown {
			if err := write(fmt.Sprintf("\r\nHost '%s' is not in the trusted hosts file.\r\nDo you want to continue connecting? (y/n) ", remote)); err != nil {
				return "", false, err
			}
			ans, err := readLine()
			if err != nil {
				return "", false, err
			}
			if !strings.HasPrefix(ans, "y") {
				return "Host key verification failed.\r\n" + generalPrompt, false, nil
			}
			*hostKnown = true
		}
		if err := write(remote + "'s password: "); err != nil {
			return "", false, err
		}
		pw, err := readLine()
		if err != nil {
			return "", false, err
		}
		if d.CopyPassword != "" && pw != d.CopyPassword {
			return "\r\nPermission denied (publickey,password).\r\n" + generalPrompt, false, nil
		}
		return "\r\nfile                100%  512KB 512.0KB/s   00:01\r\n" + generalPrompt, false, nil
	case cmd == "":
		return generalPrompt, false, nil
	}
	return fmt.Sprintf("%s: ok\r\n", cmd) + generalPrompt, false, nil
}
