package apsim

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net"

	"golang.org/x/crypto/ssh"
)

// Start launches a simulated access point listening on listenAddr (for
// example 127.0.0.1:0). It accepts any SSH user without authentication, as
// the real device does before its in-band login, and runs d.Serve on every
// interactive shell. It returns the bound address and a stop function that
// closes the listener and waits for the accept loop to end.
func Start(listenAddr string, d *Device) (string, func(), error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", nil, err
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return "", nil, err
	}
	cfg := &ssh.ServerConfig{NoClientAuth: true}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return "", nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				continue
			}
			go handleConn(conn, cfg, d)
		}
	}()

	stop := func() {
		_ = ln.Close()
		<-done
	}
	return ln.Addr().String(), stop, nil
}

func handleConn(raw net.Conn, cfg *ssh.ServerConfig, d *Device) {
	sc, chans, reqs, err := ssh.NewServerConn(raw, cfg)
	if err != nil {
		_ = raw.Close()
		return
	}
	defer sc.Close()
	go ssh.DiscardRequests(reqs)
	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "")
			continue
		}
		c, reqs, err := ch.Accept()
		if err != nil {
			continue
		}
		go handleSession(c, reqs, d)
	}
}

func handleSession(ch ssh.Channel, in <-chan *ssh.Request, d *Device) {
	for req := range in {
		switch req.Type {
		case "pty-req", "window-change", "env":
			_ = req.Reply(true, nil)
		case "shell":
			_ = req.Reply(true, nil)
			go func() {
				_ = d.Serve(ch)
				_, _ = ch.SendRequest("exit-status", false, []byte{0, 0, 0, 0})
				_ = ch.Close()
			}()
		default:
			_ = req.Reply(false, nil)
		}
	}
}
