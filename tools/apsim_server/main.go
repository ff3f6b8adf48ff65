package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaungyarzar/ssh-client-ruckus/tools/apsim"
)

func main() {
	d := &apsim.Device{
		Username:   "super",
		Password:   "sp-admin",
		Version:    "116.0.0.0.1",
		Serial:     "451234567890",
		AskHostKey: true,
	}
	addr, stop, err := apsim.Start("127.0.0.1:20222", d)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "failed to start simulated access point:", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintf(os.Stderr, "simulated access point listening on %s (login super / sp-admin)\n", addr)
	defer stop()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
