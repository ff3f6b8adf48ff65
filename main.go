package main

import "github.com/kaungyarzar/ssh-client-ruckus/cmd"

func main() {
	cmd.Execute()
}
