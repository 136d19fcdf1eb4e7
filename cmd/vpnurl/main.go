package main

import (
	"fmt"
	"os"

	"github.com/vpnurl/vpnurl/cmd/vpnurl/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that already reported their outcome (like detect)
		// return an ExitError carrying the status.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root(commands.OSEnv()).Execute(os.Args[1:])
}
