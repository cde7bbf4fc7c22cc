// Command biblioteca is the main entry point for the CLI binary.
// It dispatches to subcommands like setup, server, and client.
package main

import (
	"fmt"
	"os"

	"github.com/RealKC/bd-homework/internal/cmd/client"
	"github.com/RealKC/bd-homework/internal/cmd/server"
	"github.com/RealKC/bd-homework/internal/cmd/setup"
)

// main is the process entry point and forwards to run for testable logic.
func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// run parses argv and invokes the matching subcommand handler.
// It returns an error for missing or unknown subcommands.
func run(argv []string) error {
	if len(argv) < 2 {
		usage()
		return fmt.Errorf("missing subcommand")
	}

	switch argv[1] {
	case "setup":
		return setup.Run(argv[2:])
	case "server":
		return server.Run(argv[2:])
	case "client":
		return client.Run(argv[2:])
	case "-h", "--help", "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown subcommand: %s", argv[1])
	}
}

// usage prints the canonical CLI syntax to stderr.
func usage() {
	fmt.Fprintln(os.Stderr, "biblioteca <setup|server|client> [flags]")
}
