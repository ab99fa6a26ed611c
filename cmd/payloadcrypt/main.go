// Package main is the entry point for payloadcrypt. It wires the sub-commands
// into a cobra root command and maps failures to a non-zero exit status.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"payloadcrypt/cmd/payloadcrypt/internal/commands"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, commands.FormatError(err))
		os.Exit(1)
	}
}

func run() error {
	rootCmd := commands.NewRootCmd(os.Stdout, os.Stderr)
	initializeCommands(rootCmd)
	return rootCmd.Execute()
}

// initializeCommands registers every sub-command with the root command.
func initializeCommands(rootCmd *cobra.Command) {
	commands.InitDecryptCommands(rootCmd)
	commands.InitFetchCommand(rootCmd)
	commands.InitServeCommand(rootCmd)
	commands.InitDeviceCommand(rootCmd)
	commands.InitStorageCommands(rootCmd)
}
