package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "runroom",
	Short: "Runroom - live multi-language code execution",
	Long: `Runroom runs user code interactively: each session gets its own
process under a pseudo-terminal, output streams back as it is produced,
and plots written to the workspace are picked up and transmitted.

The serve command exposes sessions and exam rooms over WebSocket; the
run command executes a local file with the same engine.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error unless the command
		// silenced it after reporting through its own channel.
		os.Exit(1)
	}
}
