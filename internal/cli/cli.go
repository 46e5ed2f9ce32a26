// Package cli provides the command-line interface for the multibagger
// discovery system.
package cli

import (
	"os"
)

// Run executes the root command.
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
