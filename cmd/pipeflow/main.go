// Package main provides the PipeFlow CLI application
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Best effort: a missing .env file is not an error
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "pipeflow",
		Short: "Linear pipeline runner with automatic provenance capture",
		Long: "PipeFlow chains pipes into ordered pipelines over a shared flow pool\n" +
			"and config store, recording exactly which flows and settings each\n" +
			"pipe touched.",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newTraceCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("PipeFlow %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		},
	}
}
