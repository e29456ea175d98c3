// Package main provides the CLI entry point for the orchestrator.
package main

import (
	"fmt"
	"os"

	"github.com/zoeorch/zoeorch/internal/cmd"
	"github.com/zoeorch/zoeorch/internal/zoerr"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(zoerr.ExitCode(err))
	}
}
