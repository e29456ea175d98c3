// Package cmd wires the orchestrator's cobra subcommands: plan,
// dispatch, plan-and-dispatch, status, list-plans, invoke, schema, spawn,
// and supervise.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/config"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var cfgFile string
var baseDirFlag string

// NewRootCommand creates and returns the root cobra command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zoeorch",
		Short: "Single-host orchestrator for autonomous coding agents",
		Long: `zoeorch decomposes a natural-language engineering request into a
small ordered graph of subtasks, archives the plan, materializes isolated
working copies of the target repository per subtask, spawns an agent
process inside each, and supervises it against hosting-service PR/CI
state until merge-ready or blocked.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml (default $HOME/.zoeorch/config.yaml)")
	cmd.PersistentFlags().StringVar(&baseDirFlag, "base-dir", "", "override the configured base_dir")

	cmd.AddCommand(NewPlanCommand())
	cmd.AddCommand(NewDispatchCommand())
	cmd.AddCommand(NewPlanAndDispatchCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewListPlansCommand())
	cmd.AddCommand(NewInvokeCommand())
	cmd.AddCommand(NewSchemaCommand())
	cmd.AddCommand(NewSpawnCommand())
	cmd.AddCommand(NewSuperviseCommand())

	return cmd
}

// loadConfig resolves config.yaml (explicit --config, else
// $HOME/.zoeorch/config.yaml, else built-in defaults), loads any .env
// sitting alongside it, applies --base-dir, and validates the result.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".zoeorch", "config.yaml")
		}
	}

	_ = config.LoadDotenv(filepath.Join(filepath.Dir(path), ".env"))

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if baseDirFlag != "" {
		cfg.BaseDir = baseDirFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
