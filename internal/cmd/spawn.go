package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/logger"
	"github.com/zoeorch/zoeorch/internal/queue"
	"github.com/zoeorch/zoeorch/internal/spawner"
)

// spawnProgress is an ASCII progress bar scoped to one queue-draining pass:
// it tracks spawned/failed counts as ProcessOne is called for each queued
// task rather than a generic current/total counter.
type spawnProgress struct {
	total   int
	spawned int
	failed  int
	width   int
	prefix  string
	mu      sync.RWMutex
}

// newSpawnProgress creates a progress bar for draining total queued tasks.
func newSpawnProgress(total, width int) *spawnProgress {
	if width < 1 {
		width = 10
	}
	return &spawnProgress{total: total, width: width, prefix: "spawning "}
}

// RecordSpawned marks one more queued task successfully handed to a runner.
func (sp *spawnProgress) RecordSpawned() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.spawned++
}

// RecordFailed marks one more queued task that failed to spawn.
func (sp *spawnProgress) RecordFailed() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.failed++
}

// done returns how many of total have been accounted for (spawned or failed).
func (sp *spawnProgress) done() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.spawned + sp.failed
}

// percentage returns progress through the queue as 0-100.
func (sp *spawnProgress) percentage() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	if sp.total == 0 {
		return 0
	}
	perc := (sp.done() * 100) / sp.total
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}
	return perc
}

// render generates the ASCII progress bar string, coloring it red while any
// task in this pass has failed so a watch-mode operator's eye catches it.
func (sp *spawnProgress) render() string {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	perc := 0
	if sp.total > 0 {
		perc = (sp.done() * 100) / sp.total
		if perc > 100 {
			perc = 100
		}
	}

	filled := (perc * sp.width) / 100
	if filled > sp.width {
		filled = sp.width
	}

	bar := "["
	for i := 0; i < sp.width; i++ {
		if i < filled {
			bar += "="
		} else {
			bar += " "
		}
	}
	bar += "]"

	result := fmt.Sprintf("%s%s %d/%d spawned, %d failed (%d%%)", sp.prefix, bar, sp.spawned, sp.total, sp.failed, perc)

	switch {
	case sp.failed > 0:
		result = fmt.Sprintf("\033[31m%s\033[0m", result) // Red: at least one failure this pass
	case perc == 100:
		result = fmt.Sprintf("\033[32m%s\033[0m", result) // Green: fully drained, no failures
	default:
		result = fmt.Sprintf("\033[36m%s\033[0m", result) // Cyan: in progress
	}
	return result
}

// isattyWriter reports whether w is a TTY, for deciding whether to render a
// live progress bar or just the plain per-task log lines.
func isattyWriter(w io.Writer) bool {
	if w == os.Stdout {
		return isatty.IsTerminal(os.Stdout.Fd())
	}
	return false
}

// NewSpawnCommand drains the execution queue, spawning one runner per
// queued task, either once or continuously (watching for new queue
// entries via fsnotify with a poll-interval fallback).
func NewSpawnCommand() *cobra.Command {
	var watch bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "spawn",
		Short: "Spawn runners for queued execution tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
			sp := spawner.New(cfg.BaseDir, spawner.RunnerPaths(cfg.Runners.AsMap()))

			progress := !watch && isattyWriter(cmd.OutOrStdout())

			runOnce := func() {
				paths, err := queue.List(cfg.BaseDir)
				if err != nil {
					log.LogError(err.Error())
					return
				}

				var bar *spawnProgress
				if progress && len(paths) > 0 {
					bar = newSpawnProgress(len(paths), 30)
				}

				for _, p := range paths {
					ref, err := sp.ProcessOne(p)
					if err != nil {
						log.LogError(err.Error())
						if bar != nil {
							bar.RecordFailed()
						}
					} else {
						log.LogInfo(fmt.Sprintf("spawned: %s", ref))
						if bar != nil {
							bar.RecordSpawned()
						}
					}
					if bar != nil {
						fmt.Fprintln(cmd.OutOrStdout(), bar.render())
					}
				}
			}

			if !watch {
				runOnce()
				return nil
			}

			watcher, ok := queue.NewWatcher(cfg.BaseDir)
			if ok {
				defer watcher.Close()
			}
			for {
				runOnce()
				if ok {
					select {
					case <-watcher.Events:
					case <-time.After(pollInterval):
					}
				} else {
					time.Sleep(pollInterval)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep draining the queue as new tasks arrive")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 2*time.Second, "fallback poll interval in watch mode")
	return cmd
}
