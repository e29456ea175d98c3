package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/config"
	"github.com/zoeorch/zoeorch/internal/logger"
	"github.com/zoeorch/zoeorch/internal/metrics"
	"github.com/zoeorch/zoeorch/internal/notify"
	"github.com/zoeorch/zoeorch/internal/spawner"
	"github.com/zoeorch/zoeorch/internal/supervisor"
)

// NewSuperviseCommand runs the supervisor's reconciliation loop: polling
// the registry, checking PR/CI state, and driving Ralph Loop v2 retries.
func NewSuperviseCommand() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "supervise",
		Short: "Reconcile running tasks against PR/CI state until merge-ready or blocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			notifier := buildNotifier(cfg)
			sp := spawner.New(cfg.BaseDir, spawner.RunnerPaths(cfg.Runners.AsMap()))
			backend := spawner.Choose()

			sup := supervisor.New(cfg.BaseDir, notifier, sp, backend)
			sup.TickLogger = logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

			if cfg.Metrics.Enabled {
				go metrics.Serve(cfg.Metrics.Addr)
			}

			maxTicks := 0
			if once {
				maxTicks = 1
			}
			return sup.Run(cfg.SupervisorPollInterval, maxTicks)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single reconciliation pass and exit")
	return cmd
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	var sinks []notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.Notify.WebhookURL))
	}
	if cfg.Notify.NATSURL != "" {
		if bus, err := notify.NewNATSBus(cfg.Notify.NATSURL, cfg.Notify.NATSSubject); err == nil {
			sinks = append(sinks, bus)
		}
	}
	if len(sinks) == 0 {
		return nil
	}
	return notify.Multi{Sinks: sinks}
}
