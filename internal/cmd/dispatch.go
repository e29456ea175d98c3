package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/toolapi"
)

// NewDispatchCommand releases every ready subtask of an already-archived
// plan onto the execution queue.
func NewDispatchCommand() *cobra.Command {
	var planFile string
	var watch bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Release ready subtasks of a plan onto the execution queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := toolapi.New(cfg.BaseDir)
			result, err := svc.DispatchPlan(planFile, watch, pollInterval)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "path to the plan's archived plan.json (required)")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep polling until every subtask is released")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 5*time.Second, "poll interval in watch mode")
	cmd.MarkFlagRequired("plan")
	return cmd
}

// NewPlanAndDispatchCommand plans a task and immediately dispatches
// whatever subtasks are ready, in one call.
func NewPlanAndDispatchCommand() *cobra.Command {
	var in toolapi.TaskInput
	var watch bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "plan-and-dispatch",
		Short: "Plan a request and dispatch its ready subtasks in one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := toolapi.New(cfg.BaseDir)
			result, err := svc.PlanAndDispatchTask(in, watch, pollInterval)
			if err != nil {
				return err
			}
			printPlanSummaryBox(cmd, &toolapi.PlanTaskResult{Plan: result.Plan, PlanFile: result.PlanFile})
			return printJSON(result)
		},
	}

	taskInputFlags(cmd, &in)
	cmd.Flags().BoolVar(&watch, "watch", false, "keep polling until every subtask is released")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 5*time.Second, "poll interval in watch mode")
	return cmd
}
