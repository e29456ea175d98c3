package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/logger"
	"github.com/zoeorch/zoeorch/internal/toolapi"
)

func printPlanSummaryBox(cmd *cobra.Command, plan *toolapi.PlanTaskResult) {
	if plan == nil || plan.Plan == nil {
		return
	}
	titles := make([]string, 0, len(plan.Plan.Subtasks))
	for _, st := range plan.Plan.Subtasks {
		titles = append(titles, st.Title)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), logger.FormatPlanSummaryBox(plan.Plan.PlanID, plan.Plan.Repo, titles))
}

func taskInputFlags(cmd *cobra.Command, in *toolapi.TaskInput) {
	cmd.Flags().StringVar(&in.Repo, "repo", "", "target repository name (required)")
	cmd.Flags().StringVar(&in.Title, "title", "", "short task title (required)")
	cmd.Flags().StringVar(&in.Objective, "objective", "", "natural-language engineering request (required)")
	cmd.Flags().StringVar(&in.RequestedBy, "requested-by", "", "identity of the requester")
	cmd.Flags().StringVar(&in.Agent, "agent", "", "default agent (codex, claude)")
	cmd.Flags().StringVar(&in.Model, "model", "", "default model")
	cmd.Flags().StringVar(&in.Effort, "effort", "", "default reasoning effort (low, medium, high)")
	cmd.MarkFlagRequired("repo")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("objective")
}

// NewPlanCommand decomposes a request into a validated, archived plan.
func NewPlanCommand() *cobra.Command {
	var in toolapi.TaskInput

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Decompose a request into a validated, archived plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := toolapi.New(cfg.BaseDir)
			result, err := svc.PlanTask(in)
			if err != nil {
				return err
			}
			printPlanSummaryBox(cmd, result)
			return printJSON(result)
		},
	}

	taskInputFlags(cmd, &in)
	return cmd
}
