package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zoeorch/zoeorch/internal/toolapi"
)

// NewStatusCommand looks up registry entries for one task, one plan, or
// the whole registry.
func NewStatusCommand() *cobra.Command {
	var taskID, planID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report registry status for a task or plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := toolapi.New(cfg.BaseDir)
			result, err := svc.TaskStatus(taskID, planID)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "execution task id to look up")
	cmd.Flags().StringVar(&planID, "plan-id", "", "plan id to filter by")
	return cmd
}

// NewListPlansCommand lists recently archived plans.
func NewListPlansCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list-plans",
		Short: "List recently archived plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc := toolapi.New(cfg.BaseDir)
			plans, err := svc.ListPlans(limit)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{"plans": plans})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of plans to return")
	return cmd
}
