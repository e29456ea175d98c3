package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/toolapi"
)

func TestPrintPlanSummaryBoxWritesToStderrWithSubtaskTitles(t *testing.T) {
	cmd := &cobra.Command{}
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	plan := &toolapi.PlanTaskResult{Plan: &models.Plan{
		PlanID: "p1",
		Repo:   "acme/widgets",
		Subtasks: []models.Subtask{
			{ID: "S1", Title: "Implement the feature"},
		},
	}}
	printPlanSummaryBox(cmd, plan)

	out := stderr.String()
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "acme/widgets")
	assert.Contains(t, out, "Implement the feature")
}

func TestPrintPlanSummaryBoxIsNoOpForNilPlan(t *testing.T) {
	cmd := &cobra.Command{}
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	printPlanSummaryBox(cmd, nil)
	printPlanSummaryBox(cmd, &toolapi.PlanTaskResult{})

	assert.Empty(t, stderr.String())
}

func TestNewRootCommandRegistersEverySubcommand(t *testing.T) {
	root := NewRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"plan", "dispatch", "plan-and-dispatch", "status", "list-plans", "invoke", "schema", "spawn", "supervise"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}
