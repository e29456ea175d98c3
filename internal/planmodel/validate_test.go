package planmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoeorch/zoeorch/internal/models"
)

func samplePlan() *models.Plan {
	return &models.Plan{
		PlanID:      "p1",
		Repo:        "acme/widgets",
		Title:       "add retries",
		RequestedBy: "alice",
		RequestedAt: 1700000000000,
		Objective:   "add retry logic",
		Version:     "1.0",
		Subtasks: []models.Subtask{
			{ID: "t1", Title: "a", Description: "d", Agent: "codex", Model: "m", Effort: "medium", WorktreeStrategy: "isolated", Prompt: "p"},
			{ID: "t2", Title: "b", Description: "d", Agent: "codex", Model: "m", Effort: "medium", WorktreeStrategy: "isolated", Prompt: "p", DependsOn: []string{"t1"}},
		},
	}
}

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	assert.NoError(t, Validate(samplePlan()))
}

func TestValidateRejectsNilPlan(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestValidateRejectsBadIdentifier(t *testing.T) {
	p := samplePlan()
	p.PlanID = "not a valid id!!"
	assert.Error(t, Validate(p))
}

func TestValidateRejectsDuplicateSubtaskIDs(t *testing.T) {
	p := samplePlan()
	p.Subtasks[1].ID = "t1"
	p.Subtasks[1].DependsOn = nil
	assert.Error(t, Validate(p))
}

func TestValidateRejectsUnknownDependency(t *testing.T) {
	p := samplePlan()
	p.Subtasks[1].DependsOn = []string{"does-not-exist"}
	assert.Error(t, Validate(p))
}

func TestValidateRejectsCycle(t *testing.T) {
	p := samplePlan()
	p.Subtasks[0].DependsOn = []string{"t2"}
	assert.Error(t, Validate(p))
}

func TestValidateRejectsInvalidAgent(t *testing.T) {
	p := samplePlan()
	p.Subtasks[0].Agent = "gemini"
	assert.Error(t, Validate(p))
}

func TestValidateFillsRoutingDefaults(t *testing.T) {
	p := samplePlan()
	p.Routing = &models.RoutingDefaults{Agent: "claude", Model: "sonnet", Effort: "high"}
	p.Subtasks[0].Agent = ""
	p.Subtasks[0].Model = ""
	p.Subtasks[0].Effort = ""

	require.NoError(t, Validate(p))
	assert.Equal(t, "claude", p.Subtasks[0].Agent)
	assert.Equal(t, "sonnet", p.Subtasks[0].Model)
	assert.Equal(t, "high", p.Subtasks[0].Effort)
}

func TestValidateRejectsOversizedPrompt(t *testing.T) {
	p := samplePlan()
	huge := make([]byte, models.PromptMaxChars+1)
	for i := range huge {
		huge[i] = 'x'
	}
	p.Subtasks[0].Prompt = string(huge)
	assert.Error(t, Validate(p))
}

func TestTopologicallySortedSubtasksRespectsDependenciesAndOriginalOrder(t *testing.T) {
	p := samplePlan()
	p.Subtasks = append(p.Subtasks, models.Subtask{
		ID: "t0", Title: "c", Description: "d", Agent: "codex", Model: "m",
		Effort: "medium", WorktreeStrategy: "isolated", Prompt: "p",
	})
	// t0 has no deps and was appended last. t1 and t0 start ready; once t1
	// is popped, t2 joins the ready set and sorts ahead of t0 by original
	// index, so the order is t1, t2, t0.
	ordered := TopologicallySortedSubtasks(p)
	require.Len(t, ordered, 3)

	pos := map[string]int{}
	for i, s := range ordered {
		pos[s.ID] = i
	}
	assert.Less(t, pos["t1"], pos["t2"])
}
