package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/queue"
	"github.com/zoeorch/zoeorch/internal/registry"
)

func twoSubtaskPlan() *models.Plan {
	return &models.Plan{
		PlanID:      "p1",
		Repo:        "acme/widgets",
		RequestedBy: "alice",
		RequestedAt: 1700000000000,
		Version:     "1.0",
		Subtasks: []models.Subtask{
			{ID: "t1", Title: "a", Agent: "codex", Model: "m", Effort: "medium", WorktreeStrategy: "isolated", Prompt: "p"},
			{ID: "t2", Title: "b", Agent: "codex", Model: "m", Effort: "medium", WorktreeStrategy: "isolated", Prompt: "p", DependsOn: []string{"t1"}},
		},
	}
}

func TestExecutionTaskIDIsDeterministicAndSanitized(t *testing.T) {
	p := &models.Plan{PlanID: "Plan One!"}
	s := models.Subtask{ID: "t1"}
	id := ExecutionTaskID(p, s)
	assert.Equal(t, ExecutionTaskID(p, s), id)
	assert.NotContains(t, id, " ")
	assert.NotContains(t, id, "!")
}

func TestBuildExecutionTaskCopiesSliceFieldsDefensively(t *testing.T) {
	p := twoSubtaskPlan()
	s := p.Subtasks[1]
	task := BuildExecutionTask(p, s, "zoe")

	assert.Equal(t, "zoe", task.Metadata.PlannedBy)
	assert.Equal(t, []string{"t1"}, task.Metadata.DependsOn)

	task.Metadata.DependsOn[0] = "mutated"
	assert.Equal(t, "t1", s.DependsOn[0])
}

func TestDispatchReadyOnlyReleasesSatisfiedSubtasks(t *testing.T) {
	dir := t.TempDir()
	p := twoSubtaskPlan()

	paths, err := DispatchReady(dir, p, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	task, err := queue.Load(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "t1", task.Metadata.SubtaskID)
}

func TestDispatchReadyDoesNotDoubleQueue(t *testing.T) {
	dir := t.TempDir()
	p := twoSubtaskPlan()

	_, err := DispatchReady(dir, p, nil)
	require.NoError(t, err)

	paths, err := DispatchReady(dir, p, nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDispatchReadyReleasesDependentOnceUpstreamReady(t *testing.T) {
	dir := t.TempDir()
	p := twoSubtaskPlan()

	_, err := DispatchReady(dir, p, nil)
	require.NoError(t, err)

	entries := []models.RegistryEntry{
		{
			ID:     ExecutionTaskID(p, p.Subtasks[0]),
			Status: "ready",
			Metadata: models.ExecutionTaskMetadata{
				PlanID:    p.PlanID,
				SubtaskID: "t1",
			},
		},
	}

	paths, err := DispatchReady(dir, p, entries)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	task, err := queue.Load(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "t2", task.Metadata.SubtaskID)
}

func TestWatchAndDispatchStopsAfterMaxLoopsWhenNeverReady(t *testing.T) {
	dir := t.TempDir()
	p := twoSubtaskPlan()

	loadEntries := func() ([]models.RegistryEntry, error) {
		return nil, nil
	}

	paths, err := WatchAndDispatch(dir, p, loadEntries, 0, 2)
	require.NoError(t, err)
	// t1 queues on the first loop; t2 stays blocked forever since t1 never
	// reaches "ready" in this fake registry feed.
	assert.Len(t, paths, 1)
}

func TestWatchAndDispatchStopsOnceEverySubtaskIsQueued(t *testing.T) {
	dir := t.TempDir()
	p := twoSubtaskPlan()
	p.Subtasks = p.Subtasks[:1]

	loadEntries := func() ([]models.RegistryEntry, error) {
		return registry.Load(dir)
	}

	paths, err := WatchAndDispatch(dir, p, loadEntries, 0, 5)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}
