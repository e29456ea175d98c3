package spawner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/queue"
	"github.com/zoeorch/zoeorch/internal/registry"
)

func TestBranchUsesSharedPlanBranchForSharedStrategy(t *testing.T) {
	task := models.ExecutionTask{
		ID: "p1-t1",
		Metadata: models.ExecutionTaskMetadata{
			WorktreeStrategy: "shared",
			PlanID:           "plan one!",
		},
	}
	assert.Equal(t, "plan/plan-one", Branch(task))
}

func TestBranchUsesIsolatedBranchPerTaskByDefault(t *testing.T) {
	task := models.ExecutionTask{ID: "p1-t1", Metadata: models.ExecutionTaskMetadata{WorktreeStrategy: "isolated"}}
	assert.Equal(t, "feat/p1-t1", Branch(task))
}

func TestWorktreeDirNameReplacesSlashes(t *testing.T) {
	assert.Equal(t, "feat-p1-t1", worktreeDirName("feat/p1-t1"))
}

func TestCompileFallbackPromptIncludesMetadata(t *testing.T) {
	worktree := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(worktree, "README.md"), []byte("# x"), 0644))

	task := models.ExecutionTask{
		Title:       "Land the change",
		Description: "do the thing",
		Metadata: models.ExecutionTaskMetadata{
			Objective:        "ship the feature",
			FilesHint:        []string{"internal/foo.go"},
			DefinitionOfDone: []string{"tests pass"},
		},
	}
	prompt := compileFallbackPrompt(worktree, task)
	assert.Contains(t, prompt, "Land the change")
	assert.Contains(t, prompt, "ship the feature")
	assert.Contains(t, prompt, "README.md")
	assert.Contains(t, prompt, "internal/foo.go")
	assert.Contains(t, prompt, "tests pass")
}

func TestProcessOneRejectsQueueFileMissingIDOrRepo(t *testing.T) {
	dir := t.TempDir()
	path, err := queue.Enqueue(dir, models.ExecutionTask{ID: "", Repo: ""})
	require.NoError(t, err)

	sp := New(dir, RunnerPaths{})
	_, err = sp.ProcessOne(path)
	assert.Error(t, err)

	// The malformed queue file should be removed even on failure.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessOneReturnsExistingIDWithoutRespawning(t *testing.T) {
	dir := t.TempDir()
	path, err := queue.Enqueue(dir, models.ExecutionTask{ID: "t1", Repo: "acme/widgets"})
	require.NoError(t, err)

	require.NoError(t, registry.Upsert(dir, models.RegistryEntry{ID: "t1", Status: "running"}))

	sp := New(dir, RunnerPaths{})
	id, err := sp.ProcessOne(path)
	require.NoError(t, err)
	assert.Equal(t, "t1", id)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessOneFailsWhenRepoMissing(t *testing.T) {
	dir := t.TempDir()
	path, err := queue.Enqueue(dir, models.ExecutionTask{ID: "t1", Repo: "acme/widgets"})
	require.NoError(t, err)

	sp := New(dir, RunnerPaths{})
	_, err = sp.ProcessOne(path)
	assert.Error(t, err)
}
