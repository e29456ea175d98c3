package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanAnalysisTaskReturnsSingleSubtask(t *testing.T) {
	r := routing{agent: "codex", model: "m", effort: "medium"}
	subtasks := planAnalysisTask("acme/widgets", "audit billing", "investigate the billing flow", false, TaskProfile{}, r, nil)
	require.Len(t, subtasks, 1)
	assert.Equal(t, "S1", subtasks[0].ID)
	assert.Nil(t, subtasks[0].DependsOn)
	assert.Contains(t, subtasks[0].Prompt, "audit billing")
}

func TestPlanDocsOnlyTaskDefaultsFilesHintWhenProfileHasNone(t *testing.T) {
	r := routing{agent: "codex", model: "m", effort: "medium"}
	subtasks := planDocsOnlyTask("acme/widgets", "docs", "refresh readme", false, TaskProfile{}, r, nil, "")
	require.Len(t, subtasks, 1)
	assert.Equal(t, []string{"README.md", "docs/"}, subtasks[0].FilesHint)
}

func TestPlanCodeChangeTasksChainsDependencies(t *testing.T) {
	r := routing{agent: "codex", model: "m", effort: "medium"}
	profile := TaskProfile{
		TestsRequested: true,
		DocsRequested:  true,
	}
	subtasks := planCodeChangeTasks("acme/widgets", "add retries", "add retry logic", false, profile, r, nil, "", false)
	require.Len(t, subtasks, 3)
	assert.Equal(t, "S1", subtasks[0].ID)
	assert.Equal(t, "S2", subtasks[1].ID)
	assert.Equal(t, []string{"S1"}, subtasks[1].DependsOn)
	assert.Equal(t, "S3", subtasks[2].ID)
	assert.Equal(t, []string{"S2"}, subtasks[2].DependsOn)
}

func TestPlanCodeChangeTasksAddsFoundationSubtaskWhenRequired(t *testing.T) {
	r := routing{agent: "codex", model: "m", effort: "medium"}
	profile := TaskProfile{
		RequiresFoundationSplit: true,
		TestsRequested:          true,
	}
	subtasks := planCodeChangeTasks("acme/widgets", "refactor auth", "refactor the auth module", false, profile, r, nil, "", false)
	require.Len(t, subtasks, 3)
	assert.Equal(t, "Prepare the implementation surface", subtasks[0].Title)
	assert.Equal(t, "S2", subtasks[1].ID)
	assert.Equal(t, []string{"S1"}, subtasks[1].DependsOn)
}

func TestMergeDoDDedupesAcrossPhaseAndGlobal(t *testing.T) {
	out := mergeDoD([]string{"phase item", "shared item"}, []string{"shared item", "global item"})
	assert.Equal(t, []string{"phase item", "shared item", "global item"}, out)
}
