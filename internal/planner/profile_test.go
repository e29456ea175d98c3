package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTaskProfileClassifiesDocsOnly(t *testing.T) {
	profile := buildTaskProfile("documentation refresh", "refresh readme with new install instructions", nil, false, false)
	assert.True(t, profile.DocsOnly)
	assert.False(t, profile.AnalysisOnly)
}

func TestBuildTaskProfileClassifiesAnalysisOnly(t *testing.T) {
	profile := buildTaskProfile("audit billing", "investigate and analyze the billing reconciliation flow", nil, false, false)
	assert.True(t, profile.AnalysisOnly)
	assert.False(t, profile.DocsOnly)
}

func TestBuildTaskProfileRequiresFoundationSplitForComplexRequests(t *testing.T) {
	longObjective := "refactor and migrate the entire authentication subsystem to a new session model and also wire it into every downstream handler across the whole codebase consistently"
	profile := buildTaskProfile("refactor auth", longObjective, []string{"a.go", "b.go", "c.go"}, true, true)
	assert.True(t, profile.RequiresFoundationSplit)
}

func TestBuildTaskProfileSimpleChangeDoesNotRequireFoundationSplit(t *testing.T) {
	profile := buildTaskProfile("add retries", "add retry logic to the http client", nil, false, false)
	assert.False(t, profile.RequiresFoundationSplit)
	assert.False(t, profile.DocsOnly)
	assert.False(t, profile.AnalysisOnly)
	assert.True(t, profile.TestsRequested)
}
