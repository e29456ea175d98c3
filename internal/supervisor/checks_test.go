package supervisor

import "testing"

import "github.com/stretchr/testify/assert"

func TestMergeCleanRequiresMergeableAndCleanState(t *testing.T) {
	assert.True(t, MergeClean(PullRequest{Mergeable: true, MergeStateStatus: "clean"}))
	assert.True(t, MergeClean(PullRequest{Mergeable: "MERGEABLE", MergeStateStatus: "CLEAN"}))
	assert.False(t, MergeClean(PullRequest{Mergeable: true, MergeStateStatus: "dirty"}))
	assert.False(t, MergeClean(PullRequest{Mergeable: false, MergeStateStatus: "clean"}))
	assert.False(t, MergeClean(PullRequest{Mergeable: "unknown", MergeStateStatus: "clean"}))
}

func TestAnalyzeChecksEmptyRollupIsPending(t *testing.T) {
	passed, summary, pending := AnalyzeChecks(PullRequest{})
	assert.False(t, passed)
	assert.Empty(t, summary)
	assert.True(t, pending)
}

func TestAnalyzeChecksAnyPendingCheckBlocksVerdict(t *testing.T) {
	pr := PullRequest{StatusCheckRollup: []CheckRollupEntry{
		{Name: "build", Status: "COMPLETED", Conclusion: "SUCCESS"},
		{Name: "test", Status: "IN_PROGRESS"},
	}}
	_, _, pending := AnalyzeChecks(pr)
	assert.True(t, pending)
}

func TestAnalyzeChecksReportsFailureSummary(t *testing.T) {
	pr := PullRequest{StatusCheckRollup: []CheckRollupEntry{
		{Name: "build", Status: "COMPLETED", Conclusion: "SUCCESS"},
		{Context: "ci/test", Status: "COMPLETED", Conclusion: "FAILURE"},
	}}
	passed, summary, pending := AnalyzeChecks(pr)
	assert.False(t, passed)
	assert.False(t, pending)
	assert.Contains(t, summary, "ci/test:FAILURE")
}

func TestAnalyzeChecksAllPassed(t *testing.T) {
	pr := PullRequest{StatusCheckRollup: []CheckRollupEntry{
		{Name: "build", Status: "COMPLETED", Conclusion: "SUCCESS"},
		{Name: "test", Status: "COMPLETED", Conclusion: "SUCCESS"},
	}}
	passed, summary, pending := AnalyzeChecks(pr)
	assert.True(t, passed)
	assert.Empty(t, summary)
	assert.False(t, pending)
}
