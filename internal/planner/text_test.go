package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAnyIsCaseInsensitive(t *testing.T) {
	assert.True(t, containsAny("Please REFACTOR the module", []string{"refactor"}))
	assert.False(t, containsAny("nothing relevant here", []string{"refactor"}))
}

func TestKeywordTokensDedupesPreservingOrder(t *testing.T) {
	tokens := keywordTokens("Add retry retry logic to HTTP client")
	assert.Equal(t, []string{"add", "retry", "logic", "http", "client"}, tokens)
}

func TestDedupeDropsBlanksAndRepeats(t *testing.T) {
	out := dedupe([]string{"a", "", " ", "a", "b", "b"})
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestPartitionFilesBucketsByPathShape(t *testing.T) {
	impl, tests, docs := partitionFiles([]string{
		"internal/http/client.go",
		"tests/client_test.go",
		"README.md",
		"docs/guide.md",
	})
	assert.Equal(t, []string{"internal/http/client.go"}, impl)
	assert.Equal(t, []string{"tests/client_test.go"}, tests)
	assert.Equal(t, []string{"README.md", "docs/guide.md"}, docs)
}

func TestRankedFileSubsetPrefersHigherScoringCandidates(t *testing.T) {
	candidates := []string{"internal/service/widget.go", "internal/handler/route.go"}
	ranked := rankedFileSubset(candidates, []string{"handler", "route"}, nil, nil, 2)
	assert.Equal(t, "internal/handler/route.go", ranked[0])
}

func TestRankedFileSubsetFallsBackWhenNothingScores(t *testing.T) {
	ranked := rankedFileSubset([]string{"a.go", "b.go"}, []string{"nomatch"}, nil, []string{"fallback.go"}, 2)
	assert.Equal(t, []string{"a.go", "b.go"}, ranked)
}

func TestFirstNClampsToLength(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, firstN([]string{"a", "b"}, 5))
	assert.Equal(t, []string{"a"}, firstN([]string{"a", "b"}, 1))
}
