package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatColorizedRegistrySummaryEmpty(t *testing.T) {
	assert.Equal(t, "no active tasks", formatColorizedRegistrySummary(nil))
	assert.Equal(t, "no active tasks", formatColorizedRegistrySummary(map[string]int{}))
}

func TestFormatColorizedRegistrySummarySortsByStatusName(t *testing.T) {
	out := formatColorizedRegistrySummary(map[string]int{
		"ready":   2,
		"blocked": 1,
		"running": 3,
	})

	idxBlocked := strings.Index(out, "blocked")
	idxReady := strings.Index(out, "ready")
	idxRunning := strings.Index(out, "running")

	assert.True(t, idxBlocked < idxReady)
	assert.True(t, idxReady < idxRunning)
	assert.Contains(t, out, "blocked: 1")
	assert.Contains(t, out, "ready: 2")
	assert.Contains(t, out, "running: 3")
}

func TestFormatColorizedRegistrySummaryUnknownStatusUsesDefaultMetric(t *testing.T) {
	out := formatColorizedRegistrySummary(map[string]int{"queued": 5})
	assert.Contains(t, out, "queued: 5")
}

func TestFormatColorizedMetric(t *testing.T) {
	scheme := newColorScheme()
	out := formatColorizedMetric("status", 7, scheme)
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "7")
}
