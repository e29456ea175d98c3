package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerWritesRunLogAndLatestSymlink(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")

	fl, err := NewFileLoggerWithDirAndLevel(logDir, "info")
	require.NoError(t, err)
	defer fl.Close()

	fl.LogInfo("hello")
	fl.LogDebug("hidden at info level")

	contents, err := os.ReadFile(fl.runFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "hello")
	assert.NotContains(t, string(contents), "hidden at info level")
	assert.Contains(t, string(contents), "=== orchestrator run log ===")

	latest := filepath.Join(logDir, "latest.log")
	target, err := os.Readlink(latest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(fl.runFile), target)
}

func TestFileLoggerDomainEventsAndTickSummary(t *testing.T) {
	dir := t.TempDir()
	fl, err := NewFileLoggerWithDirAndLevel(dir, "trace")
	require.NoError(t, err)
	defer fl.Close()

	fl.LogPlanCreated("plan-1", "acme/widgets", 2)
	fl.LogSubtaskQueued("plan-1", "t1")
	fl.LogAgentSpawned("t1", "codex", "zoeorch/t1", "pid-1")
	fl.LogRegistryTransition("t1", "running", "ready")
	fl.LogRetryTriggered("t1", 1, 3, "ci failed")
	fl.LogSupervisorTick(map[string]int{"ready": 1})

	contents, err := os.ReadFile(fl.runFile)
	require.NoError(t, err)
	out := string(contents)
	assert.Contains(t, out, "plan-1")
	assert.Contains(t, out, "plan-1/t1")
	assert.Contains(t, out, "zoeorch/t1")
	assert.Contains(t, out, "running -> ready")
	assert.Contains(t, out, "retry 1/3")
	assert.Contains(t, out, "ready: 1")
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	fl, err := NewFileLoggerWithDirAndLevel(dir, "info")
	require.NoError(t, err)

	assert.NoError(t, fl.Close())
	assert.NoError(t, fl.Close())
}
