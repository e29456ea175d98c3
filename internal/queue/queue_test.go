package queue

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoeorch/zoeorch/internal/models"
)

func TestEnqueueListLoadRemove(t *testing.T) {
	dir := t.TempDir()

	path, err := Enqueue(dir, models.ExecutionTask{ID: "t1", Repo: "acme/widgets"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "orchestrator", "queue", "t1.json"), path)

	paths, err := List(dir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, path, paths[0])

	task, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "acme/widgets", task.Repo)

	require.NoError(t, Remove(path))
	paths, err = List(dir)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestListIsSortedAndIgnoresNonJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := Enqueue(dir, models.ExecutionTask{ID: "b"})
	require.NoError(t, err)
	_, err = Enqueue(dir, models.ExecutionTask{ID: "a"})
	require.NoError(t, err)

	qdir, err := Dir(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(qdir, "stray.txt"), []byte("not a task"), 0644))

	paths, err := List(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "a.json")
	assert.Contains(t, paths[1], "b.json")
}

func TestNewWatcherFallsBackGracefullyOnNonexistentBaseDir(t *testing.T) {
	dir := t.TempDir()
	w, ok := NewWatcher(dir)
	if ok {
		defer w.Close()
		select {
		case <-w.Events:
			t.Fatal("unexpected event with no writes")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
