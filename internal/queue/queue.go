// Package queue materializes ExecutionTask payloads as one JSON file per
// task under baseDir/orchestrator/queue/, the durable hand-off point
// between the dispatcher and the spawner. Two roles, one directory, no
// in-process locks: each task file is written atomically exactly once.
package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/zoeorch/zoeorch/internal/filelock"
	"github.com/zoeorch/zoeorch/internal/models"
)

// Dir returns baseDir/orchestrator/queue, creating it if needed.
func Dir(baseDir string) (string, error) {
	dir := filepath.Join(baseDir, "orchestrator", "queue")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Enqueue writes task as <dir>/<task.ID>.json, atomically, so a watcher
// woken mid-write never observes a partial file.
func Enqueue(baseDir string, task models.ExecutionTask) (string, error) {
	dir, err := Dir(baseDir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, task.ID+".json")
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return "", err
	}
	if err := filelock.AtomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// List returns every queued task file's path, sorted for deterministic
// pickup order by the spawner.
func List(baseDir string) ([]string, error) {
	dir, err := Dir(baseDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads and parses one queued task file.
func Load(path string) (models.ExecutionTask, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.ExecutionTask{}, err
	}
	var task models.ExecutionTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return models.ExecutionTask{}, err
	}
	return task, nil
}

// Remove deletes a queue file once the spawner has picked it up and
// registered the corresponding process.
func Remove(path string) error {
	return os.Remove(path)
}

// Watcher wakes a caller immediately when a new task file lands in the
// queue directory, falling back to the caller's own poll loop if the
// underlying fsnotify watch can't be established (some container
// filesystems don't support inotify).
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	Events    <-chan struct{}
}

// NewWatcher starts watching baseDir's queue directory. ok is false when
// fsnotify isn't usable on this filesystem; callers should fall back to
// their fixed poll interval in that case.
func NewWatcher(baseDir string) (*Watcher, bool) {
	dir, err := Dir(baseDir)
	if err != nil {
		return nil, false
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, false
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, false
	}

	events := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if strings.HasSuffix(ev.Name, ".json") {
					select {
					case events <- struct{}{}:
					default:
					}
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return &Watcher{fsWatcher: fw, Events: events}, true
}

// Close stops the underlying fsnotify watch.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
