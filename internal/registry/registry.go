// Package registry reads and writes the active-tasks registry: the single
// JSON file the spawner appends to when it starts a process and the
// supervisor updates as that process's PR/CI state evolves.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zoeorch/zoeorch/internal/filelock"
	"github.com/zoeorch/zoeorch/internal/models"
)

// Path returns baseDir/.clawdbot/active-tasks.json, the single registry
// file shared by the spawner and supervisor roles.
func Path(baseDir string) string {
	return filepath.Join(baseDir, ".clawdbot", "active-tasks.json")
}

// Load reads every entry currently in the registry. A missing file is not
// an error: it means no task has ever been registered yet.
func Load(baseDir string) ([]models.RegistryEntry, error) {
	raw, err := os.ReadFile(Path(baseDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []models.RegistryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// lockTimeout bounds how long Upsert waits behind another writer before
// giving up, so a crashed spawner or supervisor holding the registry lock
// can't wedge every future reconciliation pass.
const lockTimeout = 10 * time.Second

// Save overwrites the registry file atomically. Callers that mutate existing
// entries (rather than writing a freshly loaded set) should go through
// Upsert instead, which guards the read-modify-write cycle with a lock.
func Save(baseDir string, entries []models.RegistryEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return filelock.AtomicWrite(Path(baseDir), data)
}

// Upsert replaces or appends entry by ID and writes the registry back,
// guarded end-to-end by filelock.GuardedReadModifyWrite so the spawner
// registering a new task and the supervisor updating an existing one never
// race on a partial read of the shared registry file.
func Upsert(baseDir string, entry models.RegistryEntry) error {
	return filelock.GuardedReadModifyWrite(Path(baseDir), lockTimeout, func(current []byte) ([]byte, error) {
		var entries []models.RegistryEntry
		if len(current) > 0 {
			if err := json.Unmarshal(current, &entries); err != nil {
				return nil, err
			}
		}

		replaced := false
		for i := range entries {
			if entries[i].ID == entry.ID {
				entries[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, entry)
		}
		return json.MarshalIndent(entries, "", "  ")
	})
}

// ByID returns the entry with the given id, if present.
func ByID(entries []models.RegistryEntry, id string) (models.RegistryEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.RegistryEntry{}, false
}

// ReadySubtaskIDs returns, for one plan, the set of subtask ids whose
// registered execution task has reached status "ready" (its PR has merged
// or its work is otherwise complete) — the signal the dispatcher waits on
// before releasing a dependent subtask.
func ReadySubtaskIDs(planID string, entries []models.RegistryEntry) map[string]bool {
	ready := make(map[string]bool)
	for _, e := range entries {
		if e.Metadata.PlanID != planID {
			continue
		}
		if e.Status == "ready" && e.Metadata.SubtaskID != "" {
			ready[e.Metadata.SubtaskID] = true
		}
	}
	return ready
}
