// Package archive persists a plan and its subtasks to baseDir/tasks/<planId>/
// so the plan survives orchestrator restarts and a supervisor can replay
// dispatch state from disk alone.
package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zoeorch/zoeorch/internal/filelock"
	"github.com/zoeorch/zoeorch/internal/models"
)

// PlanDir returns baseDir/tasks/<planId>, the root of everything archived
// for one plan.
func PlanDir(baseDir, planID string) string {
	return filepath.Join(baseDir, "tasks", planID)
}

// PlanFilePath returns the path to the plan's own archived JSON.
func PlanFilePath(baseDir, planID string) string {
	return filepath.Join(PlanDir(baseDir, planID), "plan.json")
}

// SubtaskArchivePath returns the path to one subtask's archive record.
func SubtaskArchivePath(baseDir, planID, subtaskID string) string {
	return filepath.Join(PlanDir(baseDir, planID), "subtasks", subtaskID+".json")
}

// DispatchStatePath returns the path to a plan's dispatch-state record.
func DispatchStatePath(baseDir, planID string) string {
	return filepath.Join(PlanDir(baseDir, planID), "dispatch-state.json")
}

// SavePlan writes the plan's own JSON under its plan directory and returns
// the path written.
func SavePlan(p *models.Plan, baseDir string) (string, error) {
	path := PlanFilePath(baseDir, p.PlanID)
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	if err := filelock.AtomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ArchiveSubtasks writes (or refreshes) the per-subtask archive record for
// every subtask in the plan, preserving each record's existing `dispatch`
// field so a re-plan or repeated archive call never clobbers dispatch
// progress already recorded by the dispatcher.
func ArchiveSubtasks(p *models.Plan, baseDir string) error {
	for i := range p.Subtasks {
		s := p.Subtasks[i]
		path := SubtaskArchivePath(baseDir, p.PlanID, s.ID)

		record := models.SubtaskArchiveRecord{Subtask: s, PlanID: p.PlanID}
		if existing, ok := readExisting(path); ok {
			record.Dispatch = existing.Dispatch
		} else {
			record.Dispatch = models.SubtaskDispatchStatus{State: "planned"}
		}
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		if err := filelock.AtomicWrite(path, data); err != nil {
			return err
		}
	}
	return nil
}

// lockTimeout bounds how long UpdateSubtaskArchive waits behind another
// writer to the same subtask record before giving up.
const lockTimeout = 10 * time.Second

// UpdateSubtaskArchive rewrites one subtask's `dispatch` field in place,
// creating the record from the subtask definition if it doesn't exist yet.
// Guarded by filelock.GuardedReadModifyWrite because a re-dispatch (watch
// mode polling the same plan) and a one-shot `dispatch` invocation can both
// be updating this same subtask's record.
func UpdateSubtaskArchive(p *models.Plan, s models.Subtask, baseDir string, status models.SubtaskDispatchStatus) error {
	path := SubtaskArchivePath(baseDir, p.PlanID, s.ID)
	return filelock.GuardedReadModifyWrite(path, lockTimeout, func(current []byte) ([]byte, error) {
		record := models.SubtaskArchiveRecord{Subtask: s, PlanID: p.PlanID}
		if len(current) > 0 {
			var existing models.SubtaskArchiveRecord
			if err := json.Unmarshal(current, &existing); err == nil {
				record = existing
			}
		}
		record.Dispatch = status
		return json.MarshalIndent(record, "", "  ")
	})
}

func readExisting(path string) (models.SubtaskArchiveRecord, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.SubtaskArchiveRecord{}, false
	}
	var record models.SubtaskArchiveRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return models.SubtaskArchiveRecord{}, false
	}
	return record, true
}
