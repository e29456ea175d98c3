// Package dispatch turns a validated, archived Plan into queued
// ExecutionTasks: every tick it releases whichever subtasks have all their
// dependencies satisfied and haven't been queued yet, recording progress in
// a per-plan dispatch-state file so a restart never re-queues a subtask.
package dispatch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zoeorch/zoeorch/internal/archive"
	"github.com/zoeorch/zoeorch/internal/filelock"
	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/planmodel"
	"github.com/zoeorch/zoeorch/internal/queue"
	"github.com/zoeorch/zoeorch/internal/registry"
)

// ExecutionTaskID derives the queue/registry id for one subtask from its
// plan, sanitized to the shared identifier alphabet.
func ExecutionTaskID(p *models.Plan, s models.Subtask) string {
	return models.SanitizeIdentifier(p.PlanID + "-" + s.ID)
}

// BuildExecutionTask flattens a subtask and its plan into the payload the
// queue carries to the spawner. plannedBy records who produced the plan
// ("zoe" for the internal engine, "fallback" or "openclaw-legacy" for the
// supplemented paths in internal/toolapi and internal/legacyplanner).
func BuildExecutionTask(p *models.Plan, s models.Subtask, plannedBy string) models.ExecutionTask {
	return models.ExecutionTask{
		ID:          ExecutionTaskID(p, s),
		Repo:        p.Repo,
		Title:       s.Title,
		Description: s.Description,
		Agent:       s.Agent,
		Model:       s.Model,
		Effort:      s.Effort,
		Prompt:      s.Prompt,
		RequestedBy: p.RequestedBy,
		RequestedAt: p.RequestedAt,
		Metadata: models.ExecutionTaskMetadata{
			PlanID:           p.PlanID,
			SubtaskID:        s.ID,
			DependsOn:        append([]string{}, s.DependsOn...),
			WorktreeStrategy: s.WorktreeStrategy,
			FilesHint:        append([]string{}, s.FilesHint...),
			PlannedBy:        plannedBy,
			DefinitionOfDone: append([]string{}, s.DefinitionOfDone...),
			PlanVersion:      p.Version,
			Objective:        p.Objective,
			Constraints:      p.Constraints,
			Context:          p.Context,
		},
	}
}

// LoadState reads the plan's dispatch-state record, returning a fresh empty
// state if none has been written yet.
func LoadState(baseDir string, p *models.Plan) (*models.DispatchState, error) {
	raw, err := os.ReadFile(archive.DispatchStatePath(baseDir, p.PlanID))
	if os.IsNotExist(err) {
		return &models.DispatchState{PlanID: p.PlanID, Dispatched: map[string]models.DispatchedSubtask{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var state models.DispatchState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	if state.Dispatched == nil {
		state.Dispatched = map[string]models.DispatchedSubtask{}
	}
	return &state, nil
}

// SaveState writes the plan's dispatch-state record atomically.
func SaveState(baseDir string, state *models.DispatchState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return filelock.AtomicWrite(archive.DispatchStatePath(baseDir, state.PlanID), data)
}

// nowMillis is overridable in tests; production code always calls
// time.Now().
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// dispatchLockTimeout bounds how long DispatchReady waits behind another
// `dispatch` invocation against the same plan (watch mode and a one-shot
// call can overlap) before giving up.
const dispatchLockTimeout = 10 * time.Second

// DispatchReady queues every subtask whose dependencies are all satisfied
// and that hasn't already been queued, updating both the dispatch-state
// record and each subtask's archive entry. It returns the queue file paths
// written this call (empty on a tick where nothing became ready). The whole
// load-enqueue-save cycle is guarded by a lock on the plan's dispatch-state
// file, since two `dispatch` invocations against the same plan must never
// interleave their reads of which subtasks are already queued.
func DispatchReady(baseDir string, p *models.Plan, entries []models.RegistryEntry) ([]string, error) {
	statePath := archive.DispatchStatePath(baseDir, p.PlanID)
	if err := os.MkdirAll(filepath.Dir(statePath), 0755); err != nil {
		return nil, err
	}
	lock := filelock.NewFileLock(statePath + ".lock")
	if err := lock.LockWithTimeout(dispatchLockTimeout); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	state, err := LoadState(baseDir, p)
	if err != nil {
		return nil, err
	}
	completed := registry.ReadySubtaskIDs(p.PlanID, entries)

	var queuedPaths []string
	for _, s := range planmodel.TopologicallySortedSubtasks(p) {
		if existing, ok := state.Dispatched[s.ID]; ok && existing.State == "queued" {
			continue
		}
		if !allSatisfied(s.DependsOn, completed) {
			continue
		}

		task := BuildExecutionTask(p, s, "zoe")
		path, err := queue.Enqueue(baseDir, task)
		if err != nil {
			return queuedPaths, err
		}
		timestamp := nowMillis()
		state.Dispatched[s.ID] = models.DispatchedSubtask{
			State:        "queued",
			QueuedTaskID: task.ID,
			QueuedAt:     timestamp,
		}
		if err := archive.UpdateSubtaskArchive(p, s, baseDir, models.SubtaskDispatchStatus{
			State:        "queued",
			QueuedTaskID: task.ID,
			QueuedAt:     timestamp,
		}); err != nil {
			return queuedPaths, err
		}
		queuedPaths = append(queuedPaths, path)
	}

	if err := SaveState(baseDir, state); err != nil {
		return queuedPaths, err
	}
	return queuedPaths, nil
}

func allSatisfied(dependsOn []string, completed map[string]bool) bool {
	for _, dep := range dependsOn {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// WatchAndDispatch polls DispatchReady every pollInterval until every
// subtask in the plan has been queued, or until maxLoops is reached (0
// means unbounded; used only by tests and one-shot CLI invocations that
// want a deterministic number of ticks).
func WatchAndDispatch(baseDir string, p *models.Plan, loadEntries func() ([]models.RegistryEntry, error), pollInterval time.Duration, maxLoops int) ([]string, error) {
	var all []string
	loops := 0
	for {
		entries, err := loadEntries()
		if err != nil {
			return all, err
		}
		queued, err := DispatchReady(baseDir, p, entries)
		if err != nil {
			return all, err
		}
		all = append(all, queued...)

		state, err := LoadState(baseDir, p)
		if err != nil {
			return all, err
		}
		if len(state.Dispatched) == len(p.Subtasks) {
			return all, nil
		}
		loops++
		if maxLoops > 0 && loops >= maxLoops {
			return all, nil
		}
		time.Sleep(pollInterval)
	}
}

// DispatchPlanFile archives a plan read from planFile and runs one
// DispatchReady pass (or a watch loop when watch is true).
func DispatchPlanFile(baseDir, planFile string, watch bool, pollInterval time.Duration) ([]string, error) {
	p, err := planmodel.Load(planFile)
	if err != nil {
		return nil, err
	}
	if err := archive.ArchiveSubtasks(p, baseDir); err != nil {
		return nil, err
	}
	if watch {
		return WatchAndDispatch(baseDir, p, func() ([]models.RegistryEntry, error) {
			return registry.Load(baseDir)
		}, pollInterval, 0)
	}
	entries, err := registry.Load(baseDir)
	if err != nil {
		return nil, err
	}
	return DispatchReady(baseDir, p, entries)
}
