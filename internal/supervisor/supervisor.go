// Package supervisor polls the active-tasks registry, reconciles each
// running task against its PR and CI state, and drives the Ralph Loop v2
// retry protocol when checks fail.
package supervisor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zoeorch/zoeorch/internal/metrics"
	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/notify"
	"github.com/zoeorch/zoeorch/internal/registry"
)

// Restarter is the subset of *spawner.Spawner the supervisor needs to
// relaunch a runner against a retry prompt.
type Restarter interface {
	Restart(entry models.RegistryEntry, promptFileName string) (string, error)
}

// LivenessChecker reports whether a running task's backend session/process
// is still alive.
type LivenessChecker interface {
	Alive(runtimeRef string) bool
}

// TickLogger receives a per-status breakdown of active registry entries
// after each reconciliation pass.
type TickLogger interface {
	LogSupervisorTick(counts map[string]int)
}

// Supervisor reconciles the registry against hosting-service and runtime
// state once per Tick.
type Supervisor struct {
	BaseDir    string
	Hosting    HostingClient
	Notifier   notify.Notifier
	Restart    Restarter
	Liveness   LivenessChecker
	TickLogger TickLogger

	notifiedReady map[string]bool
}

// New returns a Supervisor wired to the real gh CLI and the given
// notifier/spawner backend.
func New(baseDir string, notifier notify.Notifier, restarter Restarter, liveness LivenessChecker) *Supervisor {
	return &Supervisor{
		BaseDir:       baseDir,
		Hosting:       GHClient{},
		Notifier:      notifier,
		Restart:       restarter,
		Liveness:      liveness,
		notifiedReady: map[string]bool{},
	}
}

// Tick runs one reconciliation pass over every entry whose status is
// running or pr_created, writing back any entries it changed.
func (s *Supervisor) Tick() error {
	entries, err := registry.Load(s.BaseDir)
	if err != nil {
		return err
	}
	if s.notifiedReady == nil {
		s.notifiedReady = map[string]bool{}
	}

	var changed []int
	for i := range entries {
		if entries[i].Status == "running" || entries[i].Status == "pr_created" {
			if s.reconcile(&entries[i]) {
				changed = append(changed, i)
			}
		}
	}

	if s.TickLogger != nil {
		counts := map[string]int{}
		for i := range entries {
			counts[entries[i].Status]++
		}
		s.TickLogger.LogSupervisorTick(counts)
	}

	for _, i := range changed {
		if err := registry.Upsert(s.BaseDir, entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// Run polls Tick every interval until ctx-equivalent maxTicks is reached
// (0 means run forever). Used by the CLI's `supervise` command and by
// tests wanting a bounded number of iterations.
func (s *Supervisor) Run(interval time.Duration, maxTicks int) error {
	ticks := 0
	for {
		if err := s.Tick(); err != nil {
			return err
		}
		ticks++
		if maxTicks > 0 && ticks >= maxTicks {
			return nil
		}
		time.Sleep(interval)
	}
}

func (s *Supervisor) reconcile(e *models.RegistryEntry) bool {
	worktree := e.WorktreePath
	if e.ID == "" || e.RuntimeRef == "" || worktree == "" || e.Branch == "" {
		setStatus(e, "blocked")
		e.Note = "invalid task record (missing id/runtimeRef/worktree/branch)"
		return true
	}
	if _, err := os.Stat(worktree); err != nil {
		setStatus(e, "blocked")
		e.Note = "invalid task record (worktree missing)"
		return true
	}

	if e.Status == "running" && s.Liveness != nil && !s.Liveness.Alive(e.RuntimeRef) {
		status, note, exitCode := classifyDeadAgent(s.BaseDir, e.ID)
		setStatus(e, status)
		e.Note = note
		e.ExitCode = exitCode
		if status != "agent_exited" {
			s.notify("Agent %s: `%s` (%s). Check logs.", status, e.ID, e.RuntimeRef)
		}
		return true
	}

	pr, err := s.Hosting.PRView(worktree, e.Branch)
	if err != nil || pr == nil {
		return false
	}

	changed := false
	if e.Status == "running" {
		setStatus(e, "pr_created")
		e.PR = pr.Number
		e.PRURL = pr.URL
		changed = true
	}

	if strings.ToUpper(pr.State) != "OPEN" {
		return changed
	}

	passed, failureSummary, pending := AnalyzeChecks(*pr)
	if pending {
		return changed
	}

	if passed && MergeClean(*pr) {
		if !s.notifiedReady[e.ID] {
			s.notifiedReady[e.ID] = true
			setStatus(e, "ready")
			e.CompletedAt = time.Now().UnixMilli()
			e.Note = "checks passed and mergeable clean"
			s.notify("PR ready: `%s` %s (checks passed, merge clean)", e.ID, e.PRURL)
			changed = true
		}
		return changed
	}

	if passed && !MergeClean(*pr) {
		if e.Status != "needs_rebase" {
			setStatus(e, "needs_rebase")
			e.Note = fmt.Sprintf("merge not clean: mergeable=%v state=%s", pr.Mergeable, pr.MergeStateStatus)
			s.notify("PR checks passed but merge not clean: `%s` %s\nmergeable=%v mergeStateStatus=%s", e.ID, e.PRURL, pr.Mergeable, pr.MergeStateStatus)
			changed = true
		}
		return changed
	}

	if failureSummary != "" {
		return s.retry(e, failureSummary) || changed
	}
	return changed
}

// retry implements the Ralph Loop v2 protocol: blocked once max attempts
// are reached, otherwise a new retry prompt is composed and the runner is
// respawned against it.
func (s *Supervisor) retry(e *models.RegistryEntry, failureSummary string) bool {
	e.LastFailure = failureSummary
	maxAttempts := e.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}

	if e.Attempts >= maxAttempts {
		if e.Status != "blocked" {
			setStatus(e, "blocked")
			e.Note = "max retries reached"
			s.notify("CI failed and max retries reached: `%s` %s\nFail: %s", e.ID, e.PRURL, failureSummary)
			return true
		}
		return false
	}

	retryN := e.Attempts + 1
	ciDetail, _ := s.Hosting.LatestRunFailureLog(e.WorktreePath, e.Branch)

	basePromptPath := filepath.Join(e.WorktreePath, "prompt.txt")
	basePrompt := ""
	if data, err := os.ReadFile(basePromptPath); err == nil {
		basePrompt = string(data)
	}

	retryPromptName := fmt.Sprintf("prompt.retry%d.txt", retryN)
	retryPromptPath := filepath.Join(e.WorktreePath, retryPromptName)
	retryPrompt := buildRetryPrompt(basePrompt, retryN, failureSummary, ciDetail)
	if err := os.WriteFile(retryPromptPath, []byte(retryPrompt), 0644); err != nil {
		setStatus(e, "blocked")
		e.Note = fmt.Sprintf("failed to write retry prompt: %v", err)
		s.notify("Failed to restart agent for `%s`: %v", e.ID, err)
		return true
	}

	if s.Restart != nil {
		newRef, err := s.Restart.Restart(*e, retryPromptName)
		if err != nil {
			setStatus(e, "blocked")
			e.Note = fmt.Sprintf("failed to restart agent: %v", err)
			s.notify("Failed to restart agent for `%s`: %v", e.ID, err)
			return true
		}
		e.RuntimeRef = newRef
	}

	e.Attempts = retryN
	setStatus(e, "running")
	e.Note = fmt.Sprintf("retry #%d triggered", retryN)
	metrics.SupervisorRetries.Inc()
	s.notify("Retry #%d triggered: `%s` %s\nFail: %s", retryN, e.ID, e.PRURL, failureSummary)
	return true
}

func buildRetryPrompt(basePrompt string, retryN int, failureSummary, ciDetail string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "RERUN DIRECTIVE (Retry #%d):\n", retryN)
	b.WriteString("CI is failing. Your ONLY priority is to make CI green.\n")
	fmt.Fprintf(&b, "Failed checks summary: %s\n\n", failureSummary)
	if ciDetail != "" {
		b.WriteString(ciDetail)
		b.WriteString("\n\n")
	}
	b.WriteString("Instructions:\n")
	b.WriteString("- Read failing logs and identify root cause.\n")
	b.WriteString("- Apply minimal fix.\n")
	b.WriteString("- Run local equivalent checks/tests if available.\n")
	b.WriteString("- Push commits to the SAME branch and update the PR.\n")
	return b.String()
}

// exitSidecarPath returns baseDir/logs/<taskID>.exit.json, the optional
// sidecar a spawner backend writes when its runner process exits.
func exitSidecarPath(baseDir, taskID string) string {
	return filepath.Join(baseDir, "logs", taskID+".exit.json")
}

// classifyDeadAgent decides what a dead runtime session actually means: a
// clean exit (agent_exited), a crash (agent_failed), or no information at
// all (agent_dead) when the runner never wrote an exit sidecar.
func classifyDeadAgent(baseDir, taskID string) (status, note string, exitCode *int) {
	raw, err := os.ReadFile(exitSidecarPath(baseDir, taskID))
	if err != nil {
		return "agent_dead", "runtime session not found", nil
	}

	var exit models.ExitStatus
	if err := json.Unmarshal(raw, &exit); err != nil {
		return "agent_dead", "runtime session not found", nil
	}

	code := exit.ExitCode
	if code == 0 {
		return "agent_exited", "runner exited cleanly (exit 0)", &code
	}
	return "agent_failed", fmt.Sprintf("runner exited with status %d", code), &code
}

func setStatus(e *models.RegistryEntry, status string) {
	e.Status = status
	e.UpdatedAt = time.Now().UnixMilli()
	metrics.RegistryTransitions.WithLabelValues(status).Inc()
}

func (s *Supervisor) notify(format string, args ...interface{}) {
	if s.Notifier == nil {
		return
	}
	_ = s.Notifier.Notify(fmt.Sprintf(format, args...))
}
