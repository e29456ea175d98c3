package spawner

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/queue"
	"github.com/zoeorch/zoeorch/internal/registry"
	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// RunnerPaths maps an agent name (codex, claude) to the executable that
// the chosen Backend should launch.
type RunnerPaths map[string]string

// Spawner provisions working copies and launches agent runners for queued
// execution tasks.
type Spawner struct {
	BaseDir  string
	Runners  RunnerPaths
	Backend  Backend
	MaxRetry int
}

// New returns a Spawner rooted at baseDir, auto-selecting tmux or the
// process backend.
func New(baseDir string, runners RunnerPaths) *Spawner {
	return &Spawner{BaseDir: baseDir, Runners: runners, Backend: Choose(), MaxRetry: 3}
}

var branchSanitizePattern = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func sanitizeBranchPart(s string) string {
	cleaned := branchSanitizePattern.ReplaceAllString(s, "-")
	return strings.Trim(cleaned, "-")
}

// Branch computes the git branch name for a queued task, per the shared
// worktree strategy: plan-scoped branches let every subtask of one plan
// land on the same branch, isolated strategy gives each task its own.
func Branch(task models.ExecutionTask) string {
	if task.Metadata.WorktreeStrategy == "shared" && task.Metadata.PlanID != "" {
		return "plan/" + sanitizeBranchPart(task.Metadata.PlanID)
	}
	return "feat/" + sanitizeBranchPart(task.ID)
}

func worktreeDirName(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// ProcessOne consumes one queue file: resolves the repo, provisions (or
// reuses) a worktree, compiles the prompt, spawns the runner, registers the
// new RegistryEntry, and unlinks the queue file. Returns the RegistryEntry
// id on success.
func (s *Spawner) ProcessOne(queueFilePath string) (string, error) {
	task, err := queue.Load(queueFilePath)
	if err != nil {
		return "", err
	}
	if task.ID == "" || task.Repo == "" {
		_ = queue.Remove(queueFilePath)
		return "", zoerr.Dispatch("queue file %s is missing id or repo", queueFilePath)
	}

	entries, err := registry.Load(s.BaseDir)
	if err != nil {
		return "", err
	}
	if _, exists := registry.ByID(entries, task.ID); exists {
		_ = queue.Remove(queueFilePath)
		return task.ID, nil
	}

	repoRoot := filepath.Join(s.BaseDir, "repos", task.Repo)
	if info, err := os.Stat(repoRoot); err != nil || !info.IsDir() {
		return "", zoerr.Dispatch("repo %s not found under %s", task.Repo, repoRoot)
	}

	branch := Branch(task)
	worktree := filepath.Join(s.BaseDir, "worktrees", worktreeDirName(branch))
	if err := ensureWorktree(repoRoot, worktree, branch); err != nil {
		return "", err
	}

	promptPath := filepath.Join(worktree, "prompt.txt")
	prompt := task.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = compileFallbackPrompt(worktree, task)
	}
	if err := os.WriteFile(promptPath, []byte(prompt), 0644); err != nil {
		return "", err
	}

	runnerPath, ok := s.Runners[task.Agent]
	if !ok || runnerPath == "" {
		return "", zoerr.Dispatch("no runner configured for agent %q", task.Agent)
	}

	sessionName := "agent-" + task.ID
	args := []string{task.ID, task.Model, task.Effort, worktree, filepath.Base(promptPath)}
	runtimeRef, err := s.Backend.Start(sessionName, runnerPath, worktree, args)
	if err != nil {
		return "", zoerr.Dispatch("failed to start runner for %s: %v", task.ID, err)
	}

	now := time.Now().UnixMilli()
	entry := models.RegistryEntry{
		ID:            task.ID,
		Status:        "running",
		Repo:          task.Repo,
		Title:         task.Title,
		Branch:        branch,
		WorktreePath:  worktree,
		ExecutionMode: s.Backend.Name(),
		RuntimeRef:    runtimeRef,
		Agent:         task.Agent,
		Model:         task.Model,
		Effort:        task.Effort,
		StartedAt:     now,
		UpdatedAt:     now,
		Attempts:      0,
		MaxAttempts:   s.MaxRetry,
		PromptFile:    filepath.Base(promptPath),
		Metadata:      task.Metadata,
	}
	if err := registry.Upsert(s.BaseDir, entry); err != nil {
		return "", err
	}
	if err := queue.Remove(queueFilePath); err != nil {
		return "", err
	}
	return task.ID, nil
}

// ProcessAll drains every currently queued file, continuing past
// individual failures so one bad task doesn't block the rest.
func (s *Spawner) ProcessAll() ([]string, []error) {
	paths, err := queue.List(s.BaseDir)
	if err != nil {
		return nil, []error{err}
	}
	var spawned []string
	var errs []error
	for _, p := range paths {
		id, err := s.ProcessOne(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		spawned = append(spawned, id)
	}
	return spawned, errs
}

// Restart kills and respawns the runner for an existing registry entry
// against a new prompt file, used by the supervisor's retry protocol.
func (s *Spawner) Restart(entry models.RegistryEntry, promptFileName string) (string, error) {
	s.Backend.Kill(entry.RuntimeRef)

	runnerPath, ok := s.Runners[entry.Agent]
	if !ok || runnerPath == "" {
		return "", zoerr.Dispatch("no runner configured for agent %q", entry.Agent)
	}
	sessionName := "agent-" + entry.ID
	args := []string{entry.ID, entry.Model, entry.Effort, entry.WorktreePath, promptFileName}
	return s.Backend.Start(sessionName, runnerPath, entry.WorktreePath, args)
}

func ensureWorktree(repoRoot, worktree, branch string) error {
	if info, err := os.Stat(worktree); err == nil && info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(worktree), 0755); err != nil {
		return err
	}
	cmd := exec.Command("git", "worktree", "add", "-B", branch, worktree, "origin/main")
	cmd.Dir = repoRoot
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return zoerr.Dispatch("git worktree add failed: %v\n%s", err, out)
	}
	return nil
}

// compileFallbackPrompt builds a prompt when the task carries none,
// referencing whichever of SPEC.md, CONTEXT.md, README.md exist in the
// provisioned working copy.
func compileFallbackPrompt(worktree string, task models.ExecutionTask) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", task.Title, task.Description)
	if task.Metadata.Objective != "" {
		fmt.Fprintf(&b, "## Objective\n%s\n\n", task.Metadata.Objective)
	}
	var refs []string
	for _, name := range []string{"SPEC.md", "CONTEXT.md", "README.md"} {
		if _, err := os.Stat(filepath.Join(worktree, name)); err == nil {
			refs = append(refs, name)
		}
	}
	if len(refs) > 0 {
		fmt.Fprintf(&b, "## Reference documents\nConsult %s in this working copy before making changes.\n\n", strings.Join(refs, ", "))
	}
	if len(task.Metadata.FilesHint) > 0 {
		b.WriteString("## Files to check first\n")
		for _, f := range task.Metadata.FilesHint {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}
	if len(task.Metadata.DefinitionOfDone) > 0 {
		b.WriteString("## Definition of done\n")
		for _, d := range task.Metadata.DefinitionOfDone {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	return b.String()
}
