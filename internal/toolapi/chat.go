package toolapi

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/queue"
)

// AllowList gates who may create tasks through a chat-surface adapter.
// Denying by default when nothing is configured mirrors the legacy
// bot: an unconfigured allow-list is a misconfiguration, not an open door.
type AllowList struct {
	Users   map[string]bool
	RoleIDs map[int64]bool
}

// NewAllowListFromEnv parses DISCORD_ALLOWED_USERS (comma-separated user
// ids or usernames) and DISCORD_ALLOWED_ROLE_IDS (comma-separated integer
// role ids).
func NewAllowListFromEnv() AllowList {
	users := map[string]bool{}
	for _, item := range strings.Split(os.Getenv("DISCORD_ALLOWED_USERS"), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			users[item] = true
		}
	}
	roles := map[int64]bool{}
	for _, item := range strings.Split(os.Getenv("DISCORD_ALLOWED_ROLE_IDS"), ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if id, err := strconv.ParseInt(item, 10, 64); err == nil {
			roles[id] = true
		}
	}
	return AllowList{Users: users, RoleIDs: roles}
}

// Configured reports whether any user or role was actually allow-listed.
func (a AllowList) Configured() bool {
	return len(a.Users) > 0 || len(a.RoleIDs) > 0
}

// Allowed reports whether userID, username, or any of roleIDs is permitted
// to create tasks. An unconfigured allow-list always denies.
func (a AllowList) Allowed(userID, username string, roleIDs []int64) bool {
	if !a.Configured() {
		return false
	}
	if a.Users[userID] || a.Users[username] {
		return true
	}
	for _, r := range roleIDs {
		if a.RoleIDs[r] {
			return true
		}
	}
	return false
}

// RepoExists checks baseDir/repos/<repo> before a task is allowed to
// enter the planner at all, so an operator gets an immediate rejection
// instead of a plan that dispatches against a repo that was never cloned.
func RepoExists(baseDir, repo string) bool {
	info, err := os.Stat(filepath.Join(baseDir, "repos", repo))
	return err == nil && info.IsDir()
}

// FallbackTaskInput is the minimal payload needed to queue one execution
// task directly, bypassing the planner entirely — used when the rule-based
// engine (or the legacy external planner) fails and the chat surface still
// needs to get the requester's work queued somehow.
type FallbackTaskInput struct {
	Repo        string
	Title       string
	Description string
	Agent       string
	Model       string
	Effort      string
	RequestedBy string
	RequestedAt int64
}

// EnqueueFallbackTask writes a single ExecutionTask straight to the queue,
// tagged metadata.plannedBy="fallback" and fallbackReason="planner_failed"
// so downstream status views can tell it apart from a normally planned
// subtask. Returns the queue file path written.
func EnqueueFallbackTask(baseDir string, input FallbackTaskInput) (string, error) {
	requestedAt := input.RequestedAt
	if requestedAt <= 0 {
		requestedAt = time.Now().UnixMilli()
	}
	taskID := models.SanitizeIdentifier(strconv.FormatInt(requestedAt, 10) + "-" + input.Repo)

	task := models.ExecutionTask{
		ID:          taskID,
		Repo:        input.Repo,
		Title:       input.Title,
		Description: input.Description,
		Agent:       orDefault(input.Agent, "codex"),
		Model:       orDefault(input.Model, "gpt-5.3-codex"),
		Effort:      orDefault(input.Effort, "high"),
		RequestedBy: input.RequestedBy,
		RequestedAt: requestedAt,
		Metadata: models.ExecutionTaskMetadata{
			PlannedBy:      "fallback",
			FallbackReason: "planner_failed",
		},
	}
	return queue.Enqueue(baseDir, task)
}
