// Package toolapi is the thin request/response surface mapping named tools
// (plan_task, plan_and_dispatch_task, dispatch_plan, task_status,
// list_plans) onto the planner, archive, dispatcher, and registry
// packages. It's the sole entry point for the chat-surface adapter and
// for the line-oriented JSON-over-stdio invocation mode exposed by the
// `invoke`/`schema` CLI commands.
package toolapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoeorch/zoeorch/internal/archive"
	"github.com/zoeorch/zoeorch/internal/dispatch"
	"github.com/zoeorch/zoeorch/internal/metrics"
	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/planmodel"
	"github.com/zoeorch/zoeorch/internal/planner"
	"github.com/zoeorch/zoeorch/internal/policy"
	"github.com/zoeorch/zoeorch/internal/registry"
	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// SchemaVersion is stamped onto every plan this service produces.
const SchemaVersion = "1.0"

// TaskInput is the caller-supplied payload for plan_task and
// plan_and_dispatch_task, accepting both the snake_case and camelCase
// spellings the legacy chat adapter and the newer tool façade each use.
type TaskInput struct {
	PlanID                string                 `json:"planId,omitempty"`
	Repo                  string                 `json:"repo"`
	Title                 string                 `json:"title"`
	Objective             string                 `json:"objective,omitempty"`
	Description           string                 `json:"description,omitempty"`
	RequestedBy           string                 `json:"requestedBy,omitempty"`
	RequestedByAlt        string                 `json:"requested_by,omitempty"`
	RequestedAt           int64                  `json:"requestedAt,omitempty"`
	RequestedAtAlt        int64                  `json:"requested_at,omitempty"`
	Agent                 string                 `json:"agent,omitempty"`
	Model                 string                 `json:"model,omitempty"`
	Effort                string                 `json:"effort,omitempty"`
	Constraints           map[string]interface{} `json:"constraints,omitempty"`
	Context               map[string]interface{} `json:"context,omitempty"`
	IncludeFailureContext bool                   `json:"includeFailureContext,omitempty"`
}

func (t TaskInput) objective() string {
	if strings.TrimSpace(t.Objective) != "" {
		return strings.TrimSpace(t.Objective)
	}
	return strings.TrimSpace(t.Description)
}

func (t TaskInput) requestedBy() string {
	if strings.TrimSpace(t.RequestedBy) != "" {
		return strings.TrimSpace(t.RequestedBy)
	}
	if strings.TrimSpace(t.RequestedByAlt) != "" {
		return strings.TrimSpace(t.RequestedByAlt)
	}
	return "unknown"
}

func (t TaskInput) requestedAt() int64 {
	if t.RequestedAt > 0 {
		return t.RequestedAt
	}
	if t.RequestedAtAlt > 0 {
		return t.RequestedAtAlt
	}
	return time.Now().UnixMilli()
}

// Service wires the planner, archive, dispatcher, and registry into the
// five named tools.
type Service struct {
	BaseDir string
	Engine  *planner.Engine
}

// New returns a Service rooted at baseDir with its own planner engine.
func New(baseDir string) *Service {
	return &Service{BaseDir: baseDir, Engine: planner.New(baseDir)}
}

// GeneratePlanID mirrors the fallback id the legacy chat adapter used when
// a caller didn't supply one: <timestamp>-<repo>-<title-slug>, all run
// through the shared identifier sanitizer.
func GeneratePlanID(repo, title string, requestedAtMS int64) string {
	repoPart := models.SanitizeIdentifier(strings.ReplaceAll(repo, "/", "-"))
	slug := models.SanitizeIdentifier(strings.ToLower(title))
	if len(slug) > 48 {
		slug = slug[:48]
	}
	return models.SanitizeIdentifier(fmt.Sprintf("%d-%s-%s", requestedAtMS, repoPart, slug))
}

// buildRequest normalizes a TaskInput into a planner.Request, applying the
// same defaults and the baseline systemPolicy constraint the legacy
// zoe_tools.build_plan_request always attached.
func (s *Service) buildRequest(input TaskInput) (planner.Request, error) {
	repo := strings.TrimSpace(input.Repo)
	title := strings.TrimSpace(input.Title)
	objective := input.objective()
	if repo == "" || title == "" || objective == "" {
		return planner.Request{}, zoerr.InvalidPlan("task input must include repo, title, and description/objective")
	}

	requestedAt := input.requestedAt()
	planID := strings.TrimSpace(input.PlanID)
	if planID == "" {
		planID = GeneratePlanID(repo, title, requestedAt)
	}

	if _, err := policy.Validate(objective); err != nil {
		return planner.Request{}, err
	}

	constraints := cloneMap(input.Constraints)
	if constraints == nil {
		constraints = map[string]interface{}{}
	}
	if _, ok := constraints["systemPolicy"]; !ok {
		constraints["systemPolicy"] = map[string]interface{}{
			"secretsAccess":     "forbidden",
			"dangerousCommands": "forbidden",
			"networkUsage":      "explicitly justify before use",
		}
	}

	context := cloneMap(input.Context)
	if context == nil {
		context = map[string]interface{}{}
	}
	if _, ok := context["riskFlags"]; !ok {
		flags := policy.DetectRiskFlags(objective)
		riskFlags := make([]interface{}, len(flags))
		for i, f := range flags {
			riskFlags[i] = f
		}
		context["riskFlags"] = riskFlags
	}

	return planner.Request{
		PlanID:      planID,
		Repo:        repo,
		Title:       title,
		Objective:   objective,
		RequestedBy: input.requestedBy(),
		RequestedAt: requestedAt,
		Version:     SchemaVersion,
		Routing: &models.RoutingDefaults{
			Agent:  orDefault(input.Agent, "codex"),
			Model:  orDefault(input.Model, "gpt-5.3-codex"),
			Effort: orDefault(input.Effort, "medium"),
		},
		Constraints: constraints,
		Context:     context,
	}, nil
}

// PlanTaskResult is the plan_task tool's return payload.
type PlanTaskResult struct {
	Plan     *models.Plan `json:"plan"`
	PlanFile string       `json:"planFile"`
}

// PlanTask decomposes a TaskInput into a Plan and archives it.
func (s *Service) PlanTask(input TaskInput) (*PlanTaskResult, error) {
	req, err := s.buildRequest(input)
	if err != nil {
		return nil, err
	}
	plan, err := s.Engine.Plan(req)
	if err != nil {
		return nil, err
	}
	if err := planmodel.Validate(plan); err != nil {
		return nil, err
	}
	planFile, err := archive.SavePlan(plan, s.BaseDir)
	if err != nil {
		return nil, err
	}
	if err := archive.ArchiveSubtasks(plan, s.BaseDir); err != nil {
		return nil, err
	}
	metrics.PlansCreated.Inc()
	return &PlanTaskResult{Plan: plan, PlanFile: planFile}, nil
}

// DispatchPlanResult is the dispatch_plan tool's return payload.
type DispatchPlanResult struct {
	PlanFile    string   `json:"planFile"`
	Queued      []string `json:"queued"`
	QueuedCount int      `json:"queuedCount"`
}

// DispatchPlan archives (if needed) and runs one dispatch pass, or a watch
// loop, over an already-written plan file.
func (s *Service) DispatchPlan(planFile string, watch bool, pollInterval time.Duration) (*DispatchPlanResult, error) {
	queued, err := dispatch.DispatchPlanFile(s.BaseDir, planFile, watch, pollInterval)
	if err != nil {
		return nil, err
	}
	metrics.SubtasksDispatched.Add(float64(len(queued)))
	return &DispatchPlanResult{PlanFile: planFile, Queued: queued, QueuedCount: len(queued)}, nil
}

// PlanAndDispatchResult is the plan_and_dispatch_task tool's return
// payload: a PlanTaskResult and a DispatchPlanResult fused together.
type PlanAndDispatchResult struct {
	Plan        *models.Plan `json:"plan"`
	PlanFile    string       `json:"planFile"`
	Queued      []string     `json:"queued"`
	QueuedCount int          `json:"queuedCount"`
}

// PlanAndDispatchTask plans a task and immediately dispatches whatever
// subtasks are ready, in one call.
func (s *Service) PlanAndDispatchTask(input TaskInput, watch bool, pollInterval time.Duration) (*PlanAndDispatchResult, error) {
	planResult, err := s.PlanTask(input)
	if err != nil {
		return nil, err
	}
	dispatchResult, err := s.DispatchPlan(planResult.PlanFile, watch, pollInterval)
	if err != nil {
		return nil, err
	}
	return &PlanAndDispatchResult{
		Plan:        planResult.Plan,
		PlanFile:    planResult.PlanFile,
		Queued:      dispatchResult.Queued,
		QueuedCount: dispatchResult.QueuedCount,
	}, nil
}

// TaskStatusResult is the task_status tool's return payload; exactly one
// of Task or Tasks is populated depending on which filter was supplied.
type TaskStatusResult struct {
	Task   *models.RegistryEntry  `json:"task,omitempty"`
	PlanID string                 `json:"planId,omitempty"`
	Tasks  []models.RegistryEntry `json:"tasks,omitempty"`
}

// TaskStatus looks up one registry entry by id, or every entry belonging
// to a plan, or the whole registry when neither filter is given.
func (s *Service) TaskStatus(taskID, planID string) (*TaskStatusResult, error) {
	entries, err := registry.Load(s.BaseDir)
	if err != nil {
		return nil, err
	}

	if taskID != "" {
		entry, ok := registry.ByID(entries, taskID)
		if !ok {
			return nil, zoerr.Planner("task not found in registry: %s", taskID)
		}
		return &TaskStatusResult{Task: &entry}, nil
	}

	if planID != "" {
		var matching []models.RegistryEntry
		for _, e := range entries {
			if e.Metadata.PlanID == planID {
				matching = append(matching, e)
			}
		}
		return &TaskStatusResult{PlanID: planID, Tasks: matching}, nil
	}

	return &TaskStatusResult{Tasks: entries}, nil
}

// PlanSummary is one entry of the list_plans tool's result.
type PlanSummary struct {
	PlanID       string `json:"planId"`
	Repo         string `json:"repo"`
	Title        string `json:"title"`
	RequestedBy  string `json:"requestedBy"`
	RequestedAt  int64  `json:"requestedAt"`
	SubtaskCount int    `json:"subtaskCount"`
	PlanFile     string `json:"planFile"`
}

// ListPlans returns up to limit archived plans, most recently created
// first (archive directories are named so lexicographic descending order
// matches recency).
func (s *Service) ListPlans(limit int) ([]PlanSummary, error) {
	root := filepath.Join(s.BaseDir, "tasks")
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var summaries []PlanSummary
	for _, name := range names {
		if len(summaries) >= limit {
			break
		}
		planFile := filepath.Join(root, name, "plan.json")
		raw, err := os.ReadFile(planFile)
		if err != nil {
			continue
		}
		var p models.Plan
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		summaries = append(summaries, PlanSummary{
			PlanID:       p.PlanID,
			Repo:         p.Repo,
			Title:        p.Title,
			RequestedBy:  p.RequestedBy,
			RequestedAt:  p.RequestedAt,
			SubtaskCount: len(p.Subtasks),
			PlanFile:     planFile,
		})
	}
	return summaries, nil
}

// NewCorrelationID returns a fresh identifier for tagging one invocation
// across logs, used by the CLI's `invoke` command.
func NewCorrelationID() string {
	return uuid.NewString()
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
