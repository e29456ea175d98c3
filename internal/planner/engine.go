package planner

import (
	"strings"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/policy"
	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// Request is the normalized planner input: everything a caller (the tool
// façade or the CLI) must supply before Engine.Plan can run.
type Request struct {
	PlanID      string
	Repo        string
	Title       string
	Objective   string
	RequestedBy string
	RequestedAt int64
	Version     string
	Routing     *models.RoutingDefaults
	Constraints map[string]interface{}
	Context     map[string]interface{}
}

// Engine is the internal, rule-based planning engine. Zoe is the planning
// persona addressed by every generated prompt; Zoe's planning logic lives
// here rather than behind a model API call, so Plan is a pure function of
// Request and whatever the repo's working copy looks like on disk.
type Engine struct {
	// BaseDir is the orchestrator home directory; repos/<repo> under it is
	// scanned for file hints. An empty BaseDir is not special-cased:
	// repos/<repo> is then resolved relative to the working directory.
	BaseDir string
}

// New returns an Engine rooted at baseDir.
func New(baseDir string) *Engine {
	return &Engine{BaseDir: baseDir}
}

// Plan decomposes req into a validated Plan. It never calls an external
// service: the subtask graph is entirely determined by term-matching the
// objective and ranking files already present in the repo's working copy.
func (e *Engine) Plan(req Request) (*models.Plan, error) {
	repo := strings.TrimSpace(req.Repo)
	title := strings.TrimSpace(req.Title)
	objective := strings.TrimSpace(req.Objective)
	requestedBy := strings.TrimSpace(req.RequestedBy)
	version := strings.TrimSpace(req.Version)
	planID := strings.TrimSpace(req.PlanID)

	if repo == "" || title == "" || objective == "" || requestedBy == "" || version == "" || planID == "" {
		return nil, zoerr.InvalidPlan("planner request is missing required fields")
	}
	if req.RequestedAt == 0 {
		return nil, zoerr.InvalidPlan("planner request requestedAt must be a non-zero millisecond timestamp")
	}
	if _, err := policy.Validate(objective); err != nil {
		return nil, err
	}

	routing := req.Routing
	if routing == nil {
		routing = &models.RoutingDefaults{}
	}
	agent := orString(routing.Agent, "codex")
	model := orString(routing.Model, "gpt-5.3-codex")
	effort := orString(routing.Effort, "medium")

	context := cloneMap(req.Context)
	var explicitFilesHint []string
	if raw, ok := context["filesHint"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				explicitFilesHint = append(explicitFilesHint, strings.TrimSpace(s))
			}
		}
	} else if raw, ok := context["filesHint"].([]string); ok {
		explicitFilesHint = raw
	}
	explicitFilesHint = dedupe(explicitFilesHint)
	hasExplicitFilesHint := len(explicitFilesHint) > 0

	repoRoot := RepoRoot(e.BaseDir, repo)
	filesHint := explicitFilesHint
	if !hasExplicitFilesHint {
		filesHint = DiscoverRepoFileHints(repoRoot, 6)
	}

	constraints := cloneMap(req.Constraints)
	globalDoD := defaultDefinitionOfDone(constraints)
	profile := buildTaskProfile(title, objective, filesHint, hasExplicitFilesHint, len(constraints) > 0)
	r := routingSet{agent, model, effort}

	var subtasks []models.Subtask
	switch {
	case profile.AnalysisOnly:
		subtasks = planAnalysisTask(repo, title, objective, len(constraints) > 0, profile, r, globalDoD)
	case profile.DocsOnly:
		subtasks = planDocsOnlyTask(repo, title, objective, len(constraints) > 0, profile, r, globalDoD, repoRoot)
	default:
		subtasks = planCodeChangeTasks(repo, title, objective, len(constraints) > 0, profile, r, globalDoD, repoRoot, hasExplicitFilesHint)
	}

	if context == nil {
		context = map[string]interface{}{}
	}
	if _, ok := context["planner"]; !ok {
		context["planner"] = map[string]interface{}{
			"strategy":                "phased-v1",
			"docsRequested":           profile.DocsRequested,
			"testsRequested":          profile.TestsRequested,
			"docsOnly":                profile.DocsOnly,
			"analysisOnly":            profile.AnalysisOnly,
			"requiresFoundationSplit": profile.RequiresFoundationSplit,
			"subtaskCount":            len(subtasks),
		}
	}

	plan := &models.Plan{
		PlanID:      planID,
		Repo:        repo,
		Title:       title,
		RequestedBy: requestedBy,
		RequestedAt: req.RequestedAt,
		Objective:   objective,
		Constraints: constraints,
		Context:     context,
		Routing:     routing,
		Version:     version,
		Subtasks:    subtasks,
	}
	return plan, nil
}

type routingSet = routing

func orString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
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

// defaultDefinitionOfDone supplies the three baseline DoD items every
// subtask inherits, extended with any explicit constraints.definitionOfDone
// the caller supplied.
func defaultDefinitionOfDone(constraints map[string]interface{}) []string {
	dod := []string{
		"Implement the requested outcome end-to-end for this subtask.",
		"Preserve unrelated behavior and formatting.",
		"Run the most relevant local validation available before finishing.",
	}
	if explicit, ok := constraints["definitionOfDone"].([]interface{}); ok {
		for _, item := range explicit {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				dod = append(dod, strings.TrimSpace(s))
			}
		}
	}
	return dedupe(dod)
}
