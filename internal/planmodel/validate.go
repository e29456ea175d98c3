// Package planmodel validates plans against the subtask schema and computes
// a stable topological ordering of their dependency graph.
package planmodel

import (
	"strings"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// Validate checks a freshly decoded Plan against the schema rules: required
// fields, identifier shape, allowed enums, prompt length, and a
// dependency-graph acyclicity check. It mirrors the field-by-field checks of
// a hand-rolled JSON Schema validator rather than relying on a generic one,
// since the plan's dependOn validation needs the whole subtask set in hand.
func Validate(p *models.Plan) error {
	if p == nil {
		return zoerr.InvalidPlan("plan payload is nil")
	}
	if err := requireString(p.PlanID, "planId"); err != nil {
		return err
	}
	if !models.IdentifierPattern.MatchString(p.PlanID) {
		return zoerr.InvalidPlan("invalid planId: %s", p.PlanID)
	}
	if err := requireString(p.Repo, "repo"); err != nil {
		return err
	}
	if err := requireString(p.Title, "title"); err != nil {
		return err
	}
	if err := requireString(p.RequestedBy, "requestedBy"); err != nil {
		return err
	}
	if p.RequestedAt == 0 {
		return zoerr.InvalidPlan("requestedAt must be a non-zero millisecond timestamp")
	}
	if err := requireString(p.Objective, "objective"); err != nil {
		return err
	}
	if err := requireString(p.Version, "version"); err != nil {
		return err
	}
	if err := validateRouting(p.Routing); err != nil {
		return err
	}
	if len(p.Subtasks) == 0 {
		return zoerr.InvalidPlan("subtasks must be a non-empty array")
	}

	for i := range p.Subtasks {
		if err := validateSubtask(&p.Subtasks[i], p.Routing); err != nil {
			return err
		}
	}
	return validateDependencies(p.Subtasks)
}

func requireString(v, field string) error {
	if strings.TrimSpace(v) == "" {
		return zoerr.InvalidPlan("missing or invalid string field: %s", field)
	}
	return nil
}

func validateRouting(r *models.RoutingDefaults) error {
	if r == nil {
		return nil
	}
	if r.Agent != "" && !models.AllowedAgents[r.Agent] {
		return zoerr.InvalidPlan("unsupported routing.agent: %s", r.Agent)
	}
	if r.Effort != "" && !models.AllowedEfforts[r.Effort] {
		return zoerr.InvalidPlan("unsupported routing.effort: %s", r.Effort)
	}
	return nil
}

func validateSubtask(s *models.Subtask, routing *models.RoutingDefaults) error {
	if err := requireString(s.ID, "subtasks[].id"); err != nil {
		return err
	}
	if !models.IdentifierPattern.MatchString(s.ID) {
		return zoerr.InvalidPlan("invalid subtask id: %s", s.ID)
	}

	agent, model, effort := s.Agent, s.Model, s.Effort
	if routing != nil {
		if agent == "" {
			agent = routing.Agent
		}
		if model == "" {
			model = routing.Model
		}
		if effort == "" {
			effort = routing.Effort
		}
	}
	if agent == "" || !models.AllowedAgents[agent] {
		return zoerr.InvalidPlan("invalid or missing agent for subtask %s", s.ID)
	}
	if model == "" {
		return zoerr.InvalidPlan("missing model for subtask %s", s.ID)
	}
	if effort == "" || !models.AllowedEfforts[effort] {
		return zoerr.InvalidPlan("invalid or missing effort for subtask %s", s.ID)
	}
	s.Agent, s.Model, s.Effort = agent, model, effort

	if !models.AllowedWorktreeStrategies[s.WorktreeStrategy] {
		return zoerr.InvalidPlan("invalid worktreeStrategy for subtask %s: %s", s.ID, s.WorktreeStrategy)
	}
	if err := requireString(s.Title, "subtasks[].title"); err != nil {
		return err
	}
	if err := requireString(s.Description, "subtasks[].description"); err != nil {
		return err
	}
	if err := requireString(s.Prompt, "subtasks[].prompt"); err != nil {
		return err
	}
	if len(s.Prompt) > models.PromptMaxChars {
		return zoerr.InvalidPlan("prompt too long for subtask %s: %d > %d", s.ID, len(s.Prompt), models.PromptMaxChars)
	}
	return nil
}

// validateDependencies checks subtask id uniqueness, that every dependsOn
// target resolves to a known sibling, and that the resulting graph has no
// cycle, via Kahn's algorithm (indegree-zero queue drained in FIFO order).
func validateDependencies(subtasks []models.Subtask) error {
	known := make(map[string]bool, len(subtasks))
	for _, s := range subtasks {
		if known[s.ID] {
			return zoerr.InvalidPlan("subtask ids must be unique inside a plan")
		}
		known[s.ID] = true
	}

	indegree := make(map[string]int, len(subtasks))
	adjacency := make(map[string][]string, len(subtasks))
	for _, s := range subtasks {
		indegree[s.ID] = 0
		adjacency[s.ID] = nil
	}
	for _, s := range subtasks {
		for _, dep := range s.DependsOn {
			if !known[dep] {
				return zoerr.InvalidPlan("subtask %s depends on unknown subtask %s", s.ID, dep)
			}
			adjacency[dep] = append(adjacency[dep], s.ID)
			indegree[s.ID]++
		}
	}

	queue := make([]string, 0, len(subtasks))
	for _, s := range subtasks {
		if indegree[s.ID] == 0 {
			queue = append(queue, s.ID)
		}
	}
	visited := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visited++
		for _, child := range adjacency[current] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	if visited != len(subtasks) {
		return zoerr.InvalidPlan("subtask dependency graph contains a cycle")
	}
	return nil
}

// TopologicallySortedSubtasks returns the plan's subtasks in an order where
// every subtask appears after all of its dependencies, breaking ties among
// simultaneously-ready subtasks by their original position in p.Subtasks.
// Assumes the plan has already passed Validate (acyclic, ids unique).
func TopologicallySortedSubtasks(p *models.Plan) []models.Subtask {
	indegree := make(map[string]int, len(p.Subtasks))
	adjacency := make(map[string][]string, len(p.Subtasks))
	originalOrder := make(map[string]int, len(p.Subtasks))
	byID := make(map[string]models.Subtask, len(p.Subtasks))

	for i, s := range p.Subtasks {
		indegree[s.ID] = len(s.DependsOn)
		originalOrder[s.ID] = i
		byID[s.ID] = s
		if _, ok := adjacency[s.ID]; !ok {
			adjacency[s.ID] = nil
		}
	}
	for _, s := range p.Subtasks {
		for _, dep := range s.DependsOn {
			adjacency[dep] = append(adjacency[dep], s.ID)
		}
	}

	ready := make([]string, 0, len(p.Subtasks))
	for _, s := range p.Subtasks {
		if indegree[s.ID] == 0 {
			ready = append(ready, s.ID)
		}
	}
	sortByOriginalOrder(ready, originalOrder)

	ordered := make([]models.Subtask, 0, len(p.Subtasks))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byID[current])
		for _, child := range adjacency[current] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
		sortByOriginalOrder(ready, originalOrder)
	}
	return ordered
}

func sortByOriginalOrder(ids []string, order map[string]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && order[ids[j-1]] > order[ids[j]]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
