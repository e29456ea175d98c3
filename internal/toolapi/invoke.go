package toolapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// ToolRequest is one line of the JSON-over-stdio invocation protocol:
// {"tool": "plan_task", "input": {...}}.
type ToolRequest struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
	// CorrelationID lets a caller that's multiplexing several concurrent
	// invocations over the same stdio pipe tie a request to its reply. When
	// left blank, Invoke stamps the response with a freshly generated one.
	CorrelationID string `json:"correlationId,omitempty"`
}

// ToolResponse is the corresponding reply line. Exactly one of Result or
// Error is populated. CorrelationID always echoes the request's (or, if the
// request didn't supply one, a generated id) so log lines for one `invoke`
// call can be cross-referenced even when several requests are in flight.
type ToolResponse struct {
	Result        interface{} `json:"result,omitempty"`
	Error         *ToolError  `json:"error,omitempty"`
	CorrelationID string      `json:"correlationId"`
}

// ToolError carries a machine-readable code alongside the human message:
// POLICY_VIOLATION, INVALID_PLAN, DISPATCH_ERROR or OPENCLAW_DOWN for the
// matching zoerr codes, PLANNER_ERROR for everything else.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// dispatchOptions augments TaskInput (for plan_and_dispatch_task) or stands
// alone (for dispatch_plan) with the watch-loop controls every dispatching
// tool shares.
type dispatchOptions struct {
	Watch          bool `json:"watch,omitempty"`
	PollIntervalMS int  `json:"pollIntervalMs,omitempty"`
}

func (o dispatchOptions) interval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

type dispatchPlanInput struct {
	PlanFile string `json:"planFile"`
	dispatchOptions
}

type planAndDispatchInput struct {
	TaskInput
	dispatchOptions
}

type taskStatusInput struct {
	TaskID string `json:"taskId,omitempty"`
	PlanID string `json:"planId,omitempty"`
}

type listPlansInput struct {
	Limit int `json:"limit,omitempty"`
}

// Invoke dispatches one ToolRequest to the matching Service method and
// returns a ToolResponse ready to be JSON-encoded back to the caller. It
// never returns a Go error itself: every failure is captured in the
// response's Error field so the stdio loop can keep reading requests.
func (s *Service) Invoke(req ToolRequest) ToolResponse {
	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}

	result, err := s.dispatch(req)
	if err != nil {
		return ToolResponse{Error: toToolError(err), CorrelationID: correlationID}
	}
	return ToolResponse{Result: result, CorrelationID: correlationID}
}

func (s *Service) dispatch(req ToolRequest) (interface{}, error) {
	switch req.Tool {
	case "plan_task":
		var in TaskInput
		if err := unmarshalInput(req.Input, &in); err != nil {
			return nil, err
		}
		return s.PlanTask(in)

	case "dispatch_plan":
		var in dispatchPlanInput
		if err := unmarshalInput(req.Input, &in); err != nil {
			return nil, err
		}
		if in.PlanFile == "" {
			return nil, zoerr.InvalidPlan("dispatch_plan requires planFile")
		}
		return s.DispatchPlan(in.PlanFile, in.Watch, in.interval())

	case "plan_and_dispatch_task":
		var in planAndDispatchInput
		if err := unmarshalInput(req.Input, &in); err != nil {
			return nil, err
		}
		return s.PlanAndDispatchTask(in.TaskInput, in.Watch, in.interval())

	case "task_status":
		var in taskStatusInput
		if err := unmarshalInput(req.Input, &in); err != nil {
			return nil, err
		}
		return s.TaskStatus(in.TaskID, in.PlanID)

	case "list_plans":
		var in listPlansInput
		if err := unmarshalInput(req.Input, &in); err != nil {
			return nil, err
		}
		limit := in.Limit
		if limit <= 0 {
			limit = 10
		}
		plans, err := s.ListPlans(limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"plans": plans}, nil

	default:
		return nil, zoerr.Planner("unknown tool: %s", req.Tool)
	}
}

func unmarshalInput(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return zoerr.InvalidPlan("malformed tool input: %v", err)
	}
	return nil
}

func toToolError(err error) *ToolError {
	code := "PLANNER_ERROR"
	if zerr, ok := zoerr.AsError(err); ok {
		switch zerr.Code {
		case zoerr.CodePolicyViolation:
			code = "POLICY_VIOLATION"
		case zoerr.CodeInvalidPlan:
			code = "INVALID_PLAN"
		case zoerr.CodeDispatch:
			code = "DISPATCH_ERROR"
		case zoerr.CodeOpenClawDown:
			code = "OPENCLAW_DOWN"
		}
	}
	return &ToolError{Code: code, Message: err.Error()}
}

// Schema returns the JSON Schema describing one tool's input, for the
// CLI's `schema` command. Invoke does not check requests against it.
func Schema(tool string) (string, error) {
	schema, ok := toolSchemas[tool]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", tool)
	}
	return schema, nil
}

var toolSchemas = map[string]string{
	"plan_task": `{
  "type": "object",
  "required": ["repo", "title"],
  "properties": {
    "repo": {"type": "string"},
    "title": {"type": "string"},
    "objective": {"type": "string"},
    "description": {"type": "string"},
    "requestedBy": {"type": "string"},
    "agent": {"type": "string", "enum": ["codex", "claude"]},
    "model": {"type": "string"},
    "effort": {"type": "string", "enum": ["low", "medium", "high"]},
    "constraints": {"type": "object"},
    "context": {"type": "object"}
  }
}`,
	"dispatch_plan": `{
  "type": "object",
  "required": ["planFile"],
  "properties": {
    "planFile": {"type": "string"},
    "watch": {"type": "boolean"},
    "pollIntervalMs": {"type": "integer", "minimum": 100}
  }
}`,
	"plan_and_dispatch_task": `{
  "type": "object",
  "required": ["repo", "title"],
  "properties": {
    "repo": {"type": "string"},
    "title": {"type": "string"},
    "objective": {"type": "string"},
    "watch": {"type": "boolean"},
    "pollIntervalMs": {"type": "integer", "minimum": 100}
  }
}`,
	"task_status": `{
  "type": "object",
  "properties": {
    "taskId": {"type": "string"},
    "planId": {"type": "string"}
  }
}`,
	"list_plans": `{
  "type": "object",
  "properties": {
    "limit": {"type": "integer", "minimum": 1}
  }
}`,
}
