// Package legacyplanner adapts the orchestrator to OpenClaw, an external
// webhook- or CLI-backed planner that predates the in-process rule-based
// Engine. It exists purely as a compatibility path: when OPENCLAW_WEBHOOK_URL
// or OPENCLAW_CLI_BIN is configured, callers can route a task through it
// instead of planner.Engine and receive back a Plan in the same shape.
package legacyplanner

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// Adapter calls out to the configured OpenClaw backend. Exactly one of
// WebhookURL or CLIBin should be set; WebhookURL takes priority when both
// are present.
type Adapter struct {
	WebhookURL   string
	WebhookToken string
	CLIBin       string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// FromEnv builds an Adapter from OPENCLAW_WEBHOOK_URL, OPENCLAW_WEBHOOK_TOKEN,
// OPENCLAW_TIMEOUT_SEC, and OPENCLAW_CLI_BIN, matching the legacy adapter's
// environment-variable contract.
func FromEnv() *Adapter {
	timeout := 45 * time.Second
	if raw := os.Getenv("OPENCLAW_TIMEOUT_SEC"); raw != "" {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil {
			timeout = time.Duration(secs * float64(time.Second))
		}
	}
	return &Adapter{
		WebhookURL:   os.Getenv("OPENCLAW_WEBHOOK_URL"),
		WebhookToken: os.Getenv("OPENCLAW_WEBHOOK_TOKEN"),
		CLIBin:       os.Getenv("OPENCLAW_CLI_BIN"),
		Timeout:      timeout,
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether either backend is usable.
func (a *Adapter) Configured() bool {
	return a.WebhookURL != "" || a.CLIBin != ""
}

// Plan sends taskInput to the configured backend and normalizes the
// response into a models.Plan. Returns zoerr.OpenClawDown when neither
// backend is configured or the configured one is unreachable.
func (a *Adapter) Plan(taskInput map[string]interface{}) (*models.Plan, error) {
	var payload map[string]interface{}
	var err error

	switch {
	case a.WebhookURL != "":
		payload, err = a.callHTTP(taskInput)
	case a.CLIBin != "":
		payload, err = a.callCLI(taskInput)
	default:
		return nil, zoerr.OpenClawDown("OpenClaw is not configured")
	}
	if err != nil {
		return nil, err
	}

	normalized := normalizePlanPayload(payload, taskInput)
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, zoerr.InvalidPlan("failed to re-encode OpenClaw plan payload: %v", err)
	}
	var plan models.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, zoerr.InvalidPlan("OpenClaw response did not contain a valid plan object: %v", err)
	}
	return &plan, nil
}

// RewritePrompt is a placeholder hook for Ralph Loop retry integration: the
// same backend can later accept failure context and return a revised
// prompt. For now it just marks the task input as carrying failure context
// and confirms a backend is configured to receive it.
func (a *Adapter) RewritePrompt(taskInput map[string]interface{}) (map[string]interface{}, error) {
	if !a.Configured() {
		return nil, zoerr.OpenClawDown("OpenClaw prompt rewrite is not configured")
	}
	out := make(map[string]interface{}, len(taskInput)+1)
	for k, v := range taskInput {
		out[k] = v
	}
	out["includeFailureContext"] = true
	return out, nil
}

// requestContext bounds one backend call by a.Timeout; a zero Timeout
// leaves the call without a deadline.
func (a *Adapter) requestContext() (context.Context, context.CancelFunc) {
	if a.Timeout > 0 {
		return context.WithTimeout(context.Background(), a.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (a *Adapter) callHTTP(taskInput map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(taskInput)
	if err != nil {
		return nil, zoerr.InvalidPlan("failed to encode task input: %v", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := a.requestContext()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.WebhookURL, bytes.NewReader(body))
		if err != nil {
			cancel()
			return nil, zoerr.OpenClawDown("failed to build OpenClaw request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if a.WebhookToken != "" {
			req.Header.Set("Authorization", "Bearer "+a.WebhookToken)
		}

		client := a.HTTPClient
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		cancel()
		if err != nil {
			lastErr = zoerr.OpenClawDown("OpenClaw webhook request failed: %v", err)
			if attempt == 0 {
				time.Sleep(500 * time.Millisecond)
			}
			continue
		}
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		resp.Body.Close()

		decoded, ok := extractJSONObject(buf.String())
		if !ok {
			lastErr = zoerr.OpenClawDown("OpenClaw returned non-JSON output")
			if attempt == 0 {
				time.Sleep(500 * time.Millisecond)
			}
			continue
		}
		return decoded, nil
	}
	return nil, lastErr
}

func (a *Adapter) callCLI(taskInput map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(taskInput)
	if err != nil {
		return nil, zoerr.InvalidPlan("failed to encode task input: %v", err)
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	cmd := exec.CommandContext(ctx, a.CLIBin)
	cmd.Stdin = bytes.NewReader(body)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, zoerr.OpenClawDown("OpenClaw CLI is unavailable: %v", err)
	}
	if cmd.ProcessState != nil && cmd.ProcessState.ExitCode() != 0 {
		return nil, zoerr.OpenClawDown("OpenClaw CLI returned a non-zero exit code")
	}

	decoded, ok := extractJSONObject(stdout.String())
	if !ok {
		return nil, zoerr.OpenClawDown("OpenClaw CLI returned non-JSON output")
	}
	return decoded, nil
}

// extractJSONObject mirrors the legacy adapter's lenient JSON extraction:
// try the raw text, then the text with surrounding backticks stripped,
// then fall back to the outermost {...} substring.
func extractJSONObject(payload string) (map[string]interface{}, bool) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, false
	}

	for _, candidate := range []string{trimmed, strings.Trim(trimmed, "`")} {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(candidate), &decoded); err == nil {
			return decoded, true
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}

// normalizePlanPayload unwraps a top-level "plan" envelope if present and
// backfills identity fields from the original task input when the
// external planner omitted them.
func normalizePlanPayload(payload, taskInput map[string]interface{}) map[string]interface{} {
	planPayload := payload
	if inner, ok := payload["plan"].(map[string]interface{}); ok {
		planPayload = inner
	}

	merged := make(map[string]interface{}, len(planPayload))
	for k, v := range planPayload {
		merged[k] = v
	}

	for _, key := range []string{"planId", "repo", "title", "requestedBy", "requestedAt", "objective", "version"} {
		if _, present := merged[key]; !present {
			if v, ok := taskInput[key]; ok {
				merged[key] = v
			}
		}
	}
	if _, ok := merged["constraints"]; !ok {
		merged["constraints"] = valueOrEmptyMap(taskInput["constraints"])
	}
	if _, ok := merged["context"]; !ok {
		merged["context"] = valueOrEmptyMap(taskInput["context"])
	}
	if _, ok := merged["routing"]; !ok {
		if routing, ok := taskInput["routing"]; ok {
			merged["routing"] = routing
		}
	}
	return merged
}

func valueOrEmptyMap(v interface{}) interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v
}
