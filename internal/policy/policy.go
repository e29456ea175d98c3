// Package policy filters incoming task requests for secret-exfiltration and
// dangerous-command intent before they ever reach the planner.
package policy

import (
	"regexp"
	"strings"

	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// riskPatterns maps a named risk category to the regex that detects it in a
// free-text objective. Both patterns are intentionally broad: false
// positives fail closed (the task is rejected and the caller can rephrase),
// false negatives are the real cost.
var riskPatterns = map[string]*regexp.Regexp{
	"secret_exfiltration": regexp.MustCompile(`(?i)(exfiltrate|dump|print|show|cat).{0,40}(secret|token|env|environment|ssh|credential)`),
	"dangerous_command":   regexp.MustCompile(`(?i)(rm\s+-rf|chmod\s+777|curl.+\|\s*sh|wget.+\|\s*sh)`),
}

// DetectRiskFlags returns the names of every risk pattern that matches
// objective, in the stable map-key order callers expect for display
// (alphabetical, since Go map iteration is not ordered and tests pin the
// output).
func DetectRiskFlags(objective string) []string {
	var flags []string
	for _, name := range []string{"dangerous_command", "secret_exfiltration"} {
		if riskPatterns[name].MatchString(objective) {
			flags = append(flags, name)
		}
	}
	return flags
}

// Validate rejects a task whose objective trips any risk pattern. It
// returns the (empty) flag set on success so callers can still record that
// policy ran even when nothing matched.
func Validate(objective string) ([]string, error) {
	flags := DetectRiskFlags(objective)
	if len(flags) > 0 {
		return flags, zoerr.PolicyViolation("task blocked by planner policy: %s", strings.Join(flags, ", "))
	}
	return flags, nil
}

// SystemPolicy is the fixed constraints.systemPolicy block every plan
// request carries unless the caller already supplied one.
var SystemPolicy = map[string]interface{}{
	"secretsAccess":     "forbidden",
	"dangerousCommands":  "forbidden",
	"networkUsage":      "explicitly justify before use",
}
