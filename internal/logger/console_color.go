package logger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for different status categories.
// Green: terminal-success statuses (ready)
// Red: terminal-failure statuses (blocked, agent_dead)
// Yellow: attention-needed statuses (needs_rebase, running retries)
// Cyan: in-flight/neutral statuses
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for status summaries.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single label/value pair.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

var failStatuses = map[string]bool{"blocked": true, "agent_dead": true}
var warnStatuses = map[string]bool{"needs_rebase": true, "running": true}
var successStatuses = map[string]bool{"ready": true}

// formatColorizedRegistrySummary renders a one-line breakdown of registry
// entry counts by status, colored by how much operator attention that
// status needs. Colors are automatically disabled on non-TTY output via
// fatih/color's own detection.
func formatColorizedRegistrySummary(counts map[string]int) string {
	if len(counts) == 0 {
		return "no active tasks"
	}

	scheme := newColorScheme()
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		n := counts[status]
		switch {
		case failStatuses[status]:
			parts = append(parts, fmt.Sprintf("%s: %s", scheme.fail.Sprint(status), scheme.fail.Sprintf("%d", n)))
		case warnStatuses[status]:
			parts = append(parts, fmt.Sprintf("%s: %s", scheme.warn.Sprint(status), scheme.warn.Sprintf("%d", n)))
		case successStatuses[status]:
			parts = append(parts, fmt.Sprintf("%s: %s", scheme.success.Sprint(status), scheme.success.Sprintf("%d", n)))
		default:
			parts = append(parts, formatColorizedMetric(status, n, scheme))
		}
	}
	return strings.Join(parts, ", ")
}
