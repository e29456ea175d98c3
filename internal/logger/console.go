// Package logger provides logging implementations for orchestrator
// execution: plan creation, dispatch ticks, spawns, and supervisor
// reconciliation. Implementations are thread-safe and support various
// output destinations (console, file).
package logger

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs orchestrator events to a writer with timestamps and
// thread safety. All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output
// (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided
// io.Writer. If writer is nil, messages are silently discarded. logLevel
// determines the minimum log level for messages to be output. Valid
// levels: trace, debug, info, warn, error (case-insensitive). If logLevel
// is empty or invalid, defaults to "info". Color output is automatically
// enabled when writing to os.Stdout or os.Stderr with TTY support.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	normalizedLevel := normalizeLogLevel(logLevel)
	useColor := isTerminal(writer)

	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizedLevel,
		mutex:       sync.Mutex{},
		colorOutput: useColor,
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Does not check NO_COLOR, and no config setting turns color on or off.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout {
		return isatty.IsTerminal(os.Stdout.Fd())
	}
	if w == os.Stderr {
		return isatty.IsTerminal(os.Stderr.Fd())
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates
// it. Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}
	return "info"
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	configuredLevel := logLevelToInt(cl.logLevel)
	msgLevel := logLevelToInt(messageLevel)
	return msgLevel >= configuredLevel
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// Info logs an info-level message (alias for LogInfo).
func (cl *ConsoleLogger) Info(message string) {
	cl.LogInfo(message)
}

// Infof logs a formatted info-level message.
func (cl *ConsoleLogger) Infof(format string, args ...interface{}) {
	cl.LogInfo(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning-level message.
func (cl *ConsoleLogger) Warnf(format string, args ...interface{}) {
	cl.LogWarn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error-level message.
func (cl *ConsoleLogger) Errorf(format string, args ...interface{}) {
	cl.LogError(fmt.Sprintf(format, args...))
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}
	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// LogPlanCreated logs the creation of a new plan.
func (cl *ConsoleLogger) LogPlanCreated(planID, repo string, subtaskCount int) {
	cl.LogInfo(fmt.Sprintf("plan created: %s (%s) %d subtask(s)", planID, repo, subtaskCount))
}

// LogSubtaskQueued logs a subtask being released onto the execution queue.
func (cl *ConsoleLogger) LogSubtaskQueued(planID, taskID string) {
	cl.LogInfo(fmt.Sprintf("dispatched: %s/%s", planID, taskID))
}

// LogAgentSpawned logs a runner being started for a task.
func (cl *ConsoleLogger) LogAgentSpawned(taskID, agent, branch, runtimeRef string) {
	cl.LogInfo(fmt.Sprintf("spawned %s for %s on %s (ref=%s)", agent, taskID, branch, runtimeRef))
}

// LogRegistryTransition logs a registry entry changing status.
func (cl *ConsoleLogger) LogRegistryTransition(taskID, from, to string) {
	cl.LogInfo(fmt.Sprintf("%s: %s -> %s", taskID, from, to))
}

// LogRetryTriggered logs a Ralph Loop v2 retry being dispatched.
func (cl *ConsoleLogger) LogRetryTriggered(taskID string, attempt, maxAttempts int, reason string) {
	cl.LogWarn(fmt.Sprintf("retry %d/%d for %s: %s", attempt, maxAttempts, taskID, reason))
}

// LogSupervisorTick logs a one-line, color-coded breakdown of active
// registry entries by status after one supervisor reconciliation pass.
func (cl *ConsoleLogger) LogSupervisorTick(counts map[string]int) {
	cl.LogInfo(formatColorizedRegistrySummary(counts))
}

// Box drawing characters for the boxed plan summary printed by the CLI's
// plan and plan-and-dispatch commands.
const (
	boxTopLeft     = "┌"
	boxTopRight    = "┐"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"
	boxHorizontal  = "─"
	boxVertical    = "│"
	boxCyan        = "\033[36m"
	boxReset       = "\033[0m"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// terminalWidth returns the current terminal width with sensible bounds,
// falling back to 80 columns when detection fails or stdout isn't a TTY.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 60 {
		return 80
	}
	if width > 120 {
		return 120
	}
	return width
}

// visibleWidth returns the on-screen column width of s, stripping ANSI
// escapes and accounting for wide runes (CJK, emoji) via runewidth.
func visibleWidth(s string) int {
	return runewidth.StringWidth(ansiEscape.ReplaceAllString(s, ""))
}

func boxLine(content string, width int) string {
	inner := width - 4
	if visibleWidth(content) > inner {
		content = runewidth.Truncate(content, inner-3, "...")
	}
	padding := inner - visibleWidth(content)
	if padding < 0 {
		padding = 0
	}
	return boxCyan + boxVertical + boxReset + " " + content + strings.Repeat(" ", padding) + " " + boxCyan + boxVertical + boxReset
}

// FormatPlanSummaryBox renders a boxed, terminal-width-aware summary of a
// freshly created plan: plan id, repo, and one line per subtask. Intended
// for the CLI's plan/plan-and-dispatch commands to print to stderr
// alongside the machine-readable JSON result on stdout.
func FormatPlanSummaryBox(planID, repo string, subtaskTitles []string) string {
	width := terminalWidth()
	var b strings.Builder
	b.WriteString(boxCyan + boxTopLeft + strings.Repeat(boxHorizontal, width-2) + boxTopRight + boxReset + "\n")
	b.WriteString(boxLine(fmt.Sprintf("plan %s", planID), width) + "\n")
	b.WriteString(boxLine(fmt.Sprintf("repo: %s", repo), width) + "\n")
	for i, title := range subtaskTitles {
		b.WriteString(boxLine(fmt.Sprintf("%d. %s", i+1, title), width) + "\n")
	}
	b.WriteString(boxCyan + boxBottomLeft + strings.Repeat(boxHorizontal, width-2) + boxBottomRight + boxReset)
	return b.String()
}

// NoOpLogger discards all log output. Useful for tests and library callers
// that don't want orchestrator logging on stdout.
type NoOpLogger struct{}

// NewNoOpLogger returns a logger that discards everything written to it.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string)                    {}
func (n *NoOpLogger) LogDebug(string)                    {}
func (n *NoOpLogger) LogInfo(string)                     {}
func (n *NoOpLogger) LogWarn(string)                     {}
func (n *NoOpLogger) LogError(string)                    {}
func (n *NoOpLogger) Info(string)                        {}
func (n *NoOpLogger) Infof(string, ...interface{})       {}
func (n *NoOpLogger) Warnf(string, ...interface{})       {}
func (n *NoOpLogger) Errorf(string, ...interface{})      {}
func (n *NoOpLogger) LogPlanCreated(string, string, int) {}
func (n *NoOpLogger) LogSubtaskQueued(string, string)    {}
func (n *NoOpLogger) LogAgentSpawned(string, string, string, string) {}
func (n *NoOpLogger) LogRegistryTransition(string, string, string)   {}
func (n *NoOpLogger) LogRetryTriggered(string, int, int, string)     {}
func (n *NoOpLogger) LogSupervisorTick(map[string]int)               {}
