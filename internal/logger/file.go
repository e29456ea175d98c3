package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLogger logs orchestrator events to files under the log directory its
// constructor is given (NewFileLogger uses .zoeorch/logs in the current
// working directory).
// It creates a timestamped per-run log file and maintains a latest.log
// symlink pointing to the most recent run. Thread-safe, with the same
// level filtering as ConsoleLogger.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a new FileLogger that writes to .zoeorch/logs/ in
// the current working directory, at "info" level.
func NewFileLogger() (*FileLogger, error) {
	logDir := filepath.Join(".zoeorch", "logs")
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDir creates a new FileLogger with a custom log
// directory, at "info" level.
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a new FileLogger with a custom log
// directory and log level.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	ts := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", ts))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== orchestrator run log ===\n")
	logger.writeRunLog(fmt.Sprintf("started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) Info(message string) { fl.LogInfo(message) }

func (fl *FileLogger) Infof(format string, args ...interface{}) {
	fl.LogInfo(fmt.Sprintf(format, args...))
}

func (fl *FileLogger) Warnf(format string, args ...interface{}) {
	fl.LogWarn(fmt.Sprintf(format, args...))
}

func (fl *FileLogger) Errorf(format string, args ...interface{}) {
	fl.LogError(fmt.Sprintf(format, args...))
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	formatted := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message)
	fl.writeRunLog(formatted)
}

// LogPlanCreated logs the creation of a new plan.
func (fl *FileLogger) LogPlanCreated(planID, repo string, subtaskCount int) {
	fl.LogInfo(fmt.Sprintf("plan created: %s (%s) %d subtask(s)", planID, repo, subtaskCount))
}

// LogSubtaskQueued logs a subtask being released onto the execution queue.
func (fl *FileLogger) LogSubtaskQueued(planID, taskID string) {
	fl.LogInfo(fmt.Sprintf("dispatched: %s/%s", planID, taskID))
}

// LogAgentSpawned logs a runner being started for a task.
func (fl *FileLogger) LogAgentSpawned(taskID, agent, branch, runtimeRef string) {
	fl.LogInfo(fmt.Sprintf("spawned %s for %s on %s (ref=%s)", agent, taskID, branch, runtimeRef))
}

// LogRegistryTransition logs a registry entry changing status.
func (fl *FileLogger) LogRegistryTransition(taskID, from, to string) {
	fl.LogInfo(fmt.Sprintf("%s: %s -> %s", taskID, from, to))
}

// LogRetryTriggered logs a Ralph Loop v2 retry being dispatched.
func (fl *FileLogger) LogRetryTriggered(taskID string, attempt, maxAttempts int, reason string) {
	fl.LogWarn(fmt.Sprintf("retry %d/%d for %s: %s", attempt, maxAttempts, taskID, reason))
}

// LogSupervisorTick logs a breakdown of active registry entries by status
// after one supervisor reconciliation pass.
func (fl *FileLogger) LogSupervisorTick(counts map[string]int) {
	parts := make([]string, 0, len(counts))
	for status, n := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", status, n))
	}
	fl.LogInfo(strings.Join(parts, ", "))
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
