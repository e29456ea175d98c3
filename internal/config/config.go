// Package config loads and validates the orchestrator's on-disk
// configuration: base directory layout, poll intervals, runner paths, and
// the notification/metrics/legacy-planner toggles. YAML on disk, with
// environment variables overriding it the way the console settings did in
// the teacher configuration, at highest priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// RunnerConfig maps an agent name to the executable the spawner launches
// for it.
type RunnerConfig struct {
	Codex  string `yaml:"codex"`
	Claude string `yaml:"claude"`
}

// AsMap returns the runner paths keyed by agent name, the shape
// internal/spawner.RunnerPaths expects.
func (r RunnerConfig) AsMap() map[string]string {
	return map[string]string{
		"codex":  r.Codex,
		"claude": r.Claude,
	}
}

// NotifyConfig controls the webhook and optional NATS republishing the
// supervisor uses for operator-facing notifications.
type NotifyConfig struct {
	WebhookURL  string `yaml:"webhook_url"`
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`
}

// MetricsConfig controls the optional Prometheus /metrics listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LegacyPlannerConfig toggles routing through the external OpenClaw
// planner instead of the in-process rule-based engine.
type LegacyPlannerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	WebhookURL   string `yaml:"webhook_url"`
	WebhookToken string `yaml:"webhook_token"`
	CLIBin       string `yaml:"cli_bin"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

// Config is the orchestrator's top-level configuration.
type Config struct {
	// BaseDir is the orchestrator home directory: repos/, worktrees/,
	// tasks/, orchestrator/queue, and .clawdbot/active-tasks.json all live
	// under it.
	BaseDir string `yaml:"base_dir"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where logs will be written
	LogDir string `yaml:"log_dir"`

	// DispatchPollInterval controls how often watch-mode dispatch re-checks
	// the registry for newly ready subtasks.
	DispatchPollInterval time.Duration `yaml:"dispatch_poll_interval"`

	// SupervisorPollInterval controls how often the supervisor reconciles
	// registry entries against PR/CI state.
	SupervisorPollInterval time.Duration `yaml:"supervisor_poll_interval"`

	// MaxAttempts is the default Ralph Loop v2 retry ceiling for tasks
	// that don't specify their own.
	MaxAttempts int `yaml:"max_attempts"`

	Runners       RunnerConfig        `yaml:"runners"`
	Notify        NotifyConfig        `yaml:"notify"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	LegacyPlanner LegacyPlannerConfig `yaml:"legacy_planner"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		BaseDir:                filepath.Join(home, "ai-devops"),
		LogLevel:               "info",
		LogDir:                 ".clawdbot/logs",
		DispatchPollInterval:   5 * time.Second,
		SupervisorPollInterval: 30 * time.Second,
		MaxAttempts:            3,
		Runners: RunnerConfig{
			Codex:  "run-codex-agent.sh",
			Claude: "run-claude-agent.sh",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to cfg.
// Environment variables take precedence over config file values.
// Recognized variables:
//   - ZOEORCH_BASE_DIR (base_dir)
//   - ZOEORCH_LOG_LEVEL (log_level)
//   - ZOEORCH_LOG_DIR (log_dir)
//   - DISCORD_WEBHOOK_URL (notify.webhook_url, legacy name kept for
//     compatibility with the chat adapter's existing .env files)
//   - OPENCLAW_WEBHOOK_URL / OPENCLAW_WEBHOOK_TOKEN / OPENCLAW_CLI_BIN /
//     OPENCLAW_TIMEOUT_SEC (legacy_planner.*)
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("ZOEORCH_BASE_DIR"); val != "" {
		cfg.BaseDir = val
	}
	if val := os.Getenv("ZOEORCH_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("ZOEORCH_LOG_DIR"); val != "" {
		cfg.LogDir = val
	}
	if val := os.Getenv("DISCORD_WEBHOOK_URL"); val != "" {
		cfg.Notify.WebhookURL = val
	}
	if val := os.Getenv("OPENCLAW_WEBHOOK_URL"); val != "" {
		cfg.LegacyPlanner.WebhookURL = val
		cfg.LegacyPlanner.Enabled = true
	}
	if val := os.Getenv("OPENCLAW_WEBHOOK_TOKEN"); val != "" {
		cfg.LegacyPlanner.WebhookToken = val
	}
	if val := os.Getenv("OPENCLAW_CLI_BIN"); val != "" {
		cfg.LegacyPlanner.CLIBin = val
		cfg.LegacyPlanner.Enabled = true
	}
	if val := os.Getenv("OPENCLAW_TIMEOUT_SEC"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil {
			cfg.LegacyPlanner.TimeoutSec = secs
		}
	}
}

// LoadDotenv loads a .env file (if present) into the process environment
// before config loading, matching the chat adapter's
// `load_dotenv(BASE / "discord" / ".env")` convention. A missing file is
// not an error.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadConfig loads configuration from the specified file path. If the
// file doesn't exist, returns default configuration without error. If the
// file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse into a shadow struct so time.Duration fields accept the
	// Go duration string format ("30s") rather than yaml.v3's native
	// (unsupported) duration handling.
	type yamlConfig struct {
		BaseDir                string              `yaml:"base_dir"`
		LogLevel               string              `yaml:"log_level"`
		LogDir                 string              `yaml:"log_dir"`
		DispatchPollInterval   string              `yaml:"dispatch_poll_interval"`
		SupervisorPollInterval string              `yaml:"supervisor_poll_interval"`
		MaxAttempts            int                 `yaml:"max_attempts"`
		Runners                RunnerConfig        `yaml:"runners"`
		Notify                 NotifyConfig        `yaml:"notify"`
		Metrics                MetricsConfig       `yaml:"metrics"`
		LegacyPlanner          LegacyPlannerConfig `yaml:"legacy_planner"`
	}

	var parsed yamlConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if parsed.BaseDir != "" {
		cfg.BaseDir = parsed.BaseDir
	}
	if parsed.LogLevel != "" {
		cfg.LogLevel = parsed.LogLevel
	}
	if parsed.LogDir != "" {
		cfg.LogDir = parsed.LogDir
	}
	if parsed.DispatchPollInterval != "" {
		d, err := time.ParseDuration(parsed.DispatchPollInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid dispatch_poll_interval %q: %w", parsed.DispatchPollInterval, err)
		}
		cfg.DispatchPollInterval = d
	}
	if parsed.SupervisorPollInterval != "" {
		d, err := time.ParseDuration(parsed.SupervisorPollInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid supervisor_poll_interval %q: %w", parsed.SupervisorPollInterval, err)
		}
		cfg.SupervisorPollInterval = d
	}
	if parsed.MaxAttempts != 0 {
		cfg.MaxAttempts = parsed.MaxAttempts
	}
	if parsed.Runners.Codex != "" {
		cfg.Runners.Codex = parsed.Runners.Codex
	}
	if parsed.Runners.Claude != "" {
		cfg.Runners.Claude = parsed.Runners.Claude
	}
	if parsed.Notify.WebhookURL != "" {
		cfg.Notify.WebhookURL = parsed.Notify.WebhookURL
	}
	if parsed.Notify.NATSURL != "" {
		cfg.Notify.NATSURL = parsed.Notify.NATSURL
		cfg.Notify.NATSSubject = parsed.Notify.NATSSubject
	}
	if parsed.Metrics.Addr != "" {
		cfg.Metrics.Addr = parsed.Metrics.Addr
	}
	cfg.Metrics.Enabled = cfg.Metrics.Enabled || parsed.Metrics.Enabled
	if parsed.LegacyPlanner.Enabled {
		cfg.LegacyPlanner = parsed.LegacyPlanner
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate validates the configuration values, returning an error
// describing the first invalid field found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base_dir must not be empty")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.DispatchPollInterval <= 0 {
		return fmt.Errorf("dispatch_poll_interval must be > 0, got %v", c.DispatchPollInterval)
	}
	if c.SupervisorPollInterval <= 0 {
		return fmt.Errorf("supervisor_poll_interval must be > 0, got %v", c.SupervisorPollInterval)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be > 0, got %d", c.MaxAttempts)
	}

	if c.LegacyPlanner.Enabled && c.LegacyPlanner.WebhookURL == "" && c.LegacyPlanner.CLIBin == "" {
		return fmt.Errorf("legacy_planner.enabled is true but neither webhook_url nor cli_bin is set")
	}

	return nil
}
