package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DispatchPollInterval != 5*time.Second {
		t.Errorf("DispatchPollInterval = %v, want 5s", cfg.DispatchPollInterval)
	}
	if cfg.SupervisorPollInterval != 30*time.Second {
		t.Errorf("SupervisorPollInterval = %v, want 30s", cfg.SupervisorPollInterval)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got error: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfigValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
base_dir: /tmp/zoeorch-home
log_level: debug
dispatch_poll_interval: 10s
supervisor_poll_interval: 1m
max_attempts: 5
runners:
  codex: /usr/local/bin/run-codex-agent.sh
  claude: /usr/local/bin/run-claude-agent.sh
notify:
  webhook_url: https://example.test/webhook
metrics:
  enabled: true
  addr: ":9999"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.BaseDir != "/tmp/zoeorch-home" {
		t.Errorf("BaseDir = %q, want /tmp/zoeorch-home", cfg.BaseDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.DispatchPollInterval != 10*time.Second {
		t.Errorf("DispatchPollInterval = %v, want 10s", cfg.DispatchPollInterval)
	}
	if cfg.SupervisorPollInterval != time.Minute {
		t.Errorf("SupervisorPollInterval = %v, want 1m", cfg.SupervisorPollInterval)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if cfg.Runners.Codex != "/usr/local/bin/run-codex-agent.sh" {
		t.Errorf("Runners.Codex = %q, want the configured path", cfg.Runners.Codex)
	}
	if cfg.Notify.WebhookURL != "https://example.test/webhook" {
		t.Errorf("Notify.WebhookURL = %q, want the configured URL", cfg.Notify.WebhookURL)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9999" {
		t.Errorf("Metrics = %+v, want enabled at :9999", cfg.Metrics)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("base_dir: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() error = nil, want error for malformed YAML")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want error for invalid log_level")
	}
}

func TestValidateRejectsUnconfiguredLegacyPlanner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LegacyPlanner.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want error when legacy_planner enabled without a backend")
	}
}

func TestEnvOverridesTakePriority(t *testing.T) {
	t.Setenv("ZOEORCH_BASE_DIR", "/env/base")
	t.Setenv("ZOEORCH_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.BaseDir != "/env/base" {
		t.Errorf("BaseDir = %q, want /env/base", cfg.BaseDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}
