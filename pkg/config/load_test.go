package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, "trees:\n  path: ./trees\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Trees.Mode != "file" {
		t.Errorf("Trees.Mode = %q, want %q", cfg.Trees.Mode, "file")
	}
	if cfg.Engine.MaxDepth != 64 {
		t.Errorf("Engine.MaxDepth = %d, want 64", cfg.Engine.MaxDepth)
	}
	if !cfg.Evidence.Enabled {
		t.Error("Evidence.Enabled = false, want true by default")
	}
	if cfg.Evidence.Backend != "sqlite" {
		t.Errorf("Evidence.Backend = %q, want %q", cfg.Evidence.Backend, "sqlite")
	}
	if cfg.Evidence.Retention.Days != 90 {
		t.Errorf("Evidence.Retention.Days = %d, want 90", cfg.Evidence.Retention.Days)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("Telemetry.Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "info")
	}
	if cfg.Telemetry.Metrics.Namespace != "dendron" {
		t.Errorf("Telemetry.Metrics.Namespace = %q, want %q", cfg.Telemetry.Metrics.Namespace, "dendron")
	}
}

func TestLoadConfig_FileValuesOverrideDefaults(t *testing.T) {
	path := writeConfigFile(t, `
trees:
  mode: file
  path: /etc/dendron/trees
  watch: true
engine:
  max_depth: 16
evidence:
  enabled: false
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Trees.Path != "/etc/dendron/trees" {
		t.Errorf("Trees.Path = %q", cfg.Trees.Path)
	}
	if !cfg.Trees.Watch {
		t.Error("Trees.Watch = false, want true")
	}
	if cfg.Engine.MaxDepth != 16 {
		t.Errorf("Engine.MaxDepth = %d, want 16", cfg.Engine.MaxDepth)
	}
	if cfg.Evidence.Enabled {
		t.Error("Evidence.Enabled = true, want false")
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Telemetry.Logging.Format = %q, want %q", cfg.Telemetry.Logging.Format, "text")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadConfig() succeeded for a missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "trees: [not a mapping")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() succeeded for invalid YAML")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "trees:\n  path: ./trees\n")

	t.Setenv("DENDRON_TREES_PATH", "/override/trees")
	t.Setenv("DENDRON_ENGINE_MAX_DEPTH", "32")
	t.Setenv("DENDRON_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("DENDRON_TREES_GIT_POLL_INTERVAL", "2m")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Trees.Path != "/override/trees" {
		t.Errorf("Trees.Path = %q, want env override", cfg.Trees.Path)
	}
	if cfg.Engine.MaxDepth != 32 {
		t.Errorf("Engine.MaxDepth = %d, want 32", cfg.Engine.MaxDepth)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Telemetry.Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "warn")
	}
	if cfg.Trees.Git.Poll.Interval != 2*time.Minute {
		t.Errorf("Trees.Git.Poll.Interval = %v, want 2m", cfg.Trees.Git.Poll.Interval)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValueIgnored(t *testing.T) {
	path := writeConfigFile(t, "engine:\n  max_depth: 16\n")

	t.Setenv("DENDRON_ENGINE_MAX_DEPTH", "not a number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Engine.MaxDepth != 16 {
		t.Errorf("Engine.MaxDepth = %d, want file value 16", cfg.Engine.MaxDepth)
	}
}
