package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It starts from the default configuration, overlays the file contents,
// and validates the result. The configuration is not modified by
// environment variables; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Unmarshal over the defaults so booleans that default to true keep
	// that value unless the file sets them explicitly.
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention DENDRON_SECTION_FIELD (e.g., DENDRON_TREES_PATH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Default values
//  2. YAML file
//  3. Environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format DENDRON_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Tree loading overrides
	if val := os.Getenv("DENDRON_TREES_MODE"); val != "" {
		cfg.Trees.Mode = val
	}
	if val := os.Getenv("DENDRON_TREES_PATH"); val != "" {
		cfg.Trees.Path = val
	}
	if val := os.Getenv("DENDRON_TREES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Trees.Watch = b
		}
	}
	if val := os.Getenv("DENDRON_TREES_GIT_REPOSITORY"); val != "" {
		cfg.Trees.Git.Repository = val
	}
	if val := os.Getenv("DENDRON_TREES_GIT_BRANCH"); val != "" {
		cfg.Trees.Git.Branch = val
	}
	if val := os.Getenv("DENDRON_TREES_GIT_PATH"); val != "" {
		cfg.Trees.Git.Path = val
	}
	if val := os.Getenv("DENDRON_TREES_GIT_AUTH_TOKEN"); val != "" {
		cfg.Trees.Git.Auth.Token = val
	}
	if val := os.Getenv("DENDRON_TREES_GIT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Trees.Git.Poll.Interval = d
		}
	}
	if val := os.Getenv("DENDRON_TREES_VALIDATION_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Trees.Validation.Enabled = b
		}
	}
	if val := os.Getenv("DENDRON_TREES_VALIDATION_STRICT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Trees.Validation.Strict = b
		}
	}

	// Engine overrides
	if val := os.Getenv("DENDRON_ENGINE_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.MaxDepth = i
		}
	}

	// Evidence overrides
	if val := os.Getenv("DENDRON_EVIDENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Enabled = b
		}
	}
	if val := os.Getenv("DENDRON_EVIDENCE_BACKEND"); val != "" {
		cfg.Evidence.Backend = val
	}
	if val := os.Getenv("DENDRON_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLite.Path = val
	}
	if val := os.Getenv("DENDRON_EVIDENCE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Evidence.Retention.Days = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("DENDRON_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("DENDRON_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("DENDRON_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("DENDRON_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
