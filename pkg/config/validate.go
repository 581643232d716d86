package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "trees.mode").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, fe := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", fe.Error())
	}
	return sb.String()
}

// add appends a field error to the validation error.
func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks a configuration for errors.
// It returns a *ValidationError listing every problem found, or nil
// if the configuration is valid.
func Validate(cfg *Config) error {
	verr := &ValidationError{}

	validateTrees(cfg, verr)
	validateEngine(cfg, verr)
	validateEvidence(cfg, verr)
	validateTelemetry(cfg, verr)

	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

func validateTrees(cfg *Config, verr *ValidationError) {
	switch cfg.Trees.Mode {
	case "file", "git":
	default:
		verr.add("trees.mode", fmt.Sprintf("must be \"file\" or \"git\", got %q", cfg.Trees.Mode))
	}

	if cfg.Trees.Mode == "file" && cfg.Trees.Path == "" {
		verr.add("trees.path", "field is required when mode is \"file\"")
	}

	if cfg.Trees.Mode == "git" {
		if cfg.Trees.Git.Repository == "" {
			verr.add("trees.git.repository", "field is required when mode is \"git\"")
		}
		if cfg.Trees.Git.Branch == "" {
			verr.add("trees.git.branch", "field is required when mode is \"git\"")
		}
		if cfg.Trees.Git.Poll.Interval < 0 {
			verr.add("trees.git.poll.interval", "must not be negative")
		}
		if cfg.Trees.Git.Clone.Depth < 0 {
			verr.add("trees.git.clone.depth", "must not be negative")
		}

		switch cfg.Trees.Git.Auth.Type {
		case "", "none", "token", "ssh":
		default:
			verr.add("trees.git.auth.type", fmt.Sprintf("must be \"token\", \"ssh\", or \"none\", got %q", cfg.Trees.Git.Auth.Type))
		}
		if cfg.Trees.Git.Auth.Type == "token" && cfg.Trees.Git.Auth.Token == "" {
			verr.add("trees.git.auth.token", "field is required when auth type is \"token\"")
		}
		if cfg.Trees.Git.Auth.Type == "ssh" && cfg.Trees.Git.Auth.SSHKeyPath == "" {
			verr.add("trees.git.auth.ssh_key_path", "field is required when auth type is \"ssh\"")
		}
	}
}

func validateEngine(cfg *Config, verr *ValidationError) {
	if cfg.Engine.MaxDepth < 1 {
		verr.add("engine.max_depth", fmt.Sprintf("must be at least 1, got %d", cfg.Engine.MaxDepth))
	}
}

func validateEvidence(cfg *Config, verr *ValidationError) {
	if !cfg.Evidence.Enabled {
		return
	}

	switch cfg.Evidence.Backend {
	case "sqlite", "memory":
	default:
		verr.add("evidence.backend", fmt.Sprintf("must be \"sqlite\" or \"memory\", got %q", cfg.Evidence.Backend))
	}

	if cfg.Evidence.Backend == "sqlite" && cfg.Evidence.SQLite.Path == "" {
		verr.add("evidence.sqlite.path", "field is required when backend is \"sqlite\"")
	}
	if cfg.Evidence.SQLite.MaxOpenConns < 1 {
		verr.add("evidence.sqlite.max_open_conns", "must be at least 1")
	}
	if cfg.Evidence.Recorder.AsyncBuffer < 1 {
		verr.add("evidence.recorder.async_buffer", "must be at least 1")
	}
	if cfg.Evidence.Retention.Days < 0 {
		verr.add("evidence.retention.days", "must not be negative")
	}
	if cfg.Evidence.Retention.MaxRecords < 0 {
		verr.add("evidence.retention.max_records", "must not be negative")
	}
	if cfg.Evidence.Query.DefaultLimit < 1 {
		verr.add("evidence.query.default_limit", "must be at least 1")
	}
	if cfg.Evidence.Query.MaxLimit < cfg.Evidence.Query.DefaultLimit {
		verr.add("evidence.query.max_limit", "must not be smaller than default_limit")
	}
}

func validateTelemetry(cfg *Config, verr *ValidationError) {
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		verr.add("telemetry.logging.level", fmt.Sprintf("must be one of debug, info, warn, error, got %q", cfg.Telemetry.Logging.Level))
	}

	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		verr.add("telemetry.logging.format", fmt.Sprintf("must be \"json\" or \"text\", got %q", cfg.Telemetry.Logging.Format))
	}

	if cfg.Telemetry.Metrics.Enabled {
		if cfg.Telemetry.Metrics.Path == "" {
			verr.add("telemetry.metrics.path", "field is required when metrics are enabled")
		}
		if cfg.Telemetry.Metrics.ListenAddress == "" {
			verr.add("telemetry.metrics.listen_address", "field is required when metrics are enabled")
		}
	}
}
