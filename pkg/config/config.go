package config

import "time"

// Config is the root configuration structure for Dendron.
// It contains all configuration sections for tree loading, the
// evaluation engine, evidence storage, and telemetry.
type Config struct {
	// Trees contains configuration for decision tree loading including
	// the source location, watch mode, and validation settings.
	Trees TreesConfig `yaml:"trees"`

	// Engine contains configuration for the evaluation engine.
	Engine EngineConfig `yaml:"engine"`

	// Evidence contains configuration for evaluation evidence recording
	// and storage including backend selection and retention.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Telemetry contains configuration for observability including
	// logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TreesConfig contains configuration for decision tree loading.
type TreesConfig struct {
	// Mode specifies how trees are loaded.
	// Options: "file" (local file or directory), "git" (Git repository)
	// Default: "file"
	Mode string `yaml:"mode"`

	// Path is the tree file or directory when Mode is "file".
	// Default: "./trees"
	Path string `yaml:"path"`

	// Git contains Git repository configuration.
	// Used when Mode is "git".
	Git GitTreeConfig `yaml:"git"`

	// Watch enables automatic reloading when tree files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Validation contains tree validation settings.
	Validation TreeValidationConfig `yaml:"validation"`
}

// GitTreeConfig configures Git-based tree loading.
type GitTreeConfig struct {
	// Enabled determines if Git mode is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/trees.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within repository to tree files.
	// Default: "" (root directory)
	Path string `yaml:"path"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Poll configures change detection.
	Poll GitPollConfig `yaml:"poll"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication.
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	// Optional, leave empty if key is not encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitPollConfig configures change detection.
type GitPollConfig struct {
	// Enabled determines if polling is active.
	// When false, trees are loaded once at startup.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval between polls.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// Timeout for Git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local repo before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// TreeValidationConfig contains configuration for tree validation.
type TreeValidationConfig struct {
	// Enabled controls whether tree validation is performed at load time.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Strict controls whether validation warnings are treated as errors.
	// When false, warnings are logged but don't prevent tree loading.
	// Default: false
	Strict bool `yaml:"strict"`
}

// EngineConfig contains configuration for the evaluation engine.
type EngineConfig struct {
	// MaxDepth is the maximum tree depth the engine will walk before
	// failing an evaluation.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`
}

// EvidenceConfig contains configuration for evaluation evidence.
type EvidenceConfig struct {
	// Enabled controls whether evidence recording is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for evidence records.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains evidence recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query configuration.
	Query QueryConfig `yaml:"query"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/evidence.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains evidence recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing evidence to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RedactAnswers lists answer names whose values are redacted
	// before being stored.
	RedactAnswers []string `yaml:"redact_answers"`

	// MaxFieldLength is the maximum length for text fields before truncation.
	// Default: 500
	MaxFieldLength int `yaml:"max_field_length"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain evidence records.
	// Records older than this are eligible for deletion.
	// 0 means keep evidence forever (no pruning).
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// QueryConfig contains query configuration.
type QueryConfig struct {
	// DefaultLimit is the default number of records to return if not specified.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records returned in a single query.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`

	// Timeout is the query execution timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// ListenAddress is the address for the metrics endpoint.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric name prefix.
	// Default: "dendron"
	Namespace string `yaml:"namespace"`

	// EvaluationDurationBuckets defines histogram buckets for
	// evaluation duration (seconds).
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets"`
}
