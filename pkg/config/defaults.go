package config

import "time"

// Default values for configuration fields.
const (
	// Tree loading defaults
	DefaultTreesMode              = "file"
	DefaultTreesPath              = "./trees"
	DefaultTreesGitBranch         = "main"
	DefaultTreesWatch             = false
	DefaultTreesValidationEnabled = true
	DefaultTreesValidationStrict  = false

	// Git defaults
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitPollTimeout  = 10 * time.Second
	DefaultGitCloneDepth   = 1

	// Engine defaults
	DefaultEngineMaxDepth = 64

	// Evidence defaults
	DefaultEvidenceEnabled              = true
	DefaultEvidenceBackend              = "sqlite"
	DefaultEvidenceSQLitePath           = "data/evidence.db"
	DefaultEvidenceSQLiteMaxOpenConns   = 10
	DefaultEvidenceSQLiteMaxIdleConns   = 5
	DefaultEvidenceSQLiteWALMode        = true
	DefaultEvidenceSQLiteBusyTimeout    = 5 * time.Second
	DefaultEvidenceRecorderAsyncBuffer  = 1000
	DefaultEvidenceRecorderWriteTimeout = 5 * time.Second
	DefaultEvidenceRecorderMaxFieldLen  = 500
	DefaultEvidenceRetentionDays        = 90
	DefaultEvidenceRetentionSchedule    = "0 3 * * *"
	DefaultEvidenceRetentionMaxRecords  = int64(0)
	DefaultEvidenceQueryDefaultLimit    = 100
	DefaultEvidenceQueryMaxLimit        = 10000
	DefaultEvidenceQueryTimeout         = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsNamespace     = "dendron"
)

// DefaultEvaluationDurationBuckets are the default histogram buckets for
// evaluation duration, in seconds. Evaluations are typically sub-millisecond
// so the buckets skew low.
var DefaultEvaluationDurationBuckets = []float64{
	0.000025, 0.0001, 0.00025, 0.001, 0.0025, 0.01, 0.05, 0.25, 1.0,
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Tree loading defaults
	if cfg.Trees.Mode == "" {
		cfg.Trees.Mode = DefaultTreesMode
	}
	if cfg.Trees.Path == "" {
		cfg.Trees.Path = DefaultTreesPath
	}
	if cfg.Trees.Git.Branch == "" {
		cfg.Trees.Git.Branch = DefaultTreesGitBranch
	}
	if cfg.Trees.Git.Poll.Interval == 0 {
		cfg.Trees.Git.Poll.Interval = DefaultGitPollInterval
	}
	if cfg.Trees.Git.Poll.Timeout == 0 {
		cfg.Trees.Git.Poll.Timeout = DefaultGitPollTimeout
	}
	if cfg.Trees.Git.Clone.Depth == 0 {
		cfg.Trees.Git.Clone.Depth = DefaultGitCloneDepth
	}

	// Engine defaults
	if cfg.Engine.MaxDepth == 0 {
		cfg.Engine.MaxDepth = DefaultEngineMaxDepth
	}

	// Evidence defaults
	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = DefaultEvidenceBackend
	}
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = DefaultEvidenceSQLitePath
	}
	if cfg.Evidence.SQLite.MaxOpenConns == 0 {
		cfg.Evidence.SQLite.MaxOpenConns = DefaultEvidenceSQLiteMaxOpenConns
	}
	if cfg.Evidence.SQLite.MaxIdleConns == 0 {
		cfg.Evidence.SQLite.MaxIdleConns = DefaultEvidenceSQLiteMaxIdleConns
	}
	if cfg.Evidence.SQLite.BusyTimeout == 0 {
		cfg.Evidence.SQLite.BusyTimeout = DefaultEvidenceSQLiteBusyTimeout
	}
	if cfg.Evidence.Recorder.AsyncBuffer == 0 {
		cfg.Evidence.Recorder.AsyncBuffer = DefaultEvidenceRecorderAsyncBuffer
	}
	if cfg.Evidence.Recorder.WriteTimeout == 0 {
		cfg.Evidence.Recorder.WriteTimeout = DefaultEvidenceRecorderWriteTimeout
	}
	if cfg.Evidence.Recorder.MaxFieldLength == 0 {
		cfg.Evidence.Recorder.MaxFieldLength = DefaultEvidenceRecorderMaxFieldLen
	}
	if cfg.Evidence.Retention.Days == 0 {
		cfg.Evidence.Retention.Days = DefaultEvidenceRetentionDays
	}
	if cfg.Evidence.Retention.PruneSchedule == "" {
		cfg.Evidence.Retention.PruneSchedule = DefaultEvidenceRetentionSchedule
	}
	if cfg.Evidence.Query.DefaultLimit == 0 {
		cfg.Evidence.Query.DefaultLimit = DefaultEvidenceQueryDefaultLimit
	}
	if cfg.Evidence.Query.MaxLimit == 0 {
		cfg.Evidence.Query.MaxLimit = DefaultEvidenceQueryMaxLimit
	}
	if cfg.Evidence.Query.Timeout == 0 {
		cfg.Evidence.Query.Timeout = DefaultEvidenceQueryTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.EvaluationDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.EvaluationDurationBuckets = DefaultEvaluationDurationBuckets
	}
}

// NewDefaultConfig returns a Config populated entirely with default values.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Trees.Validation.Enabled = DefaultTreesValidationEnabled
	cfg.Evidence.Enabled = DefaultEvidenceEnabled
	cfg.Evidence.SQLite.WALMode = DefaultEvidenceSQLiteWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
