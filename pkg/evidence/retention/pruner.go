package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"arsmedica/dendron/pkg/evidence"
	"arsmedica/dendron/pkg/evidence/export"
)

// Config contains retention policy configuration.
type Config struct {
	// Enabled turns retention pruning on.
	Enabled bool

	// RetentionDays is how long evaluation records are kept.
	// Default: 90
	RetentionDays int

	// PruneSchedule is a cron expression for when pruning runs.
	// Default: "0 3 * * *" (daily at 03:00)
	PruneSchedule string

	// MaxRecords caps the total record count regardless of age.
	// Zero means no cap.
	MaxRecords int64

	// ArchiveBeforeDelete exports expiring records to JSON files
	// before deleting them.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory archives are written to.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// PruneResult summarizes one pruning run.
type PruneResult struct {
	ExpiredDeleted int64
	ExcessDeleted  int64
	Archived       int64
	ArchiveFile    string
	Duration       time.Duration
}

// Pruner deletes evaluation records that have aged out of the
// retention window, optionally archiving them first.
type Pruner struct {
	storage evidence.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a pruner for the given storage backend. A nil
// config uses defaults.
func NewPruner(storage evidence.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = DefaultConfig().RetentionDays
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "evidence.retention"),
	}
}

// Prune runs one retention pass: records older than the retention
// window are removed, then the total count is trimmed to MaxRecords
// if a cap is configured.
func (p *Pruner) Prune(ctx context.Context) (*PruneResult, error) {
	start := time.Now()
	result := &PruneResult{}

	if err := p.pruneByAge(ctx, result); err != nil {
		return result, err
	}
	if err := p.pruneByCount(ctx, result); err != nil {
		return result, err
	}

	result.Duration = time.Since(start)

	p.logger.Info("retention prune complete",
		"expired_deleted", result.ExpiredDeleted,
		"excess_deleted", result.ExcessDeleted,
		"archived", result.Archived,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (p *Pruner) pruneByAge(ctx context.Context, result *PruneResult) error {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	query := &evidence.Query{EndTime: &cutoff}

	if p.config.ArchiveBeforeDelete {
		archived, file, err := p.archive(ctx, query)
		if err != nil {
			return evidence.NewRetentionError(p.config.RetentionDays, fmt.Errorf("archiving expired records: %w", err))
		}
		result.Archived = archived
		result.ArchiveFile = file
	}

	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return evidence.NewRetentionError(p.config.RetentionDays, fmt.Errorf("deleting expired records: %w", err))
	}
	result.ExpiredDeleted = deleted
	return nil
}

func (p *Pruner) pruneByCount(ctx context.Context, result *PruneResult) error {
	if p.config.MaxRecords <= 0 {
		return nil
	}

	total, err := p.storage.Count(ctx, &evidence.Query{})
	if err != nil {
		return evidence.NewRetentionError(p.config.RetentionDays, fmt.Errorf("counting records: %w", err))
	}
	excess := total - p.config.MaxRecords
	if excess <= 0 {
		return nil
	}

	// Oldest records go first.
	oldest, err := p.storage.Query(ctx, &evidence.Query{
		SortBy:    "evaluated_at",
		SortOrder: "asc",
		Limit:     int(excess),
	})
	if err != nil {
		return evidence.NewRetentionError(p.config.RetentionDays, fmt.Errorf("selecting excess records: %w", err))
	}
	if len(oldest) == 0 {
		return nil
	}

	cutoff := oldest[len(oldest)-1].EvaluatedAt
	deleted, err := p.storage.Delete(ctx, &evidence.Query{EndTime: &cutoff})
	if err != nil {
		return evidence.NewRetentionError(p.config.RetentionDays, fmt.Errorf("deleting excess records: %w", err))
	}
	result.ExcessDeleted = deleted
	return nil
}

// archive exports the records matched by query to a timestamped JSON
// file under ArchivePath.
func (p *Pruner) archive(ctx context.Context, query *evidence.Query) (int64, string, error) {
	count, err := p.storage.Count(ctx, query)
	if err != nil {
		return 0, "", err
	}
	if count == 0 {
		return 0, "", nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return 0, "", fmt.Errorf("creating archive directory: %w", err)
	}

	name := fmt.Sprintf("evidence-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(p.config.ArchivePath, name)

	f, err := os.Create(path)
	if err != nil {
		return 0, "", fmt.Errorf("creating archive file: %w", err)
	}
	defer f.Close()

	records, errCh, err := p.storage.QueryStream(ctx, query)
	if err != nil {
		return 0, "", err
	}

	if err := export.NewJSONExporter(false).ExportStream(ctx, records, f); err != nil {
		return 0, "", err
	}
	if err := <-errCh; err != nil {
		return 0, "", err
	}

	p.logger.Info("archived expiring records", "count", count, "file", path)
	return count, path, nil
}
