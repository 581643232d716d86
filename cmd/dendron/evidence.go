package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"arsmedica/dendron/pkg/cli"
	"arsmedica/dendron/pkg/config"
	"arsmedica/dendron/pkg/evidence"
	"arsmedica/dendron/pkg/evidence/export"
	"arsmedica/dendron/pkg/evidence/query"
	"arsmedica/dendron/pkg/evidence/retention"
	"arsmedica/dendron/pkg/evidence/storage"
)

var evidenceFlags struct {
	backend   string
	tree      string
	decision  string
	status    string
	timeRange string
	limit     int
	offset    int
	sortBy    string
	sortOrder string
	format    string
	output    string

	retentionDays int
	maxRecords    int64
	archive       bool
	archivePath   string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Query and manage the evidence store",
	Long: `Query and manage recorded evaluation evidence.

Every evaluation run through the tree manager can be recorded: the
decision, the reason, the full path taken, redacted answers and a hash
of the unredacted ones. This command reads and prunes that store.

Subcommands:
  query  - Query evidence records with filters
  prune  - Delete records past the retention window

Examples:
  # Failed evaluations for one tree
  dendron evidence query --tree blood_pressure --status error

  # Export a day of records to CSV
  dendron evidence query --time-range "2026-08-29T00:00:00Z/2026-08-30T00:00:00Z" \
    --format csv --output evidence.csv

  # Prune with archival
  dendron evidence prune --retention-days 90 --archive`,
}

var evidenceQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query evidence records",
	Long: `Query evidence records with filters.

Time Range Format:
  RFC3339 interval: "start/end"
  Example: "2026-08-29T00:00:00Z/2026-08-30T00:00:00Z"`,
	RunE: runEvidenceQuery,
}

var evidencePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records past the retention window",
	Long: `Delete evidence records older than the retention window, optionally
archiving them to timestamped JSON files first. Flags override the
retention settings from the config file.`,
	RunE: runEvidencePrune,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceQueryCmd, evidencePruneCmd)

	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.tree, "tree", "", "filter by tree name")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.decision, "decision", "", "filter by decision")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.status, "status", "", "filter by status: success, error")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.limit, "limit", 0, "max results (0 = configured default)")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.offset, "offset", 0, "pagination offset")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.sortBy, "sort", "", "sort field: evaluated_at, recorded_at, tree_name, evaluation_time")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.sortOrder, "order", "", "sort order: asc, desc")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.format, "format", "text", "output format: text, json, csv")
	evidenceQueryCmd.Flags().StringVarP(&evidenceFlags.output, "output", "o", "", "output file (default: stdout)")

	evidencePruneCmd.Flags().StringVar(&evidenceFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	evidencePruneCmd.Flags().IntVar(&evidenceFlags.retentionDays, "retention-days", 0, "retention window in days (0 = configured value)")
	evidencePruneCmd.Flags().Int64Var(&evidenceFlags.maxRecords, "max-records", 0, "cap on total records (0 = configured value)")
	evidencePruneCmd.Flags().BoolVar(&evidenceFlags.archive, "archive", false, "archive expiring records before deletion")
	evidencePruneCmd.Flags().StringVar(&evidenceFlags.archivePath, "archive-path", "archives", "directory for archive files")
}

// loadCommandConfig loads the configured settings, falling back to
// defaults when no config file was given.
func loadCommandConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.NewDefaultConfig(), nil
	}
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return config.GetConfig(), nil
}

// openEvidenceStorage creates the storage backend selected by flag or
// config.
func openEvidenceStorage(cfg *config.Config) (evidence.Storage, error) {
	backendType := evidenceFlags.backend
	if backendType == "" {
		backendType = cfg.Evidence.Backend
	}

	switch backendType {
	case "sqlite":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Evidence.SQLite.Path,
			MaxOpenConns: cfg.Evidence.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Evidence.SQLite.MaxIdleConns,
			WALMode:      cfg.Evidence.SQLite.WALMode,
			BusyTimeout:  cfg.Evidence.SQLite.BusyTimeout,
		})
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: sqlite, memory)", backendType)
	}
}

func runEvidenceQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadCommandConfig()
	if err != nil {
		return err
	}

	store, err := openEvidenceStorage(cfg)
	if err != nil {
		return cli.NewCommandError("evidence query", err)
	}
	defer store.Close()

	q := &evidence.Query{
		TreeName:  evidenceFlags.tree,
		Decision:  evidenceFlags.decision,
		Status:    evidenceFlags.status,
		Limit:     evidenceFlags.limit,
		Offset:    evidenceFlags.offset,
		SortBy:    evidenceFlags.sortBy,
		SortOrder: evidenceFlags.sortOrder,
	}
	if evidenceFlags.timeRange != "" {
		start, end, err := parseTimeRange(evidenceFlags.timeRange)
		if err != nil {
			return cli.NewUsageError("evidence query", err)
		}
		q.StartTime = start
		q.EndTime = end
	}

	qv := query.NewValidator(&query.Config{
		DefaultLimit: cfg.Evidence.Query.DefaultLimit,
		MaxLimit:     cfg.Evidence.Query.MaxLimit,
	})
	if err := qv.Validate(q); err != nil {
		return cli.NewUsageError("evidence query", err)
	}
	qv.ApplyDefaults(q)

	ctx := cmd.Context()

	out := io.Writer(os.Stdout)
	if evidenceFlags.output != "" {
		f, err := os.Create(evidenceFlags.output)
		if err != nil {
			return cli.NewCommandError("evidence query", err)
		}
		defer f.Close()
		out = f
	}

	switch evidenceFlags.format {
	case "json":
		return exportQuery(ctx, store, q, out, export.NewJSONExporter(true))
	case "csv":
		return exportQuery(ctx, store, q, out, export.NewCSVExporter())
	case "text", "":
		records, err := store.Query(ctx, q)
		if err != nil {
			return cli.NewCommandError("evidence query", err)
		}
		printRecordsText(out, records)
		return nil
	default:
		return cli.NewUsageError("evidence query", fmt.Errorf("unknown format %q (want text, json, or csv)", evidenceFlags.format))
	}
}

// streamExporter is satisfied by both evidence exporters.
type streamExporter interface {
	ExportStream(ctx context.Context, records <-chan *evidence.EvaluationRecord, w io.Writer) error
}

// exportQuery streams matching records through an exporter, with a
// progress bar on stderr when writing to a file.
func exportQuery(ctx context.Context, store evidence.Storage, q *evidence.Query, out io.Writer, exporter streamExporter) error {
	records, errCh, err := store.QueryStream(ctx, q)
	if err != nil {
		return cli.NewCommandError("evidence query", err)
	}

	source := records
	if evidenceFlags.output != "" {
		total, err := store.Count(ctx, q)
		if err == nil && total > 0 {
			if int64(q.Limit) < total {
				total = int64(q.Limit)
			}
			progress := cli.NewProgressReporter(nil)
			progress.Start(total)
			defer progress.Finish()

			counted := make(chan *evidence.EvaluationRecord)
			go func() {
				defer close(counted)
				var n int64
				for record := range records {
					n++
					progress.Update(n)
					counted <- record
				}
			}()
			source = counted
		}
	}

	if err := exporter.ExportStream(ctx, source, out); err != nil {
		return cli.NewCommandError("evidence query", err)
	}
	if err := <-errCh; err != nil {
		return cli.NewCommandError("evidence query", err)
	}
	return nil
}

// printRecordsText writes a compact human-readable listing.
func printRecordsText(w io.Writer, records []*evidence.EvaluationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no records found")
		return
	}

	for _, r := range records {
		outcome := r.Decision
		if r.Error != "" {
			outcome = fmt.Sprintf("ERROR(%s): %s", r.ErrorType, r.Error)
		}
		fmt.Fprintf(w, "%s  %-20s %-12s %s\n",
			r.EvaluatedAt.Format(time.RFC3339),
			r.TreeName,
			r.ID[:minInt(8, len(r.ID))],
			outcome,
		)
		if verbose {
			for _, hop := range r.PathTaken {
				fmt.Fprintf(w, "    %s\n", hop)
			}
		}
	}
	fmt.Fprintf(w, "\n%d record(s)\n", len(records))
}

func runEvidencePrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadCommandConfig()
	if err != nil {
		return err
	}

	store, err := openEvidenceStorage(cfg)
	if err != nil {
		return cli.NewCommandError("evidence prune", err)
	}
	defer store.Close()

	retainDays := evidenceFlags.retentionDays
	if retainDays <= 0 {
		retainDays = cfg.Evidence.Retention.Days
	}
	maxRecords := evidenceFlags.maxRecords
	if maxRecords <= 0 {
		maxRecords = cfg.Evidence.Retention.MaxRecords
	}

	pruner := retention.NewPruner(store, &retention.Config{
		Enabled:             true,
		RetentionDays:       retainDays,
		MaxRecords:          maxRecords,
		ArchiveBeforeDelete: evidenceFlags.archive,
		ArchivePath:         evidenceFlags.archivePath,
	})

	result, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("evidence prune", err)
	}

	fmt.Printf("deleted %d expired and %d excess record(s) in %s\n",
		result.ExpiredDeleted, result.ExcessDeleted, result.Duration.Round(time.Millisecond))
	if result.Archived > 0 {
		fmt.Printf("archived %d record(s) to %s\n", result.Archived, result.ArchiveFile)
	}
	return nil
}

// parseTimeRange parses an RFC3339 "start/end" interval.
func parseTimeRange(s string) (*time.Time, *time.Time, error) {
	startStr, endStr, found := strings.Cut(s, "/")
	if !found {
		return nil, nil, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end time: %w", err)
	}
	return &start, &end, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
