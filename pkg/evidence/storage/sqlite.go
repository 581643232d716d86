package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"arsmedica/dendron/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/evidence.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// sortColumns maps query sort fields to their table columns. Sort input
// never reaches the SQL text directly.
var sortColumns = map[string]string{
	"evaluated_at":    "evaluated_at",
	"recorded_at":     "recorded_at",
	"tree_name":       "tree_name",
	"evaluation_time": "evaluation_time",
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "evidence.storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists an evaluation record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.EvaluationRecord) error {
	answers, _ := json.Marshal(record.Answers)
	pathTaken, _ := json.Marshal(record.PathTaken)

	query := `
		INSERT INTO evaluations (
			id, tree_name, tree_version,
			evaluated_at, recorded_at,
			answers, answers_hash,
			decision, reason, path_taken,
			evaluation_time,
			error, error_type
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	// Empty strings become NULL so status filters can test error IS NULL.
	var errorVal, errorTypeVal interface{}
	if record.Error != "" {
		errorVal = record.Error
	}
	if record.ErrorType != "" {
		errorTypeVal = record.ErrorType
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.TreeName, record.TreeVersion,
		record.EvaluatedAt, record.RecordedAt,
		string(answers), record.AnswersHash,
		record.Decision, record.Reason, string(pathTaken),
		record.EvaluationTime.Milliseconds(),
		errorVal, errorTypeVal,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves evaluation records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.EvaluationRecord, error) {
	sqlQuery, args := s.buildSelect("SELECT * FROM evaluations", query, true)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*evidence.EvaluationRecord{}
	for rows.Next() {
		record, err := s.scanRow(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream returns a channel of evaluation records for
// memory-efficient streaming. The channels are closed when the query
// completes or errors.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *evidence.Query) (<-chan *evidence.EvaluationRecord, <-chan error, error) {
	recordsCh := make(chan *evidence.EvaluationRecord, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := s.buildSelect("SELECT * FROM evaluations", query, true)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- evidence.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			record, err := s.scanRow(rows)
			if err != nil {
				errCh <- evidence.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- evidence.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of evaluation records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	sqlQuery, args := s.buildSelect("SELECT COUNT(*) FROM evaluations", query, false)

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes evaluation records matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *evidence.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "DELETE FROM evaluations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return evidence.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

// buildSelect assembles a SELECT statement with WHERE, ORDER BY, and
// pagination clauses. Sorting and pagination are skipped for count
// queries.
func (s *SQLiteStorage) buildSelect(base string, query *evidence.Query, paginate bool) (string, []interface{}) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := base
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	if !paginate {
		return sqlQuery, args
	}

	sortBy := "evaluated_at"
	if col, ok := sortColumns[query.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	return sqlQuery, args
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the clause (without "WHERE") and its arguments.
func (s *SQLiteStorage) buildWhereClause(query *evidence.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "evaluated_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "evaluated_at <= ?")
		args = append(args, *query.EndTime)
	}

	if query.TreeName != "" {
		conditions = append(conditions, "tree_name = ?")
		args = append(args, query.TreeName)
	}
	if query.TreeVersion != "" {
		conditions = append(conditions, "tree_version = ?")
		args = append(args, query.TreeVersion)
	}
	if query.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, query.Decision)
	}

	if query.Status != "" {
		switch query.Status {
		case "success":
			conditions = append(conditions, "error IS NULL")
		case "error":
			conditions = append(conditions, "error IS NOT NULL")
		}
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into an EvaluationRecord.
func (s *SQLiteStorage) scanRow(row *sql.Rows) (*evidence.EvaluationRecord, error) {
	var record evidence.EvaluationRecord
	var answers, pathTaken string
	var evaluationTimeMs int64
	var treeVersion, reason, answersHash, errorVal, errorTypeVal sql.NullString

	err := row.Scan(
		&record.ID, &record.TreeName, &treeVersion,
		&record.EvaluatedAt, &record.RecordedAt,
		&answers, &answersHash,
		&record.Decision, &reason, &pathTaken,
		&evaluationTimeMs,
		&errorVal, &errorTypeVal,
	)
	if err != nil {
		return nil, err
	}

	record.TreeVersion = treeVersion.String
	record.Reason = reason.String
	record.AnswersHash = answersHash.String
	record.Error = errorVal.String
	record.ErrorType = errorTypeVal.String

	if answers != "" {
		json.Unmarshal([]byte(answers), &record.Answers)
	}
	if pathTaken != "" {
		json.Unmarshal([]byte(pathTaken), &record.PathTaken)
	}

	record.EvaluationTime = time.Duration(evaluationTimeMs) * time.Millisecond

	return &record, nil
}
