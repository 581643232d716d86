package evidence

import (
	"context"
	"io"
	"time"
)

// EvaluationRecord is the audit trail for a single decision tree
// evaluation. It captures the inputs (after redaction), the outcome,
// the path walked through the tree, and the tree version that was
// active, for compliance and after-the-fact review.
type EvaluationRecord struct {
	// Identity
	ID string `json:"id"` // UUID v4

	// Tree identity
	TreeName    string `json:"tree_name"`    // Which tree was evaluated
	TreeVersion string `json:"tree_version"` // Registry version hash at evaluation time

	// Timestamps
	EvaluatedAt time.Time `json:"evaluated_at"` // When the walk ran
	RecordedAt  time.Time `json:"recorded_at"`  // When the record was written

	// Inputs
	Answers     map[string]interface{} `json:"answers"`      // Supplied answers, redacted per config
	AnswersHash string                 `json:"answers_hash"` // SHA-256 of the unredacted answers

	// Outcome
	Decision  string   `json:"decision"`   // Final decision text
	Reason    string   `json:"reason"`     // Reason for the decision
	PathTaken []string `json:"path_taken"` // Branch descriptions from root to leaf

	// Timing
	EvaluationTime time.Duration `json:"evaluation_time"` // Walk duration

	// Error info
	Error     string `json:"error"`      // Error message if the walk failed hard
	ErrorType string `json:"error_type"` // Error classification
}

// Query defines filter parameters for querying evaluation records.
type Query struct {
	// Time range (on EvaluatedAt, inclusive)
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters
	TreeName    string `json:"tree_name,omitempty"`    // Filter by tree name
	TreeVersion string `json:"tree_version,omitempty"` // Filter by tree version
	Decision    string `json:"decision,omitempty"`     // Filter by decision text

	// Status is "success" (no error) or "error" (walk failed hard).
	Status string `json:"status,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "evaluated_at", "recorded_at", "tree_name", "evaluation_time"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for evaluation record storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists an evaluation record.
	Store(ctx context.Context, record *EvaluationRecord) error

	// Query retrieves evaluation records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*EvaluationRecord, error)

	// QueryStream returns a channel of evaluation records for
	// memory-efficient streaming of large result sets.
	//
	// The record and error channels are closed when the query completes
	// or errors; callers should read from both until they are closed.
	QueryStream(ctx context.Context, query *Query) (<-chan *EvaluationRecord, <-chan error, error)

	// Count returns the number of evaluation records matching the
	// query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes evaluation records matching the query filters and
	// returns the number of records deleted. Used for retention
	// policy enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}

// Exporter defines the interface for exporting evaluation records.
type Exporter interface {
	// Export writes evaluation records to the provided writer in the
	// exporter's format.
	Export(ctx context.Context, records []*EvaluationRecord, w io.Writer) error
}
