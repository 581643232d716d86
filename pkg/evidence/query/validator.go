package query

import (
	"fmt"

	"arsmedica/dendron/pkg/evidence"
)

// ValidSortFields lists the record fields a query may sort by.
var ValidSortFields = map[string]bool{
	"evaluated_at":    true,
	"recorded_at":     true,
	"tree_name":       true,
	"evaluation_time": true,
}

// ValidSortOrders lists the accepted sort directions.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// ValidStatuses lists the accepted record status filters.
var ValidStatuses = map[string]bool{
	"success": true,
	"error":   true,
}

// Config contains limits applied to evidence queries.
type Config struct {
	// DefaultLimit is applied when a query specifies no limit.
	// Default: 100
	DefaultLimit int

	// MaxLimit caps the number of records a single query may return.
	// Default: 1000
	MaxLimit int
}

// DefaultConfig returns the default query configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit: 100,
		MaxLimit:     1000,
	}
}

// Validator validates and normalizes evidence queries before they
// reach a storage backend.
type Validator struct {
	config *Config
}

// NewValidator creates a query validator. A nil config uses defaults.
func NewValidator(config *Config) *Validator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Validator{config: config}
}

// Validate checks a query for invalid fields. It returns a QueryError
// describing the first problem found.
func (v *Validator) Validate(q *evidence.Query) error {
	if q == nil {
		return evidence.NewQueryError(nil, fmt.Errorf("query is nil"))
	}

	if q.Limit < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("limit must not be negative, got %d", q.Limit))
	}
	if q.Limit > v.config.MaxLimit {
		return evidence.NewQueryError(q, fmt.Errorf("limit %d exceeds maximum %d", q.Limit, v.config.MaxLimit))
	}
	if q.Offset < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("offset must not be negative, got %d", q.Offset))
	}

	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid sort field %q", q.SortBy))
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid sort order %q, must be asc or desc", q.SortOrder))
	}

	if q.Status != "" && !ValidStatuses[q.Status] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid status %q, must be success or error", q.Status))
	}

	if q.StartTime != nil && q.EndTime != nil && q.EndTime.Before(*q.StartTime) {
		return evidence.NewQueryError(q, fmt.Errorf("end time %s is before start time %s", q.EndTime, q.StartTime))
	}

	return nil
}

// ApplyDefaults fills in limit, sort field and sort order on a query
// that leaves them unset. The query is modified in place.
func (v *Validator) ApplyDefaults(q *evidence.Query) {
	if q == nil {
		return
	}
	if q.Limit == 0 {
		q.Limit = v.config.DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "evaluated_at"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}
