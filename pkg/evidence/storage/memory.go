package storage

import (
	"context"
	"sort"
	"sync"

	"arsmedica/dendron/pkg/evidence"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// Intended for tests and the "memory" evidence backend; records do not
// survive a restart.
type MemoryStorage struct {
	records map[string]*evidence.EvaluationRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.EvaluationRecord),
	}
}

// Store persists an evaluation record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.EvaluationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to keep later caller mutations out of the store
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves evaluation records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*evidence.EvaluationRecord{}
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sortRecords(results, query)

	// Apply pagination
	start := query.Offset
	if start > len(results) {
		return []*evidence.EvaluationRecord{}, nil
	}

	end := start + query.Limit
	if end > len(results) {
		end = len(results)
	}

	if query.Limit > 0 {
		results = results[start:end]
	}

	return results, nil
}

// QueryStream returns a channel of evaluation records. The channels are
// closed when the query completes or errors.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *evidence.Query) (<-chan *evidence.EvaluationRecord, <-chan error, error) {
	recordsCh := make(chan *evidence.EvaluationRecord, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		records, err := s.Query(ctx, query)
		if err != nil {
			errCh <- err
			return
		}

		for _, record := range records {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of evaluation records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes evaluation records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if s.matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*evidence.EvaluationRecord)
	return nil
}

// matchesQuery checks if a record matches the query filters.
func (s *MemoryStorage) matchesQuery(record *evidence.EvaluationRecord, query *evidence.Query) bool {
	if query.StartTime != nil && record.EvaluatedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.EvaluatedAt.After(*query.EndTime) {
		return false
	}

	if query.TreeName != "" && record.TreeName != query.TreeName {
		return false
	}
	if query.TreeVersion != "" && record.TreeVersion != query.TreeVersion {
		return false
	}
	if query.Decision != "" && record.Decision != query.Decision {
		return false
	}

	if query.Status != "" {
		switch query.Status {
		case "success":
			if record.Error != "" {
				return false
			}
		case "error":
			if record.Error == "" {
				return false
			}
		}
	}

	return true
}

// sortRecords orders query results per the query's sort parameters,
// defaulting to evaluated_at descending like the SQLite backend.
func sortRecords(records []*evidence.EvaluationRecord, query *evidence.Query) {
	asc := query.SortOrder == "asc"

	less := func(a, b *evidence.EvaluationRecord) bool {
		switch query.SortBy {
		case "recorded_at":
			return a.RecordedAt.Before(b.RecordedAt)
		case "tree_name":
			return a.TreeName < b.TreeName
		case "evaluation_time":
			return a.EvaluationTime < b.EvaluationTime
		default:
			return a.EvaluatedAt.Before(b.EvaluatedAt)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if asc {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}

// Clear removes all records from storage (for testing).
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*evidence.EvaluationRecord)
}

// GetByID retrieves a single evaluation record by ID (for testing).
func (s *MemoryStorage) GetByID(id string) *evidence.EvaluationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}

	recordCopy := *record
	return &recordCopy
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
