package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/evidence"
)

// Config contains configuration for the evaluation recorder.
type Config struct {
	// Enabled enables evaluation recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage and
	// the longest Record will wait for buffer space before dropping.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// RedactAnswers lists answer names whose values are replaced by
	// a redaction marker before storage.
	RedactAnswers []string

	// MaxFieldLength is the maximum length for text fields before
	// truncation. Default: 500
	MaxFieldLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		AsyncBuffer:    1000,
		WriteTimeout:   5 * time.Second,
		MaxFieldLength: 500,
	}
}

// VersionFunc supplies the active tree version for new records.
type VersionFunc func() string

// Recorder records evidence for decision tree evaluations. Records are
// written asynchronously so evaluations are never blocked on storage.
//
// Recorder implements the evaluation sink interface consumed by the
// tree manager.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	versionFn  VersionFunc
	recordChan chan *evidence.EvaluationRecord
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewRecorder creates a new evaluation recorder with the provided
// storage backend and configuration.
func NewRecorder(storage evidence.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if config.MaxFieldLength <= 0 {
		config.MaxFieldLength = DefaultConfig().MaxFieldLength
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *evidence.EvaluationRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "evidence.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("evaluation recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
		"redacted_answers", len(config.RedactAnswers),
	)

	return r
}

// SetVersionFunc installs a supplier for the active tree version.
// New records carry the version current at evaluation time.
func (r *Recorder) SetVersionFunc(fn VersionFunc) {
	r.versionFn = fn
}

// RecordEvaluation records one evaluation outcome. The record is
// enqueued for async writing; this method does not block on storage.
//
// A full buffer drops the record after WriteTimeout rather than
// stalling the evaluation path.
func (r *Recorder) RecordEvaluation(ctx context.Context, treeName string, answers engine.Answers, result *engine.Result, evalErr error) {
	if !r.config.Enabled {
		return
	}

	record := r.buildRecord(treeName, answers, result, evalErr)

	select {
	case r.recordChan <- record:
		r.logger.Debug("evaluation record enqueued",
			"record_id", record.ID,
			"tree", record.TreeName,
			"decision", record.Decision,
		)
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("evaluation record channel full, dropping record",
			"record_id", record.ID,
			"tree", record.TreeName,
			"channel_capacity", r.config.AsyncBuffer,
		)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"tree", record.TreeName,
		)
	}
}

// Close gracefully shuts down the recorder by draining the async
// channel and waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down evaluation recorder")
		close(r.done)
		r.wg.Wait()
		r.logger.Info("evaluation recorder shut down complete")
	})
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit
			r.logger.Info("draining record channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("record channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single evaluation record to storage.
func (r *Recorder) writeRecord(record *evidence.EvaluationRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store evaluation record",
			"record_id", record.ID,
			"tree", record.TreeName,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("evaluation recorded",
		"record_id", record.ID,
		"tree", record.TreeName,
		"decision", record.Decision,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow evidence write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// buildRecord assembles an evaluation record from an outcome.
func (r *Recorder) buildRecord(treeName string, answers engine.Answers, result *engine.Result, evalErr error) *evidence.EvaluationRecord {
	now := time.Now()

	record := &evidence.EvaluationRecord{
		ID:          uuid.New().String(),
		TreeName:    treeName,
		EvaluatedAt: now,
		RecordedAt:  now,
	}

	if r.versionFn != nil {
		record.TreeVersion = r.versionFn()
	}

	raw := answersToMap(answers, r.config.MaxFieldLength)
	record.AnswersHash = HashAnswers(raw)
	record.Answers = RedactAnswers(raw, r.config.RedactAnswers)

	if result != nil {
		record.Decision = result.Decision
		record.Reason = TruncateString(result.Reason, r.config.MaxFieldLength)
		record.PathTaken = result.PathTaken
		record.EvaluationTime = result.EvaluationTime
	}

	if evalErr != nil {
		record.Error = evalErr.Error()
		record.ErrorType = classifyError(evalErr)
	}

	return record
}

// answersToMap converts the answer list to a map, truncating long
// string values.
func answersToMap(answers engine.Answers, maxLen int) map[string]interface{} {
	if len(answers) == 0 {
		return nil
	}

	m := make(map[string]interface{}, len(answers))
	for _, answer := range answers {
		value := answer.Value
		if s, ok := value.(string); ok {
			value = TruncateString(s, maxLen)
		}
		m[answer.Name] = value
	}
	return m
}

// classifyError maps evaluation errors to record error types.
func classifyError(err error) string {
	var unsupported *engine.UnsupportedOperatorError
	var maxDepth *engine.MaxDepthError

	switch {
	case errors.As(err, &unsupported):
		return "unsupported_operator"
	case errors.As(err, &maxDepth):
		return "max_depth"
	case errors.Is(err, engine.ErrNilTree):
		return "nil_tree"
	default:
		return "internal"
	}
}
