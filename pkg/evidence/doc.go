// Package evidence provides audit recording for decision tree
// evaluations. Every evaluation can be captured as an EvaluationRecord:
// which tree (and which version of it) was walked, with what answers,
// what was decided, why, and along which path.
//
// The package defines the record and query types plus the Storage and
// Exporter interfaces; the concrete pieces live in subpackages:
//
//   - storage: SQLite and in-memory Storage backends
//   - recorder: asynchronous recording with answer redaction
//   - query: query validation and defaults
//   - export: JSON and CSV exporters
//   - retention: age and count based pruning on a cron schedule
//
// # Record Lifecycle
//
// The recorder receives each evaluation outcome, redacts configured
// answer fields, and enqueues the record on a buffered channel. A
// background worker drains the channel into storage so evaluations are
// never blocked on disk writes. Retention pruning later removes records
// past the configured age or count limits.
//
// # Querying
//
// Records are queried with evidence.Query filters (time range, tree
// name, decision, status) with pagination and sorting. Validate and
// apply defaults with the query subpackage before handing a Query to a
// storage backend.
package evidence
