// Package storage provides evidence.Storage backends for evaluation
// records.
//
// SQLiteStorage is the production backend: a single-file database with
// WAL mode for concurrent reads during async writes, schema versioning,
// and indexes on the common query columns (evaluated_at, tree_name,
// decision). It uses the pure-Go modernc.org/sqlite driver, so builds
// need no cgo.
//
// MemoryStorage keeps records in a map and is meant for tests and the
// "memory" evidence backend configuration; nothing survives a restart.
//
// Both backends implement the full evidence.Storage interface including
// QueryStream for memory-efficient iteration over large result sets.
package storage
