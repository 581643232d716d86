// Package manager provides tree management capabilities for loading,
// validating, evaluating, and hot-reloading decision trees from the
// file system or a Git repository.
//
// The package supports single-file trees, multi-file directory
// structures, validation on load, and hot-reload capabilities for
// zero-downtime tree updates. Git mode adds GitOps-style workflows
// with polling, rollback, and commit history.
//
// # Core Components
//
// TreeManager is the main orchestrator that coordinates all tree
// management operations including loading, validation, registration,
// evaluation, and hot-reload.
//
// TreeLoader handles file system operations and parsing, supporting
// both single files and directory structures.
//
// TreeRegistry provides thread-safe in-memory storage for loaded trees
// with copy-on-write semantics for atomic updates.
//
// FileWatcher monitors the file system for changes and triggers
// hot-reload with debouncing to prevent reload storms.
//
// # Basic Usage
//
// Loading a directory of trees and evaluating one:
//
//	cfg := &config.TreesConfig{
//	    Mode: "file",
//	    Path: "trees/",
//	}
//
//	mgr, err := manager.NewTreeManager(cfg, parser, validator, eng, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := mgr.LoadTrees(); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := mgr.Evaluate(ctx, "loan",
//	    engine.NewAnswers(engine.Answer{Name: "loan_amount", Value: 500}))
//
// # Hot-Reload
//
// Enable file watching for automatic tree reloading:
//
//	cfg := &config.TreesConfig{
//	    Mode:  "file",
//	    Path:  "trees/",
//	    Watch: true,
//	}
//
//	go func() {
//	    if err := mgr.Watch(ctx); err != nil {
//	        log.Printf("Watcher error: %v", err)
//	    }
//	}()
//
// Reloads are atomic: the incoming tree set is loaded and validated in
// full before it replaces the active set, and a failed reload keeps the
// previous trees serving.
//
// # Error Handling
//
// The package provides detailed error types for different failure
// scenarios:
//
// LoadError: file system and loading errors (file not found,
// permission denied, oversized files)
//
// ValidationError: tree validation errors from the tree validator
//
// RegistryError: registration failures (nil tree, empty name)
//
// NotFoundError: lookup of a tree name that is not registered
//
// # Thread Safety
//
// All tree operations are thread-safe. The registry uses copy-on-write
// semantics so concurrent evaluations are never blocked by a reload.
package manager
