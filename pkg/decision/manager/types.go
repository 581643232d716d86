package manager

import (
	"context"
	"time"

	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/dtl/ast"
)

// Tree is a named decision tree loaded from a source file.
type Tree struct {
	// Name is the tree identifier, derived from the source file name.
	Name string

	// Root is the parsed tree.
	Root *ast.Node

	// SourceFile is the path the tree was loaded from.
	SourceFile string

	// LoadedAt is when the tree was parsed.
	LoadedAt time.Time
}

// TreeManager is the main interface for tree management operations.
// It coordinates tree loading, validation, registration, and hot-reload.
type TreeManager interface {
	// LoadTrees loads all trees from the configured source.
	// This performs initial validation and registration.
	LoadTrees() error

	// ReloadTrees reloads all trees from the configured source.
	// This is an atomic operation - all trees are validated before any
	// are applied. If validation fails, the previous trees remain active.
	ReloadTrees() error

	// GetTree retrieves a single tree by name.
	GetTree(name string) (*Tree, error)

	// GetAllTrees retrieves all loaded trees.
	// The returned slice is a snapshot and will not be modified by the manager.
	GetAllTrees() []*Tree

	// GetTreeVersion returns the version of the currently loaded trees.
	// This is a hash of tree names and source paths.
	GetTreeVersion() string

	// Evaluate walks the named tree against the supplied answers.
	Evaluate(ctx context.Context, treeName string, answers engine.Answers) (*engine.Result, error)

	// Watch starts watching the tree source for changes.
	// When changes are detected, trees are automatically reloaded.
	// This is a blocking operation that runs until the context is cancelled.
	Watch(ctx context.Context) error

	// Close performs cleanup and releases resources.
	Close() error
}

// TreeMetadata contains metadata about a loaded tree.
type TreeMetadata struct {
	// Name is the tree identifier.
	Name string

	// SourceFile is the path to the tree file.
	SourceFile string

	// LoadedAt is when the tree was parsed.
	LoadedAt time.Time

	// NodeCount is the number of nodes in the tree.
	NodeCount int

	// MaxDepth is the deepest question path in the tree.
	MaxDepth int
}

// ReloadEvent represents a file system change event that triggers a reload.
type ReloadEvent struct {
	// Type is the event type (create, modify, delete)
	Type ReloadEventType

	// FilePath is the path to the file that changed
	FilePath string

	// Timestamp is when the event occurred
	Timestamp time.Time
}

// ReloadEventType represents the type of file system change.
type ReloadEventType int

const (
	// ReloadEventCreate indicates a new file was created
	ReloadEventCreate ReloadEventType = iota

	// ReloadEventModify indicates an existing file was modified
	ReloadEventModify

	// ReloadEventDelete indicates a file was deleted
	ReloadEventDelete
)

// String returns a string representation of the event type.
func (t ReloadEventType) String() string {
	switch t {
	case ReloadEventCreate:
		return "create"
	case ReloadEventModify:
		return "modify"
	case ReloadEventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// TreeLoaderConfig contains configuration for the tree loader.
type TreeLoaderConfig struct {
	// MaxFileSize is the maximum file size in bytes (default: 1MB)
	MaxFileSize int64

	// AllowedExtensions is the list of allowed file extensions
	// (default: [".yaml", ".yml", ".json"])
	AllowedExtensions []string

	// FollowSymlinks controls whether to follow symbolic links (default: true)
	FollowSymlinks bool

	// SkipHidden controls whether to skip hidden files/directories (default: true)
	SkipHidden bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *TreeLoaderConfig {
	return &TreeLoaderConfig{
		MaxFileSize:       1 * 1024 * 1024, // 1MB
		AllowedExtensions: []string{".yaml", ".yml", ".json"},
		FollowSymlinks:    true,
		SkipHidden:        true,
	}
}

// EvaluationObserver receives evaluation outcomes for metrics collection.
// Implementations must be safe for concurrent use.
type EvaluationObserver interface {
	// ObserveEvaluation is called once per completed evaluation.
	ObserveEvaluation(treeName, decision string, duration time.Duration)

	// ObserveEvaluationError is called when an evaluation fails hard.
	ObserveEvaluationError(treeName string)
}

// EvidenceSink receives evaluation results for audit recording.
// Implementations must be safe for concurrent use and must not block.
type EvidenceSink interface {
	// RecordEvaluation records one evaluation outcome.
	RecordEvaluation(ctx context.Context, treeName string, answers engine.Answers, result *engine.Result, evalErr error)
}
