package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"arsmedica/dendron/pkg/config"
	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/decision/git"
	"arsmedica/dendron/pkg/dtl/parser"
	"arsmedica/dendron/pkg/dtl/validator"
)

// DefaultTreeManager is the default implementation of TreeManager.
// It coordinates tree loading, validation, registration, evaluation,
// and hot-reload.
type DefaultTreeManager struct {
	config    *config.TreesConfig
	loader    *TreeLoader
	registry  *TreeRegistry
	parser    *parser.Parser
	validator *validator.Validator
	engine    *engine.Engine
	logger    *slog.Logger

	// Git source management
	gitRepo    *git.Repository
	gitWatcher *git.Watcher

	// Optional hooks
	observer EvaluationObserver
	sink     EvidenceSink

	// State management
	mu            sync.RWMutex
	lastLoadTime  time.Time
	lastLoadError error
	lastGoodTrees []*Tree

	// Watch management
	watchCtx    context.Context
	watchCancel context.CancelFunc
	watchMu     sync.Mutex
}

// NewTreeManager creates a new tree manager.
func NewTreeManager(
	cfg *config.TreesConfig,
	treeParser *parser.Parser,
	treeValidator *validator.Validator,
	eng *engine.Engine,
	logger *slog.Logger,
) (*DefaultTreeManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if treeParser == nil {
		return nil, fmt.Errorf("parser cannot be nil")
	}

	if treeValidator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}

	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	loaderConfig := DefaultLoaderConfig()
	loader := NewTreeLoader(loaderConfig, treeParser)
	registry := NewTreeRegistry()

	tm := &DefaultTreeManager{
		config:        cfg,
		loader:        loader,
		registry:      registry,
		parser:        treeParser,
		validator:     treeValidator,
		engine:        eng,
		logger:        logger,
		lastGoodTrees: []*Tree{},
	}

	// Initialize Git source if mode is "git"
	if cfg.Mode == "git" && cfg.Git.Enabled {
		logger.Info("Initializing Git tree source",
			"repository", cfg.Git.Repository,
			"branch", cfg.Git.Branch,
		)

		gitRepo, err := git.NewRepository(&cfg.Git)
		if err != nil {
			return nil, fmt.Errorf("failed to create git repository: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Git.Poll.Timeout)
		defer cancel()

		if err := gitRepo.Clone(ctx); err != nil {
			return nil, fmt.Errorf("failed to clone repository: %w", err)
		}

		tm.gitRepo = gitRepo

		if cfg.Git.Poll.Enabled {
			tm.gitWatcher = git.NewWatcher(
				gitRepo,
				cfg.Git.Poll.Interval,
				cfg.Git.Poll.Timeout,
				tm.reloadTreesFromGit,
			)
			tm.gitWatcher.SetLogger(logger)
		}
	}

	return tm, nil
}

// SetObserver installs a metrics observer for evaluations.
// Must be called before Evaluate is used concurrently.
func (m *DefaultTreeManager) SetObserver(observer EvaluationObserver) {
	m.observer = observer
}

// SetEvidenceSink installs an evidence sink for evaluations.
// Must be called before Evaluate is used concurrently.
func (m *DefaultTreeManager) SetEvidenceSink(sink EvidenceSink) {
	m.sink = sink
}

// LoadTrees loads all trees from the configured source.
// This performs validation and registration with atomic updates.
func (m *DefaultTreeManager) LoadTrees() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	startTime := time.Now()
	m.logger.Info("Loading trees",
		"mode", m.config.Mode,
		"path", m.config.Path,
	)

	trees, err := m.loadTreesFromSource()
	if err != nil {
		m.lastLoadError = err
		m.logger.Error("Failed to load trees",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return err
	}

	// Validate all trees before applying
	if err := m.validateTrees(trees); err != nil {
		m.lastLoadError = err
		m.logger.Error("Tree validation failed",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return err
	}

	// Atomically replace trees in registry
	if err := m.registry.Replace(trees); err != nil {
		m.lastLoadError = err
		m.logger.Error("Failed to register trees",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return err
	}

	m.lastLoadTime = time.Now()
	m.lastLoadError = nil
	m.lastGoodTrees = trees

	m.logger.Info("Trees loaded successfully",
		"count", len(trees),
		"version", m.registry.GetVersion(),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return nil
}

// ReloadTrees reloads all trees from the configured source.
// This is an atomic operation with error recovery: if loading or
// validation fails, the previously loaded trees remain active.
func (m *DefaultTreeManager) ReloadTrees() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	startTime := time.Now()
	m.logger.Info("Reloading trees",
		"mode", m.config.Mode,
		"path", m.config.Path,
	)

	trees, err := m.loadTreesFromSource()
	if err != nil {
		m.lastLoadError = err
		m.logger.Error("Failed to reload trees, keeping previous trees",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return err
	}

	if err := m.validateTrees(trees); err != nil {
		m.lastLoadError = err
		m.logger.Error("Tree validation failed during reload, keeping previous trees",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return err
	}

	if err := m.registry.Replace(trees); err != nil {
		m.lastLoadError = err
		m.logger.Error("Failed to register trees during reload, keeping previous trees",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		// Attempt to restore last good trees
		if len(m.lastGoodTrees) > 0 {
			_ = m.registry.Replace(m.lastGoodTrees)
		}
		return err
	}

	m.lastLoadTime = time.Now()
	m.lastLoadError = nil
	m.lastGoodTrees = trees

	m.logger.Info("Trees reloaded successfully",
		"count", len(trees),
		"version", m.registry.GetVersion(),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return nil
}

// GetTree retrieves a single tree by name.
func (m *DefaultTreeManager) GetTree(name string) (*Tree, error) {
	tree, ok := m.registry.Get(name)
	if !ok {
		return nil, &NotFoundError{TreeName: name}
	}
	return tree, nil
}

// GetAllTrees retrieves all loaded trees.
func (m *DefaultTreeManager) GetAllTrees() []*Tree {
	return m.registry.GetAll()
}

// GetTreeVersion returns the version of the currently loaded trees.
func (m *DefaultTreeManager) GetTreeVersion() string {
	return m.registry.GetVersion()
}

// Evaluate walks the named tree against the supplied answers.
// The outcome is reported to the configured observer and evidence sink.
func (m *DefaultTreeManager) Evaluate(ctx context.Context, treeName string, answers engine.Answers) (*engine.Result, error) {
	tree, ok := m.registry.Get(treeName)
	if !ok {
		if m.observer != nil {
			m.observer.ObserveEvaluationError(treeName)
		}
		return nil, &NotFoundError{TreeName: treeName}
	}

	startTime := time.Now()
	result, err := m.engine.Lookup(ctx, tree.Root, answers)
	duration := time.Since(startTime)

	if m.observer != nil {
		if err != nil {
			m.observer.ObserveEvaluationError(treeName)
		} else {
			m.observer.ObserveEvaluation(treeName, result.Decision, duration)
		}
	}

	if m.sink != nil {
		m.sink.RecordEvaluation(ctx, treeName, answers, result, err)
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

// Watch starts watching the tree source for changes.
// This implements hot-reload functionality.
func (m *DefaultTreeManager) Watch(ctx context.Context) error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchMu.Unlock()
		return fmt.Errorf("watch already started")
	}

	m.watchCtx, m.watchCancel = context.WithCancel(ctx)
	m.watchMu.Unlock()

	// Git mode uses its own polling watcher
	if m.config.Mode == "git" && m.gitWatcher != nil {
		m.logger.Info("Starting Git tree watcher",
			"repository", m.config.Git.Repository,
			"branch", m.config.Git.Branch,
			"poll_interval", m.config.Git.Poll.Interval,
		)

		if err := m.gitWatcher.Start(m.watchCtx); err != nil {
			return fmt.Errorf("failed to start git watcher: %w", err)
		}

		<-m.watchCtx.Done()

		return m.gitWatcher.Stop()
	}

	// File mode uses file system watcher
	m.logger.Info("Starting tree watcher",
		"path", m.config.Path,
		"watch_enabled", m.config.Watch,
	)

	if !m.config.Watch {
		m.logger.Debug("Tree watching disabled in configuration")
		return fmt.Errorf("tree watching is not enabled in configuration")
	}

	watchConfig := DefaultFileWatcherConfig()
	watchConfig.Path = m.config.Path

	watcher, err := NewFileWatcher(watchConfig, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Start watching in background
	go func() {
		if err := watcher.Watch(m.watchCtx, func() error {
			return m.ReloadTrees()
		}); err != nil {
			m.logger.Error("File watcher error", "error", err)
		}
	}()

	<-m.watchCtx.Done()

	if err := watcher.Stop(); err != nil {
		m.logger.Error("Failed to stop file watcher", "error", err)
		return err
	}

	return nil
}

// Close performs cleanup and releases resources.
func (m *DefaultTreeManager) Close() error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchMu.Unlock()

	if m.gitWatcher != nil {
		if err := m.gitWatcher.Stop(); err != nil {
			m.logger.Error("Failed to stop git watcher", "error", err)
		}
	}

	m.logger.Info("Tree manager closed")
	return nil
}

// ValidateTreesDryRun validates trees without applying them to the registry.
// This is useful for checking tree files before deployment or for lint
// operations. It performs all validation steps but does not modify the
// active tree set.
func (m *DefaultTreeManager) ValidateTreesDryRun() error {
	m.logger.Info("Dry-run validation", "path", m.config.Path)

	trees, err := m.loadTreesFromSource()
	if err != nil {
		return fmt.Errorf("failed to load trees: %w", err)
	}

	if err := m.validateTrees(trees); err != nil {
		return fmt.Errorf("tree validation failed: %w", err)
	}

	m.logger.Info("Dry-run validation successful",
		"count", len(trees),
	)

	return nil
}

// GetLastLoadTime returns the timestamp of the last successful load.
func (m *DefaultTreeManager) GetLastLoadTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadTime
}

// GetLastLoadError returns the error from the last load attempt.
func (m *DefaultTreeManager) GetLastLoadError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadError
}

// GetRegistry returns the underlying tree registry.
// This is useful for testing and introspection.
func (m *DefaultTreeManager) GetRegistry() *TreeRegistry {
	return m.registry
}

// loadTreesFromSource loads trees from the configured source.
func (m *DefaultTreeManager) loadTreesFromSource() ([]*Tree, error) {
	treePath := m.config.Path

	// In Git mode, load from the local cloned repository
	if m.config.Mode == "git" && m.gitRepo != nil {
		treePath = m.gitRepo.GetTreePath()
	}

	isDir, err := m.loader.IsDirectory(treePath)
	if err != nil {
		return nil, fmt.Errorf("failed to access tree path: %w", err)
	}

	if isDir {
		trees, err := m.loader.LoadFromDirectory(treePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load trees from directory: %w", err)
		}
		return trees, nil
	}

	tree, err := m.loader.LoadFromFile(treePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree file: %w", err)
	}
	return []*Tree{tree}, nil
}

// validateTrees validates all trees before loading.
func (m *DefaultTreeManager) validateTrees(trees []*Tree) error {
	if !m.config.Validation.Enabled {
		m.logger.Debug("Tree validation disabled")
		return nil
	}

	errList := &ErrorList{}

	for _, tree := range trees {
		result := m.validator.Validate(tree.Root)

		for _, warning := range result.Warnings {
			m.logger.Warn("Tree validation warning",
				"tree", tree.Name,
				"warning", warning,
			)
		}

		if err := result.ErrOrNil(); err != nil {
			errList.Add(&ValidationError{
				TreeName: tree.Name,
				Message:  err.Error(),
				Cause:    err,
			})

			// In strict mode, fail immediately
			if m.config.Validation.Strict {
				return errList.ToError()
			}
		}
	}

	// Check for duplicate tree names (last one wins on registration)
	seen := make(map[string]bool)
	for _, tree := range trees {
		if seen[tree.Name] {
			m.logger.Warn("Duplicate tree name detected",
				"tree", tree.Name,
				"source_file", tree.SourceFile,
			)
		}
		seen[tree.Name] = true
	}

	return errList.ToError()
}

// reloadTreesFromGit is the callback for the Git watcher. The treePath
// argument is supplied by the watcher but unused since the path is
// derived from the repository configuration.
// Returns an error if validation fails, triggering automatic rollback.
func (m *DefaultTreeManager) reloadTreesFromGit(treePath string) error {
	m.logger.Info("Git watcher triggered tree reload",
		"path", treePath,
	)

	return m.ReloadTrees()
}

// Git-specific methods

// GetCurrentCommit returns the current Git commit information.
// Returns an error if not in Git mode.
func (m *DefaultTreeManager) GetCurrentCommit() (*git.CommitInfo, error) {
	if m.config.Mode != "git" || m.gitRepo == nil {
		return nil, fmt.Errorf("not in git mode")
	}

	return m.gitRepo.GetCurrentCommit()
}

// GetCommitHistory returns the commit history for the tree repository.
// The limit parameter controls how many commits to retrieve.
func (m *DefaultTreeManager) GetCommitHistory(limit int) ([]*git.CommitInfo, error) {
	if m.config.Mode != "git" || m.gitRepo == nil {
		return nil, fmt.Errorf("not in git mode")
	}

	return m.gitRepo.GetCommitHistory(limit)
}

// RollbackToCommit rolls back trees to a specific Git commit.
// This performs a Git checkout to the target commit, reloads trees,
// and validates them before replacing the active tree set.
func (m *DefaultTreeManager) RollbackToCommit(ctx context.Context, commitSHA string) error {
	if m.config.Mode != "git" || m.gitRepo == nil {
		return fmt.Errorf("not in git mode")
	}

	m.logger.Info("Rolling back to commit",
		"commit_sha", commitSHA,
	)

	if err := m.gitRepo.Rollback(ctx, commitSHA); err != nil {
		return fmt.Errorf("failed to rollback git repository: %w", err)
	}

	if err := m.ReloadTrees(); err != nil {
		m.logger.Error("Failed to load trees after rollback",
			"commit_sha", commitSHA,
			"error", err,
		)
		return fmt.Errorf("failed to load trees after rollback: %w", err)
	}

	m.logger.Info("Successfully rolled back to commit",
		"commit_sha", commitSHA,
	)

	return nil
}

// ForceSync forces a Git pull to sync with the remote repository.
// If tree validation fails after pulling, the repository is rolled back
// to the previous commit and the last-known-good trees are retained.
func (m *DefaultTreeManager) ForceSync(ctx context.Context) error {
	if m.config.Mode != "git" || m.gitRepo == nil {
		return fmt.Errorf("not in git mode")
	}

	m.logger.Info("Forcing Git sync")

	result, err := m.gitRepo.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull changes: %w", err)
	}

	if !result.HadChanges {
		m.logger.Info("No changes detected")
		return nil
	}

	m.logger.Info("Changes detected, reloading trees",
		"from_sha", result.FromSHA,
		"to_sha", result.ToSHA,
		"changed_files", len(result.ChangedFiles),
	)

	if err := m.ReloadTrees(); err != nil {
		m.logger.Error("Failed to reload trees after sync, rolling back",
			"error", err,
			"from_sha", result.ToSHA,
			"to_sha", result.FromSHA,
		)

		rollbackErr := m.gitRepo.Rollback(ctx, result.FromSHA)
		if rollbackErr != nil {
			m.logger.Error("Failed to rollback after validation failure",
				"error", rollbackErr,
				"target_sha", result.FromSHA,
			)
			return fmt.Errorf("failed to reload trees: %w (rollback also failed: %v)", err, rollbackErr)
		}

		m.logger.Info("Successfully rolled back to previous commit",
			"sha", result.FromSHA,
		)

		return fmt.Errorf("failed to reload trees: %w", err)
	}

	return nil
}

// GetGitMetrics returns performance metrics for Git operations.
// Returns the zero value if not in Git mode.
func (m *DefaultTreeManager) GetGitMetrics() git.RepositoryMetrics {
	if m.config.Mode != "git" || m.gitRepo == nil {
		return git.RepositoryMetrics{}
	}

	return m.gitRepo.GetMetrics()
}
