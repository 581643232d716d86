package manager

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"arsmedica/dendron/pkg/config"
	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/dtl/parser"
	"arsmedica/dendron/pkg/dtl/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, cfg *config.TreesConfig) *DefaultTreeManager {
	t.Helper()
	mgr, err := NewTreeManager(
		cfg,
		parser.NewParser(),
		validator.NewValidator(nil),
		engine.New(nil, testLogger(), nil),
		testLogger(),
	)
	if err != nil {
		t.Fatalf("NewTreeManager() error = %v", err)
	}
	return mgr
}

func fileModeConfig(path string) *config.TreesConfig {
	return &config.TreesConfig{
		Mode: "file",
		Path: path,
		Validation: config.TreeValidationConfig{
			Enabled: true,
		},
	}
}

func TestNewTreeManager_Errors(t *testing.T) {
	cfg := fileModeConfig(".")
	p := parser.NewParser()
	v := validator.NewValidator(nil)
	eng := engine.New(nil, testLogger(), nil)

	tests := []struct {
		name string
		fn   func() (*DefaultTreeManager, error)
	}{
		{"nil config", func() (*DefaultTreeManager, error) {
			return NewTreeManager(nil, p, v, eng, testLogger())
		}},
		{"nil parser", func() (*DefaultTreeManager, error) {
			return NewTreeManager(cfg, nil, v, eng, testLogger())
		}},
		{"nil validator", func() (*DefaultTreeManager, error) {
			return NewTreeManager(cfg, p, nil, eng, testLogger())
		}},
		{"nil engine", func() (*DefaultTreeManager, error) {
			return NewTreeManager(cfg, p, v, nil, testLogger())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); err == nil {
				t.Error("NewTreeManager() succeeded, want error")
			}
		})
	}
}

func TestManager_LoadTrees(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)
	writeTreeFile(t, dir, "triage.yaml", triageTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatalf("LoadTrees() error = %v", err)
	}

	trees := mgr.GetAllTrees()
	if len(trees) != 2 {
		t.Fatalf("len(GetAllTrees()) = %d, want 2", len(trees))
	}

	if mgr.GetTreeVersion() == "" {
		t.Error("GetTreeVersion() is empty after load")
	}
	if mgr.GetLastLoadTime().IsZero() {
		t.Error("GetLastLoadTime() is zero after load")
	}
	if mgr.GetLastLoadError() != nil {
		t.Errorf("GetLastLoadError() = %v, want nil", mgr.GetLastLoadError())
	}
}

func TestManager_LoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(path))
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatalf("LoadTrees() error = %v", err)
	}
	if len(mgr.GetAllTrees()) != 1 {
		t.Errorf("len(GetAllTrees()) = %d, want 1", len(mgr.GetAllTrees()))
	}
}

func TestManager_GetTree(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatal(err)
	}

	tree, err := mgr.GetTree("loan")
	if err != nil {
		t.Fatalf("GetTree(loan) error = %v", err)
	}
	if tree.Name != "loan" {
		t.Errorf("Name = %q, want loan", tree.Name)
	}

	_, err = mgr.GetTree("missing")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("GetTree(missing) error = %v, want *NotFoundError", err)
	}
}

func TestManager_Evaluate(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatal(err)
	}

	result, err := mgr.Evaluate(context.Background(), "loan",
		engine.NewAnswers(engine.Answer{Name: "loan_amount", Value: 500}))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if result.Decision != "Approved" {
		t.Errorf("Decision = %q, want Approved", result.Decision)
	}
	if result.Reason != "small loan" {
		t.Errorf("Reason = %q, want small loan", result.Reason)
	}
	if len(result.PathTaken) != 1 {
		t.Errorf("len(PathTaken) = %d, want 1", len(result.PathTaken))
	}
}

func TestManager_EvaluateUnknownTree(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatal(err)
	}

	_, err := mgr.Evaluate(context.Background(), "missing", nil)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Evaluate(missing) error = %v, want *NotFoundError", err)
	}
}

// recordingObserver captures observer callbacks for assertions.
type recordingObserver struct {
	mu         sync.Mutex
	decisions  []string
	errorTrees []string
}

func (o *recordingObserver) ObserveEvaluation(treeName, decision string, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, treeName+"/"+decision)
}

func (o *recordingObserver) ObserveEvaluationError(treeName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errorTrees = append(o.errorTrees, treeName)
}

// recordingSink captures evidence callbacks for assertions.
type recordingSink struct {
	mu      sync.Mutex
	records []string
}

func (s *recordingSink) RecordEvaluation(ctx context.Context, treeName string, answers engine.Answers, result *engine.Result, evalErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, treeName)
}

func TestManager_EvaluateHooks(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	observer := &recordingObserver{}
	sink := &recordingSink{}
	mgr.SetObserver(observer)
	mgr.SetEvidenceSink(sink)

	if err := mgr.LoadTrees(); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.Evaluate(context.Background(), "loan",
		engine.NewAnswers(engine.Answer{Name: "loan_amount", Value: 500})); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if _, err := mgr.Evaluate(context.Background(), "missing", nil); err == nil {
		t.Fatal("Evaluate(missing) succeeded, want error")
	}

	if len(observer.decisions) != 1 || observer.decisions[0] != "loan/Approved" {
		t.Errorf("observer.decisions = %v, want [loan/Approved]", observer.decisions)
	}
	if len(observer.errorTrees) != 1 || observer.errorTrees[0] != "missing" {
		t.Errorf("observer.errorTrees = %v, want [missing]", observer.errorTrees)
	}
	if len(sink.records) != 1 || sink.records[0] != "loan" {
		t.Errorf("sink.records = %v, want [loan]", sink.records)
	}
}

func TestManager_ReloadTrees(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatal(err)
	}
	firstVersion := mgr.GetTreeVersion()

	writeTreeFile(t, dir, "triage.yaml", triageTreeYAML)

	if err := mgr.ReloadTrees(); err != nil {
		t.Fatalf("ReloadTrees() error = %v", err)
	}

	if len(mgr.GetAllTrees()) != 2 {
		t.Errorf("len(GetAllTrees()) = %d after reload, want 2", len(mgr.GetAllTrees()))
	}
	if mgr.GetTreeVersion() == firstVersion {
		t.Error("version unchanged after reload with a new tree")
	}
}

func TestManager_ReloadKeepsPreviousTreesOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatal(err)
	}

	// Corrupt the tree file and add a broken sibling.
	writeTreeFile(t, dir, "loan.yaml", "question: [unclosed")

	if err := mgr.ReloadTrees(); err == nil {
		t.Fatal("ReloadTrees() succeeded with broken source, want error")
	}

	// Previous trees must still be served.
	if _, err := mgr.GetTree("loan"); err != nil {
		t.Errorf("GetTree(loan) error = %v after failed reload, want nil", err)
	}
	if mgr.GetLastLoadError() == nil {
		t.Error("GetLastLoadError() = nil after failed reload")
	}

	result, err := mgr.Evaluate(context.Background(), "loan",
		engine.NewAnswers(engine.Answer{Name: "loan_amount", Value: 500}))
	if err != nil || result.Decision != "Approved" {
		t.Errorf("Evaluate() = %+v, %v after failed reload, want Approved", result, err)
	}
}

func TestManager_ValidationStrict(t *testing.T) {
	dir := t.TempDir()
	// Parses fine but fails validation: a question with no branches.
	writeTreeFile(t, dir, "bad.yaml", `
question: "What is the loan amount?"
branches: {}
`)

	cfg := fileModeConfig(dir)
	cfg.Validation.Strict = true

	mgr := newTestManager(t, cfg)
	defer mgr.Close()

	err := mgr.LoadTrees()
	if err == nil {
		t.Fatal("LoadTrees() succeeded with invalid tree, want error")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("error = %v, want *ValidationError", err)
	}
}

func TestManager_ValidationDisabled(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "bad.yaml", `
question: "What is the loan amount?"
branches: {}
`)

	cfg := fileModeConfig(dir)
	cfg.Validation.Enabled = false

	mgr := newTestManager(t, cfg)
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Errorf("LoadTrees() error = %v with validation disabled, want nil", err)
	}
}

func TestManager_ValidateTreesDryRun(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if err := mgr.ValidateTreesDryRun(); err != nil {
		t.Fatalf("ValidateTreesDryRun() error = %v", err)
	}

	// Dry run must not touch the registry.
	if len(mgr.GetAllTrees()) != 0 {
		t.Errorf("registry contains %d trees after dry run, want 0", len(mgr.GetAllTrees()))
	}
}

func TestManager_GitMethodsOutsideGitMode(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	mgr := newTestManager(t, fileModeConfig(dir))
	defer mgr.Close()

	if _, err := mgr.GetCurrentCommit(); err == nil {
		t.Error("GetCurrentCommit() succeeded in file mode, want error")
	}
	if _, err := mgr.GetCommitHistory(10); err == nil {
		t.Error("GetCommitHistory() succeeded in file mode, want error")
	}
	if err := mgr.RollbackToCommit(context.Background(), "abc"); err == nil {
		t.Error("RollbackToCommit() succeeded in file mode, want error")
	}
	if err := mgr.ForceSync(context.Background()); err == nil {
		t.Error("ForceSync() succeeded in file mode, want error")
	}
}

func TestManager_WatchDisabled(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	cfg := fileModeConfig(dir)
	cfg.Watch = false

	mgr := newTestManager(t, cfg)
	defer mgr.Close()

	if err := mgr.Watch(context.Background()); err == nil {
		t.Error("Watch() succeeded with watching disabled, want error")
	}
}

func TestManager_WatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeTreeFile(t, dir, "loan.yaml", loanTreeYAML)

	cfg := fileModeConfig(dir)
	cfg.Watch = true

	mgr := newTestManager(t, cfg)
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- mgr.Watch(ctx)
	}()

	// Give the watcher time to install before changing the file.
	time.Sleep(200 * time.Millisecond)

	writeTreeFile(t, dir, "triage.yaml", triageTreeYAML)

	deadline := time.After(3 * time.Second)
	for {
		if mgr.GetRegistry().HasTree("triage") {
			break
		}
		select {
		case <-deadline:
			t.Fatal("tree not reloaded after file change")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-watchDone:
		if err != nil {
			t.Errorf("Watch() returned error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after context cancellation")
	}
}
