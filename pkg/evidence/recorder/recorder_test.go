package recorder

import (
	"context"
	"testing"
	"time"

	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/evidence"
	"arsmedica/dendron/pkg/evidence/storage"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.WriteTimeout = time.Second
	return cfg
}

func testAnswers() engine.Answers {
	return engine.NewAnswers(
		engine.Answer{Name: "loan_amount", Value: 500},
		engine.Answer{Name: "applicant_name", Value: "Jane Doe"},
	)
}

func testResult() *engine.Result {
	return &engine.Result{
		Decision:       "Approved",
		Reason:         "small loan",
		PathTaken:      []string{"What is the loan amount? -> < 1000"},
		EvaluationTime: 42 * time.Microsecond,
	}
}

func waitForRecords(t *testing.T, store *storage.MemoryStorage, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.Size() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d records, have %d", want, store.Size())
}

func TestRecorder_RecordEvaluation(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := NewRecorder(store, testConfig())
	defer rec.Close()

	rec.SetVersionFunc(func() string { return "abc123def4567890" })

	rec.RecordEvaluation(context.Background(), "loan", testAnswers(), testResult(), nil)
	waitForRecords(t, store, 1)

	records, err := store.Query(context.Background(), &evidence.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	record := records[0]

	if record.ID == "" {
		t.Error("record ID is empty")
	}
	if record.TreeName != "loan" {
		t.Errorf("TreeName = %q, want loan", record.TreeName)
	}
	if record.TreeVersion != "abc123def4567890" {
		t.Errorf("TreeVersion = %q, want abc123def4567890", record.TreeVersion)
	}
	if record.Decision != "Approved" {
		t.Errorf("Decision = %q, want Approved", record.Decision)
	}
	if record.Reason != "small loan" {
		t.Errorf("Reason = %q, want small loan", record.Reason)
	}
	if len(record.PathTaken) != 1 {
		t.Errorf("PathTaken length = %d, want 1", len(record.PathTaken))
	}
	if record.AnswersHash == "" {
		t.Error("AnswersHash is empty")
	}
	if record.Error != "" || record.ErrorType != "" {
		t.Errorf("Error = %q, ErrorType = %q, want empty", record.Error, record.ErrorType)
	}
	if record.Answers["loan_amount"] != 500 {
		t.Errorf("loan_amount = %v, want 500", record.Answers["loan_amount"])
	}
}

func TestRecorder_RedactsConfiguredAnswers(t *testing.T) {
	store := storage.NewMemoryStorage()
	cfg := testConfig()
	cfg.RedactAnswers = []string{"applicant_name"}
	rec := NewRecorder(store, cfg)
	defer rec.Close()

	rec.RecordEvaluation(context.Background(), "loan", testAnswers(), testResult(), nil)
	waitForRecords(t, store, 1)

	records, _ := store.Query(context.Background(), &evidence.Query{})
	record := records[0]

	if record.Answers["applicant_name"] != RedactedValue {
		t.Errorf("applicant_name = %v, want %q", record.Answers["applicant_name"], RedactedValue)
	}

	// Hash covers the unredacted values
	raw := map[string]interface{}{"loan_amount": 500, "applicant_name": "Jane Doe"}
	if record.AnswersHash != HashAnswers(raw) {
		t.Error("AnswersHash does not match hash of unredacted answers")
	}
}

func TestRecorder_TruncatesLongValues(t *testing.T) {
	store := storage.NewMemoryStorage()
	cfg := testConfig()
	cfg.MaxFieldLength = 10
	rec := NewRecorder(store, cfg)
	defer rec.Close()

	answers := engine.NewAnswers(
		engine.Answer{Name: "notes", Value: "a very long free text answer"},
	)
	rec.RecordEvaluation(context.Background(), "loan", answers, testResult(), nil)
	waitForRecords(t, store, 1)

	records, _ := store.Query(context.Background(), &evidence.Query{})
	got, _ := records[0].Answers["notes"].(string)
	if got != "a very ..." {
		t.Errorf("notes = %q, want truncated value", got)
	}
}

func TestRecorder_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{name: "unsupported operator", err: &engine.UnsupportedOperatorError{Symbol: "~="}, wantType: "unsupported_operator"},
		{name: "max depth", err: &engine.MaxDepthError{Depth: 64}, wantType: "max_depth"},
		{name: "nil tree", err: engine.ErrNilTree, wantType: "nil_tree"},
		{name: "generic", err: context.DeadlineExceeded, wantType: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			rec := NewRecorder(store, testConfig())
			defer rec.Close()

			rec.RecordEvaluation(context.Background(), "loan", nil, nil, tt.err)
			waitForRecords(t, store, 1)

			records, _ := store.Query(context.Background(), &evidence.Query{})
			if records[0].ErrorType != tt.wantType {
				t.Errorf("ErrorType = %q, want %q", records[0].ErrorType, tt.wantType)
			}
			if records[0].Error == "" {
				t.Error("Error message is empty")
			}
			if records[0].Decision != "" {
				t.Errorf("Decision = %q, want empty for failed evaluation", records[0].Decision)
			}
		})
	}
}

func TestRecorder_DisabledRecordsNothing(t *testing.T) {
	store := storage.NewMemoryStorage()
	cfg := testConfig()
	cfg.Enabled = false
	rec := NewRecorder(store, cfg)

	rec.RecordEvaluation(context.Background(), "loan", testAnswers(), testResult(), nil)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if store.Size() != 0 {
		t.Errorf("Size() = %d, want 0", store.Size())
	}
}

func TestRecorder_CloseDrainsPending(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := NewRecorder(store, testConfig())

	for i := 0; i < 20; i++ {
		rec.RecordEvaluation(context.Background(), "loan", testAnswers(), testResult(), nil)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if store.Size() != 20 {
		t.Errorf("Size() = %d, want 20", store.Size())
	}

	// Close is idempotent
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
