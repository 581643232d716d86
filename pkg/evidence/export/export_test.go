package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"arsmedica/dendron/pkg/evidence"
)

func exportRecords() []*evidence.EvaluationRecord {
	evaluated := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []*evidence.EvaluationRecord{
		{
			ID:             "rec-1",
			TreeName:       "triage",
			TreeVersion:    "abc123def4567890",
			EvaluatedAt:    evaluated,
			RecordedAt:     evaluated,
			Answers:        map[string]interface{}{"diastolic": 92},
			AnswersHash:    "deadbeef",
			Decision:       "Refer to GP",
			Reason:         "high diastolic pressure",
			PathTaken:      []string{"What is the diastolic blood pressure? -> 90-99"},
			EvaluationTime: 2 * time.Millisecond,
		},
		{
			ID:          "rec-2",
			TreeName:    "triage",
			EvaluatedAt: evaluated.Add(time.Minute),
			RecordedAt:  evaluated.Add(time.Minute),
			Error:       "evaluation exceeded maximum depth 64",
			ErrorType:   "max_depth",
		},
	}
}

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	e := NewJSONExporter(false)

	if err := e.Export(context.Background(), exportRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded []*evidence.EvaluationRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d records, want 2", len(decoded))
	}
	if decoded[0].Decision != "Refer to GP" {
		t.Errorf("Decision = %q, want Refer to GP", decoded[0].Decision)
	}
	if decoded[1].ErrorType != "max_depth" {
		t.Errorf("ErrorType = %q, want max_depth", decoded[1].ErrorType)
	}
}

func TestJSONExporter_ExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}

func TestJSONExporter_ExportStream(t *testing.T) {
	records := exportRecords()
	ch := make(chan *evidence.EvaluationRecord, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)

	var buf bytes.Buffer
	if err := NewJSONExporter(false).ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}

	var decoded []*evidence.EvaluationRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("decoded %d records, want 2", len(decoded))
	}
}

func TestCSVExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter().Export(context.Background(), exportRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 records", len(rows))
	}

	header := rows[0]
	if header[0] != "id" || header[7] != "decision" || header[12] != "error_type" {
		t.Errorf("unexpected header: %v", header)
	}

	first := rows[1]
	if first[0] != "rec-1" {
		t.Errorf("id = %q, want rec-1", first[0])
	}
	if first[5] != `{"diastolic":92}` {
		t.Errorf("answers = %q", first[5])
	}
	if first[9] != "What is the diastolic blood pressure? -> 90-99" {
		t.Errorf("path_taken = %q", first[9])
	}
	if first[10] != "2" {
		t.Errorf("evaluation_time_ms = %q, want 2", first[10])
	}

	second := rows[2]
	if second[12] != "max_depth" {
		t.Errorf("error_type = %q, want max_depth", second[12])
	}
	if second[5] != "" {
		t.Errorf("answers = %q, want empty", second[5])
	}
}

func TestCSVExporter_ExportStream(t *testing.T) {
	records := exportRecords()
	ch := make(chan *evidence.EvaluationRecord, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)

	var buf bytes.Buffer
	if err := NewCSVExporter().ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestExport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(ctx, exportRecords(), &buf); err == nil {
		t.Error("JSON Export() expected error for cancelled context")
	}
	if err := NewCSVExporter().Export(ctx, exportRecords(), &buf); err == nil {
		t.Error("CSV Export() expected error for cancelled context")
	}
}
