package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func evalView() *EvaluationView {
	return &EvaluationView{
		Tree:        "triage",
		TreeVersion: "abc123def4567890",
		Decision:    "Refer to GP",
		Reason:      "high diastolic pressure",
		PathTaken: []string{
			"What is the diastolic blood pressure? -> 90-99",
		},
		EvaluationTime: 2 * time.Millisecond,
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTextFormatter_FormatEvaluation(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatEvaluation(&buf, evalView()); err != nil {
		t.Fatalf("FormatEvaluation() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Decision: Refer to GP",
		"Reason:   high diastolic pressure",
		"1. What is the diastolic blood pressure? -> 90-99",
		"version abc123def4567890",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONFormatter_FormatEvaluation(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{Indent: true}).FormatEvaluation(&buf, evalView()); err != nil {
		t.Fatalf("FormatEvaluation() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["decision"] != "Refer to GP" {
		t.Errorf("decision = %v, want Refer to GP", decoded["decision"])
	}
	if _, ok := decoded["path_taken"].([]interface{}); !ok {
		t.Errorf("path_taken = %v, want array", decoded["path_taken"])
	}
}

func TestTextFormatter_FormatValidation(t *testing.T) {
	views := []ValidationView{
		{File: "triage.yaml", Tree: "triage", Valid: true},
		{File: "broken.yaml", Valid: false, Issues: []ValidationIssueView{
			{Severity: "error", Message: "node has no branches", Location: "broken.yaml:4", Suggestion: "add at least one branch"},
		}},
	}

	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatValidation(&buf, views); err != nil {
		t.Fatalf("FormatValidation() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"OK   triage.yaml (triage)",
		"FAIL broken.yaml",
		"ERROR: node has no branches at broken.yaml:4",
		"hint: add at least one branch",
		"1/2 file(s) valid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) is not a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("NewFormatter(text) is not a TextFormatter")
	}
}
