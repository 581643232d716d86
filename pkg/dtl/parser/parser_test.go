package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arsmedica/dendron/pkg/dtl/ast"
	dtlErrors "arsmedica/dendron/pkg/dtl/errors"
)

const bloodPressureYAML = `
question: "What is your diastolic blood pressure?"
branches:
  ">= 120": "Hypertensive crisis - Seek emergency care immediately"
  "< 120":
    question: "What is your systolic blood pressure?"
    branches:
      ">= 180": "Hypertensive crisis - Seek emergency care immediately"
      ">= 140": "Hypertension Stage 2 - Discuss medication with a clinician"
      "130-139": "Hypertension Stage 1 - Lifestyle changes and possible medication"
      "120-129": "Elevated blood pressure - Adopt heart-healthy lifestyle"
      "< 120": "Normal blood pressure - Maintain current healthy habits"
`

func TestParseBytes_BloodPressureTree(t *testing.T) {
	root, err := NewParser().ParseBytes([]byte(bloodPressureYAML), "bp.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if !root.IsQuestion() {
		t.Fatalf("root.Kind = %q, want question", root.Kind)
	}
	if root.Question != "What is your diastolic blood pressure?" {
		t.Errorf("Question = %q", root.Question)
	}
	if len(root.Branches) != 2 {
		t.Fatalf("len(Branches) = %d, want 2", len(root.Branches))
	}

	// Branch order must match document order.
	if root.Branches[0].Key.Operator != ">=" {
		t.Errorf("first branch operator = %q, want >=", root.Branches[0].Key.Operator)
	}
	if !root.Branches[0].Child.IsLeaf() {
		t.Errorf("first branch child should be a leaf")
	}

	inner := root.Branches[1].Child
	if !inner.IsQuestion() {
		t.Fatalf("second branch child should be a question node")
	}
	if len(inner.Branches) != 5 {
		t.Fatalf("len(inner.Branches) = %d, want 5", len(inner.Branches))
	}

	wantOrder := []string{">=", ">=", "in", "in", "<"}
	for i, branch := range inner.Branches {
		if branch.Key.Operator != wantOrder[i] {
			t.Errorf("inner branch %d operator = %q, want %q", i, branch.Key.Operator, wantOrder[i])
		}
	}
}

func TestParseBytes_JSONTree(t *testing.T) {
	// JSON is a YAML subset; branch order is still document order.
	doc := `{"question": "loan amount", "branches": {"< 1000": "Approved - small loan", "< 50": "Rejected - too small"}}`

	root, err := NewParser().ParseBytes([]byte(doc), "loan.json")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if len(root.Branches) != 2 {
		t.Fatalf("len(Branches) = %d, want 2", len(root.Branches))
	}
	if root.Branches[0].Key.Reference != 1000 {
		t.Errorf("first branch reference = %v, want 1000", root.Branches[0].Key.Reference)
	}
	if root.Branches[1].Key.Reference != 50 {
		t.Errorf("second branch reference = %v, want 50", root.Branches[1].Key.Reference)
	}
}

func TestParseBytes_BareLeaf(t *testing.T) {
	root, err := NewParser().ParseBytes([]byte(`"Approved - always"`), "leaf.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if !root.IsLeaf() || root.Decision != "Approved - always" {
		t.Errorf("root = %+v, want leaf Approved - always", root)
	}
}

func TestParseBytes_NonStringScalarKey(t *testing.T) {
	doc := `
question: "number of prior visits"
branches:
  0: "New patient - full intake"
  1: "Returning - brief intake"
`
	root, err := NewParser().ParseBytes([]byte(doc), "visits.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	key := root.Branches[0].Key
	if key.Kind != ast.KeyKindLiteral {
		t.Fatalf("Kind = %q, want literal", key.Kind)
	}
	if key.Literal != 0 {
		t.Errorf("Literal = %#v, want 0", key.Literal)
	}
}

func TestParseBytes_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantType dtlErrors.ErrorType
	}{
		{
			name:     "invalid yaml",
			doc:      "question: [unclosed",
			wantType: dtlErrors.ErrorTypeSyntax,
		},
		{
			name:     "missing question",
			doc:      "branches:\n  yes: Done",
			wantType: dtlErrors.ErrorTypeStructural,
		},
		{
			name:     "missing branches",
			doc:      `question: "loan amount"`,
			wantType: dtlErrors.ErrorTypeStructural,
		},
		{
			name:     "unknown field",
			doc:      "question: q\nbranches:\n  yes: Done\nextra: 1",
			wantType: dtlErrors.ErrorTypeStructural,
		},
		{
			name:     "sequence node",
			doc:      "- a\n- b",
			wantType: dtlErrors.ErrorTypeStructural,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseBytes([]byte(tt.doc), "bad.yaml")
			if err == nil {
				t.Fatal("ParseBytes() succeeded, want error")
			}
			dtlErr, ok := err.(*dtlErrors.Error)
			if !ok {
				t.Fatalf("error type = %T, want *dtlErrors.Error", err)
			}
			if dtlErr.Type != tt.wantType {
				t.Errorf("error.Type = %q, want %q", dtlErr.Type, tt.wantType)
			}
		})
	}
}

func TestParseBytes_DepthLimit(t *testing.T) {
	// Nest question nodes six levels deep, deeper than the limit below.
	doc := "Done"
	for i := 5; i >= 0; i-- {
		doc = fmt.Sprintf("{question: q%d, branches: {yes: %s}}", i, doc)
	}

	_, err := NewParser().WithMaxDepth(3).ParseBytes([]byte(doc), "deep.yaml")
	if err == nil {
		t.Fatal("ParseBytes() succeeded, want depth error")
	}
	if !strings.Contains(err.Error(), "maximum depth") {
		t.Errorf("error = %v, want depth message", err)
	}
}

func TestParse_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bp.yaml")
	if err := os.WriteFile(path, []byte(bloodPressureYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root.Location.File != path {
		t.Errorf("Location.File = %q, want %q", root.Location.File, path)
	}
	if root.Location.Line == 0 {
		t.Error("Location.Line = 0, want line number from source")
	}
}

func TestParse_FileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.yaml")
	if err := os.WriteFile(path, []byte(bloodPressureYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewParser().WithMaxFileSize(8).Parse(path)
	if err == nil {
		t.Fatal("Parse() succeeded, want size error")
	}
	if dtlErr, ok := err.(*dtlErrors.Error); !ok || dtlErr.Type != dtlErrors.ErrorTypeIO {
		t.Errorf("error = %v, want io error", err)
	}
}
