package engine

import (
	"testing"

	"arsmedica/dendron/pkg/dtl/ast"
)

func TestSelectBranch_Variants(t *testing.T) {
	adult := func(v interface{}) bool {
		n, err := convertToFloat64(v)
		return err == nil && n >= 18
	}

	tests := []struct {
		name     string
		branches []ast.Branch
		value    interface{}
		wantIdx  int
		wantDesc string
	}{
		{
			name: "predicate match includes name and value",
			branches: []ast.Branch{
				{Key: ast.PredicateKey("adult", adult), Child: ast.Leaf("x")},
			},
			value:    21,
			wantIdx:  0,
			wantDesc: "adult(21)",
		},
		{
			name: "condition match",
			branches: []ast.Branch{
				{Key: ast.ConditionKey("<", 1000), Child: ast.Leaf("x")},
			},
			value:    500,
			wantIdx:  0,
			wantDesc: "500 < 1000",
		},
		{
			name: "literal match",
			branches: []ast.Branch{
				{Key: ast.LiteralKey("yes"), Child: ast.Leaf("x")},
			},
			value:    "yes",
			wantIdx:  0,
			wantDesc: "yes == yes",
		},
		{
			name: "no match exhausts all keys",
			branches: []ast.Branch{
				{Key: ast.PredicateKey("adult", adult), Child: ast.Leaf("x")},
				{Key: ast.ConditionKey(">", 100), Child: ast.Leaf("x")},
				{Key: ast.LiteralKey(99), Child: ast.Leaf("x")},
			},
			value:   5,
			wantIdx: noMatch,
		},
		{
			name: "type mismatch is a non-match, later key still tried",
			branches: []ast.Branch{
				{Key: ast.ConditionKey("<", 1000), Child: ast.Leaf("x")},
				{Key: ast.LiteralKey("unknown"), Child: ast.Leaf("y")},
			},
			value:    "unknown",
			wantIdx:  1,
			wantDesc: "unknown == unknown",
		},
	}

	eng := New(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, desc, err := eng.selectBranch(tt.branches, tt.value)
			if err != nil {
				t.Fatalf("selectBranch() error = %v", err)
			}
			if idx != tt.wantIdx {
				t.Errorf("idx = %d, want %d", idx, tt.wantIdx)
			}
			if tt.wantIdx != noMatch && desc != tt.wantDesc {
				t.Errorf("desc = %q, want %q", desc, tt.wantDesc)
			}
		})
	}
}

func TestSelectBranch_UnsupportedOperator(t *testing.T) {
	eng := New(NewRegistry(), nil, nil)

	branches := []ast.Branch{
		{Key: ast.ConditionKey("between", []interface{}{1, 10}), Child: ast.Leaf("x")},
	}

	_, _, err := eng.selectBranch(branches, 5)
	if _, ok := err.(*UnsupportedOperatorError); !ok {
		t.Fatalf("error = %v (%T), want *UnsupportedOperatorError", err, err)
	}
}

func TestSelectBranch_AnonymousPredicateDescription(t *testing.T) {
	eng := New(nil, nil, nil)

	branches := []ast.Branch{
		{Key: ast.PredicateKey("", func(v interface{}) bool { return true }), Child: ast.Leaf("x")},
	}

	_, desc, err := eng.selectBranch(branches, 1)
	if err != nil {
		t.Fatalf("selectBranch() error = %v", err)
	}
	if desc != "predicate(1)" {
		t.Errorf("desc = %q, want predicate(1)", desc)
	}
}
