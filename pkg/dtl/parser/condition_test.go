package parser

import (
	"reflect"
	"testing"

	"arsmedica/dendron/pkg/dtl/ast"
)

func TestParseConditionKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantKind ast.KeyKind
		wantOp   string
		wantRef  interface{}
		wantLit  interface{}
	}{
		{
			name:     "greater or equal",
			key:      ">= 120",
			wantKind: ast.KeyKindCondition,
			wantOp:   ">=",
			wantRef:  120,
		},
		{
			name:     "less than no space",
			key:      "<120",
			wantKind: ast.KeyKindCondition,
			wantOp:   "<",
			wantRef:  120,
		},
		{
			name:     "integer range becomes membership",
			key:      "120-129",
			wantKind: ast.KeyKindCondition,
			wantOp:   "in",
			wantRef: []interface{}{
				120, 121, 122, 123, 124, 125, 126, 127, 128, 129,
			},
		},
		{
			name:     "range with spaces",
			key:      "1 - 3",
			wantKind: ast.KeyKindCondition,
			wantOp:   "in",
			wantRef:  []interface{}{1, 2, 3},
		},
		{
			name:     "equality with string operand",
			key:      "== yes",
			wantKind: ast.KeyKindCondition,
			wantOp:   "==",
			wantRef:  "yes",
		},
		{
			name:     "inequality with float operand",
			key:      "!= 36.6",
			wantKind: ast.KeyKindCondition,
			wantOp:   "!=",
			wantRef:  36.6,
		},
		{
			name:     "in list",
			key:      "in mild, moderate, severe",
			wantKind: ast.KeyKindCondition,
			wantOp:   "in",
			wantRef:  []interface{}{"mild", "moderate", "severe"},
		},
		{
			name:     "not_in list of numbers",
			key:      "not_in 1, 2, 3",
			wantKind: ast.KeyKindCondition,
			wantOp:   "not_in",
			wantRef:  []interface{}{1, 2, 3},
		},
		{
			name:     "matches regex",
			key:      `matches [A-Z]\d+`,
			wantKind: ast.KeyKindCondition,
			wantOp:   "matches",
			wantRef:  `[A-Z]\d+`,
		},
		{
			name:     "unknown format falls back to literal",
			key:      "steady",
			wantKind: ast.KeyKindLiteral,
			wantLit:  "steady",
		},
		{
			name:     "literal is trimmed",
			key:      "  yes  ",
			wantKind: ast.KeyKindLiteral,
			wantLit:  "yes",
		},
		{
			name:     "word containing in is not membership",
			key:      "inconclusive",
			wantKind: ast.KeyKindLiteral,
			wantLit:  "inconclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseConditionKey(tt.key)

			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}

			switch tt.wantKind {
			case ast.KeyKindCondition:
				if got.Operator != tt.wantOp {
					t.Errorf("Operator = %q, want %q", got.Operator, tt.wantOp)
				}
				if !reflect.DeepEqual(got.Reference, tt.wantRef) {
					t.Errorf("Reference = %#v, want %#v", got.Reference, tt.wantRef)
				}
			case ast.KeyKindLiteral:
				if !reflect.DeepEqual(got.Literal, tt.wantLit) {
					t.Errorf("Literal = %#v, want %#v", got.Literal, tt.wantLit)
				}
			}
		})
	}
}
