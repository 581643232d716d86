package parser

import (
	"regexp"
	"strconv"
	"strings"

	"arsmedica/dendron/pkg/dtl/ast"
)

// rangePattern matches integer range keys like "120-129".
var rangePattern = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

// operatorPrefixes are tried in order; two-character symbols come first
// so ">= 120" is not read as "> =120".
var operatorPrefixes = []string{">=", "<=", "==", "!=", ">", "<"}

// ParseConditionKey converts a string branch key from a tree file into
// a branch key value.
//
// Recognized forms:
//
//	"120-129"          inclusive integer range, becomes `in` membership
//	">= 120", "< 120"  comparison operators (also <=, >, ==, !=)
//	"in a, b, c"       set membership (also not_in)
//	"matches <regex>"  full-string regex match
//
// Anything else falls through to a literal key holding the trimmed
// string, compared by equality.
func ParseConditionKey(s string) ast.BranchKey {
	key := strings.TrimSpace(s)

	// Inclusive integer range, e.g. blood pressure band "120-129".
	if m := rangePattern.FindStringSubmatch(key); m != nil {
		lower, err1 := strconv.Atoi(m[1])
		upper, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && lower <= upper {
			members := make([]interface{}, 0, upper-lower+1)
			for v := lower; v <= upper; v++ {
				members = append(members, v)
			}
			return ast.ConditionKey("in", members)
		}
	}

	for _, op := range operatorPrefixes {
		if strings.HasPrefix(key, op) {
			rest := strings.TrimSpace(key[len(op):])
			if rest != "" {
				return ast.ConditionKey(op, parseScalar(rest))
			}
		}
	}

	if rest, ok := cutPrefix(key, "not_in "); ok {
		return ast.ConditionKey("not_in", parseScalarList(rest))
	}
	if rest, ok := cutPrefix(key, "in "); ok {
		return ast.ConditionKey("in", parseScalarList(rest))
	}
	if rest, ok := cutPrefix(key, "matches "); ok {
		return ast.ConditionKey("matches", strings.TrimSpace(rest))
	}

	// Fallback for unknown format: literal equality.
	return ast.LiteralKey(key)
}

// parseScalar converts a condition key operand to its natural type:
// int, float, bool, or string.
func parseScalar(s string) interface{} {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}

	return strings.Trim(s, `"'`)
}

// parseScalarList converts a comma-separated operand list.
func parseScalarList(s string) []interface{} {
	parts := strings.Split(s, ",")
	members := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			members = append(members, parseScalar(trimmed))
		}
	}
	return members
}

func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
