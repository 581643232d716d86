package engine

import (
	"fmt"

	"arsmedica/dendron/pkg/dtl/ast"
)

// noMatch is returned by selectBranch when no key matched the value.
const noMatch = -1

// selectBranch finds the first branch whose key matches the candidate
// value. Keys are tried in branch order and the first match wins; order
// is semantically significant when keys overlap.
//
// It returns the index of the matched branch (noMatch if none) and a
// human-readable description of the match for the path trace. The only
// error condition is a condition key referencing an unregistered
// operator; operator evaluation failures such as type mismatches are
// treated as non-matches.
func (e *Engine) selectBranch(branches []ast.Branch, value interface{}) (int, string, error) {
	for i, branch := range branches {
		key := branch.Key

		switch key.Kind {
		case ast.KeyKindPredicate:
			if key.Predicate == nil {
				continue
			}
			if key.Predicate(value) {
				return i, fmt.Sprintf("%s(%v)", predicateName(key), value), nil
			}

		case ast.KeyKindCondition:
			fn, err := e.registry.Lookup(key.Operator)
			if err != nil {
				return noMatch, "", err
			}
			matched, err := fn(value, key.Reference)
			if err != nil {
				e.logger.Debug("operator evaluation failed, treating as non-match",
					"operator", key.Operator,
					"reference", key.Reference,
					"value", value,
					"error", err,
				)
				continue
			}
			if matched {
				return i, fmt.Sprintf("%v %s %v", value, key.Operator, key.Reference), nil
			}

		case ast.KeyKindLiteral:
			equal, err := evaluateEqual(value, key.Literal)
			if err == nil && equal {
				return i, fmt.Sprintf("%v == %v", value, key.Literal), nil
			}
		}
	}

	return noMatch, "", nil
}

// predicateName returns the identifying name for a predicate key,
// falling back to a generic label for anonymous predicates.
func predicateName(key ast.BranchKey) string {
	if key.Name != "" {
		return key.Name
	}
	return "predicate"
}
