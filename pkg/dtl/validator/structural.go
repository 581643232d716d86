package validator

import (
	"fmt"
	"strings"

	"arsmedica/dendron/pkg/dtl/ast"
	dtlErrors "arsmedica/dendron/pkg/dtl/errors"
)

// checkQuestion validates a single question node's shape and keys.
func (v *Validator) checkQuestion(node *ast.Node, result *Result) {
	if strings.TrimSpace(node.Question) == "" {
		result.Errors = append(result.Errors, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeValidation,
			Message:    "Question node has empty question text",
			Location:   node.Location,
			Suggestion: "Every question node needs question text for answers to match against",
		})
	}

	if len(node.Branches) == 0 {
		result.Errors = append(result.Errors, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeValidation,
			Message:    fmt.Sprintf("Question %q has no branches", node.Question),
			Location:   node.Location,
			Suggestion: "A question node needs at least one branch; use a leaf for unconditional decisions",
		})
	}

	seen := make(map[string]bool)
	for _, branch := range node.Branches {
		v.checkKey(node, branch.Key, result)

		// Duplicate keys are legal but the second can never match.
		label := branch.Key.String()
		if seen[label] {
			result.Warnings = append(result.Warnings, &dtlErrors.Error{
				Type:       dtlErrors.ErrorTypeValidation,
				Message:    fmt.Sprintf("Duplicate branch key %q on question %q; first match wins, so the later branch is unreachable", label, node.Question),
				Location:   branch.Key.Location,
				Suggestion: "Remove or reorder the duplicate branch",
			})
		}
		seen[label] = true
	}
}

// checkKey validates a branch key against its variant's requirements
// and the operator registry.
func (v *Validator) checkKey(node *ast.Node, key ast.BranchKey, result *Result) {
	switch key.Kind {
	case ast.KeyKindPredicate:
		if key.Predicate == nil {
			result.Errors = append(result.Errors, &dtlErrors.Error{
				Type:     dtlErrors.ErrorTypeValidation,
				Message:  fmt.Sprintf("Predicate key %q on question %q has a nil function", key.String(), node.Question),
				Location: key.Location,
			})
		}
	case ast.KeyKindCondition:
		if _, err := v.registry.Lookup(key.Operator); err != nil {
			result.Errors = append(result.Errors, &dtlErrors.Error{
				Type:       dtlErrors.ErrorTypeValidation,
				Message:    fmt.Sprintf("Unknown operator %q on question %q", key.Operator, node.Question),
				Location:   key.Location,
				Suggestion: fmt.Sprintf("Registered operators: %s", strings.Join(v.registry.Symbols(), ", ")),
			})
		}
	case ast.KeyKindLiteral:
		// Always valid: any value compares by equality.
	default:
		result.Errors = append(result.Errors, &dtlErrors.Error{
			Type:     dtlErrors.ErrorTypeValidation,
			Message:  fmt.Sprintf("Branch key on question %q has invalid kind %q", node.Question, string(key.Kind)),
			Location: key.Location,
		})
	}
}

// checkLeaf lints a leaf's decision text.
func (v *Validator) checkLeaf(node *ast.Node, result *Result) {
	if strings.TrimSpace(node.Decision) == "" {
		result.Errors = append(result.Errors, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeValidation,
			Message:    "Leaf node has empty decision text",
			Location:   node.Location,
			Suggestion: `Leaves carry the decision, e.g. "Approved - small loan"`,
		})
		return
	}

	if !strings.Contains(node.Decision, " - ") {
		result.Warnings = append(result.Warnings, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeValidation,
			Message:    fmt.Sprintf("Leaf %q has no reason; the default reason will be reported", node.Decision),
			Location:   node.Location,
			Suggestion: `Append " - <reason>" to explain the decision`,
		})
	}
}
