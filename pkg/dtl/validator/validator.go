package validator

import (
	"fmt"

	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/dtl/ast"
	dtlErrors "arsmedica/dendron/pkg/dtl/errors"
)

// Validator checks decision trees for authoring defects before they are
// evaluated: structural problems (missing questions, empty branch sets,
// cycles), operator symbols absent from the registry, and style
// warnings such as leaves without a reason suffix.
type Validator struct {
	registry *engine.Registry
}

// NewValidator creates a validator that checks condition-key operators
// against the given registry. A nil registry uses the process-wide
// default.
func NewValidator(registry *engine.Registry) *Validator {
	if registry == nil {
		registry = engine.DefaultRegistry()
	}
	return &Validator{registry: registry}
}

// Result holds the outcome of a validation pass. Errors make a tree
// unsafe to evaluate; warnings are style findings that do not affect
// evaluation.
type Result struct {
	Errors   []*dtlErrors.Error
	Warnings []*dtlErrors.Error
}

// Valid returns true if no errors were found (warnings allowed).
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// ErrOrNil converts the errors (not warnings) to an error value.
func (r *Result) ErrOrNil() error {
	if len(r.Errors) == 0 {
		return nil
	}
	list := dtlErrors.NewErrorList()
	for _, e := range r.Errors {
		list.Add(e)
	}
	return list
}

// Validate runs all checks on a tree and accumulates every finding
// rather than stopping at the first.
func (v *Validator) Validate(root *ast.Node) *Result {
	result := &Result{}
	if root == nil {
		result.Errors = append(result.Errors, &dtlErrors.Error{
			Type:    dtlErrors.ErrorTypeValidation,
			Message: "Tree is nil",
		})
		return result
	}

	visited := make(map[*ast.Node]bool)
	v.walk(root, visited, result)
	return result
}

// walk validates a node and recurses into its children, tracking
// visited nodes so a cyclic tree is reported instead of looping.
func (v *Validator) walk(node *ast.Node, visited map[*ast.Node]bool, result *Result) {
	if visited[node] {
		result.Errors = append(result.Errors, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeValidation,
			Message:    fmt.Sprintf("Cycle detected: node %q is reachable from itself", nodeLabel(node)),
			Location:   node.Location,
			Suggestion: "Decision trees must be acyclic; remove the back-reference",
		})
		return
	}
	visited[node] = true
	defer delete(visited, node)

	switch node.Kind {
	case ast.NodeKindLeaf:
		v.checkLeaf(node, result)
	case ast.NodeKindQuestion:
		v.checkQuestion(node, result)
		for _, branch := range node.Branches {
			if branch.Child == nil {
				result.Errors = append(result.Errors, &dtlErrors.Error{
					Type:     dtlErrors.ErrorTypeValidation,
					Message:  fmt.Sprintf("Branch %q of question %q has no subtree", branch.Key.String(), node.Question),
					Location: node.Location,
				})
				continue
			}
			v.walk(branch.Child, visited, result)
		}
	default:
		result.Errors = append(result.Errors, &dtlErrors.Error{
			Type:     dtlErrors.ErrorTypeValidation,
			Message:  fmt.Sprintf("Node has invalid kind %q", string(node.Kind)),
			Location: node.Location,
		})
	}
}

func nodeLabel(node *ast.Node) string {
	if node.IsLeaf() {
		return node.Decision
	}
	return node.Question
}
