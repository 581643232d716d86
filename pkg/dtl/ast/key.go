package ast

import "fmt"

// KeyKind distinguishes the three branch key variants.
type KeyKind string

const (
	// KeyKindPredicate is a named boolean function of the answer value.
	KeyKindPredicate KeyKind = "predicate"

	// KeyKindCondition is an (operator symbol, reference value) pair
	// resolved against the operator registry at evaluation time.
	KeyKindCondition KeyKind = "condition"

	// KeyKindLiteral is a plain value compared by equality.
	KeyKindLiteral KeyKind = "literal"
)

// Predicate is a branch key predicate: a boolean function of the answer
// value for the node's question.
type Predicate func(value interface{}) bool

// BranchKey is the discriminator attached to a branch of a question node.
// It is a tagged union with three variants; only the fields for the active
// Kind are meaningful.
type BranchKey struct {
	Kind KeyKind

	// Predicate variant
	Name      string    // Identifying name, used in path descriptions
	Predicate Predicate // Boolean function of the answer value

	// Condition variant
	Operator  string      // Operator symbol, e.g. "<", ">=", "in"
	Reference interface{} // Right-hand side of the comparison

	// Literal variant
	Literal interface{} // Value compared by equality

	Location Location // Source location
}

// PredicateKey constructs a predicate branch key. The name identifies the
// predicate in path descriptions and validation output.
func PredicateKey(name string, fn Predicate) BranchKey {
	return BranchKey{
		Kind:      KeyKindPredicate,
		Name:      name,
		Predicate: fn,
	}
}

// ConditionKey constructs an (operator, reference) branch key.
func ConditionKey(operator string, reference interface{}) BranchKey {
	return BranchKey{
		Kind:      KeyKindCondition,
		Operator:  operator,
		Reference: reference,
	}
}

// LiteralKey constructs a branch key compared by equality.
func LiteralKey(value interface{}) BranchKey {
	return BranchKey{
		Kind:    KeyKindLiteral,
		Literal: value,
	}
}

// String returns a human-readable representation of the key, used in
// validation messages and duplicate detection.
func (k BranchKey) String() string {
	switch k.Kind {
	case KeyKindPredicate:
		if k.Name != "" {
			return k.Name + "()"
		}
		return "predicate()"
	case KeyKindCondition:
		return fmt.Sprintf("%s %v", k.Operator, k.Reference)
	case KeyKindLiteral:
		return fmt.Sprintf("%v", k.Literal)
	default:
		return fmt.Sprintf("<invalid key kind %q>", string(k.Kind))
	}
}
