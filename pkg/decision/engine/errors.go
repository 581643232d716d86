package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNilTree indicates Lookup was called with a nil tree.
	ErrNilTree = errors.New("tree cannot be nil")
)

// UnsupportedOperatorError indicates a branch key references an operator
// symbol that was never registered. This is a tree-authoring defect, not
// bad input data, so it fails the whole evaluation rather than degrading
// to a structured error result.
type UnsupportedOperatorError struct {
	Symbol string
}

// Error returns the error message.
func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator: %q", e.Symbol)
}

// MaxDepthError indicates a walk descended past the configured depth
// limit. Trees are plain nested structures, so nothing prevents a
// self-referential cycle; the depth guard fails fast instead of looping
// indefinitely.
type MaxDepthError struct {
	Depth int
}

// Error returns the error message.
func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("maximum tree depth %d exceeded (cyclic tree?)", e.Depth)
}
