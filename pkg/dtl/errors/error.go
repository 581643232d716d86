package errors

import (
	"fmt"
	"strings"

	"arsmedica/dendron/pkg/dtl/ast"
)

// ErrorType categorizes the type of error encountered during parsing or
// validation of a tree file.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML/JSON syntax error
	ErrorTypeStructural ErrorType = "structural" // Schema violation (missing/invalid fields)
	ErrorTypeValidation ErrorType = "validation" // Tree shape or key validation error
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Error represents a rich error with location and an optional suggestion.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Location   ast.Location // Source location (file, line, column)
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.Location.String()))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// ErrorList accumulates multiple errors instead of failing on the first.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// HasErrors returns true if the list contains at least one error.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Error implements the error interface by joining all errors.
func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return "no errors"
	}
	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors:\n", len(el.Errors)))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ErrOrNil returns the list as an error if it is non-empty, nil otherwise.
func (el *ErrorList) ErrOrNil() error {
	if el.HasErrors() {
		return el
	}
	return nil
}
