package manager

import (
	"fmt"
	"strings"
)

// LoadError represents an error that occurred during tree loading.
// This includes file system errors like "file not found", "permission denied",
// or errors related to file size limits or encoding validation.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error that caused this load error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load tree file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load tree file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an error that occurred during tree validation.
type ValidationError struct {
	// TreeName is the name of the tree that failed validation
	TreeName string

	// Message describes the validation error
	Message string

	// Cause is the underlying validation error
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.TreeName != "" {
		return fmt.Sprintf("validation error in tree %q: %s", e.TreeName, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// RegistryError represents an error that occurred during registry operations.
type RegistryError struct {
	// TreeName is the name of the tree involved in the error
	TreeName string

	// Operation is the operation that failed (e.g., "register", "replace")
	Operation string

	// Message describes the registry error
	Message string
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.TreeName != "" {
		return fmt.Sprintf("registry error for tree %q during %s: %s", e.TreeName, e.Operation, e.Message)
	}
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// NotFoundError indicates a tree was requested that is not registered.
type NotFoundError struct {
	// TreeName is the requested tree name.
	TreeName string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tree %q not found", e.TreeName)
}

// ErrorList contains multiple errors that occurred during tree operations.
// This is used when loading multiple trees where some may succeed and others fail.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there is one,
// or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
