// Package errors provides rich error types for tree file parsing and
// validation. Errors carry a category, source location, and an optional
// suggested fix, and can be accumulated in an ErrorList so a validation
// pass reports every problem in a file at once.
package errors
