// Package cli provides shared helpers for the dendron command line:
// output formatting for evaluation and validation results, command
// error types with exit codes, signal-aware contexts, and a progress
// reporter for long exports.
package cli
