// Package logging provides structured logging for decision tree
// evaluation with redaction of sensitive values.
//
// The Logger wraps log/slog with level and format parsing plus a
// Redactor that scrubs personal identifiers (emails, phone numbers,
// dates of birth, national identifiers) from log fields before they
// reach the handler. Evaluation ID and tree name can be carried in a
// context.Context and are attached automatically by the *Context
// logging methods.
package logging
