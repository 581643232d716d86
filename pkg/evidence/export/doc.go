// Package export serializes evaluation records for external use.
//
// Two formats are supported: JSON (optionally indented) and CSV with a
// fixed header row. Both exporters offer a buffered Export for record
// slices and an ExportStream that consumes a record channel, pairing
// with the storage backends' QueryStream for large result sets.
package export
