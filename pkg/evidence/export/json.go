package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"arsmedica/dendron/pkg/evidence"
)

// JSONExporter exports evaluation records as a JSON array.
type JSONExporter struct {
	// Pretty enables indented output.
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes the records to w as a JSON array.
func (e *JSONExporter) Export(ctx context.Context, records []*evidence.EvaluationRecord, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return evidence.NewExportError("json", len(records), err)
	}

	encoder := json.NewEncoder(w)
	if e.Pretty {
		encoder.SetIndent("", "  ")
	}

	if records == nil {
		records = []*evidence.EvaluationRecord{}
	}
	if err := encoder.Encode(records); err != nil {
		return evidence.NewExportError("json", len(records), fmt.Errorf("encoding records: %w", err))
	}
	return nil
}

// ExportStream writes records from a channel to w as a JSON array
// without buffering the full result set.
func (e *JSONExporter) ExportStream(ctx context.Context, records <-chan *evidence.EvaluationRecord, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return evidence.NewExportError("json", 0, err)
	}

	count := 0
	for record := range records {
		if err := ctx.Err(); err != nil {
			return evidence.NewExportError("json", count, err)
		}

		if count > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return evidence.NewExportError("json", count, err)
			}
		}
		if e.Pretty {
			if _, err := io.WriteString(w, "\n  "); err != nil {
				return evidence.NewExportError("json", count, err)
			}
		}

		data, err := json.Marshal(record)
		if err != nil {
			return evidence.NewExportError("json", count, fmt.Errorf("encoding record %s: %w", record.ID, err))
		}
		if _, err := w.Write(data); err != nil {
			return evidence.NewExportError("json", count, err)
		}
		count++
	}

	closing := "]"
	if e.Pretty && count > 0 {
		closing = "\n]"
	}
	if _, err := io.WriteString(w, closing+"\n"); err != nil {
		return evidence.NewExportError("json", count, err)
	}
	return nil
}
