package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"arsmedica/dendron/pkg/evidence"
)

// csvHeader is the column layout for CSV exports.
var csvHeader = []string{
	"id",
	"tree_name",
	"tree_version",
	"evaluated_at",
	"recorded_at",
	"answers",
	"answers_hash",
	"decision",
	"reason",
	"path_taken",
	"evaluation_time_ms",
	"error",
	"error_type",
}

// CSVExporter exports evaluation records as CSV rows. Answers are
// serialized as JSON inside their column and the path is joined with
// " | " so each record stays on a single row.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the records to w as CSV with a header row.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.EvaluationRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return evidence.NewExportError("csv", len(records), fmt.Errorf("writing header: %w", err))
	}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return evidence.NewExportError("csv", i, err)
		}

		row, err := recordToRow(record)
		if err != nil {
			return evidence.NewExportError("csv", i, err)
		}
		if err := writer.Write(row); err != nil {
			return evidence.NewExportError("csv", i, fmt.Errorf("writing record %s: %w", record.ID, err))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}
	return nil
}

// ExportStream writes records from a channel to w as CSV rows.
func (e *CSVExporter) ExportStream(ctx context.Context, records <-chan *evidence.EvaluationRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return evidence.NewExportError("csv", 0, fmt.Errorf("writing header: %w", err))
	}

	count := 0
	for record := range records {
		if err := ctx.Err(); err != nil {
			return evidence.NewExportError("csv", count, err)
		}

		row, err := recordToRow(record)
		if err != nil {
			return evidence.NewExportError("csv", count, err)
		}
		if err := writer.Write(row); err != nil {
			return evidence.NewExportError("csv", count, fmt.Errorf("writing record %s: %w", record.ID, err))
		}
		count++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", count, err)
	}
	return nil
}

func recordToRow(record *evidence.EvaluationRecord) ([]string, error) {
	answers := ""
	if record.Answers != nil {
		data, err := json.Marshal(record.Answers)
		if err != nil {
			return nil, fmt.Errorf("encoding answers for record %s: %w", record.ID, err)
		}
		answers = string(data)
	}

	return []string{
		record.ID,
		record.TreeName,
		record.TreeVersion,
		record.EvaluatedAt.Format(time.RFC3339Nano),
		record.RecordedAt.Format(time.RFC3339Nano),
		answers,
		record.AnswersHash,
		record.Decision,
		record.Reason,
		strings.Join(record.PathTaken, " | "),
		strconv.FormatInt(record.EvaluationTime.Milliseconds(), 10),
		record.Error,
		record.ErrorType,
	}, nil
}
