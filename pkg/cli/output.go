package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is human-readable text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// EvaluationView is the printable shape of one evaluation outcome.
type EvaluationView struct {
	Tree           string        `json:"tree"`
	TreeVersion    string        `json:"tree_version,omitempty"`
	Decision       string        `json:"decision"`
	Reason         string        `json:"reason,omitempty"`
	PathTaken      []string      `json:"path_taken"`
	EvaluationTime time.Duration `json:"evaluation_time_ns"`
}

// ValidationIssueView is one validation finding for display.
type ValidationIssueView struct {
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Location   string `json:"location,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationView is the printable shape of a validation run over one
// tree file.
type ValidationView struct {
	File   string                `json:"file"`
	Tree   string                `json:"tree,omitempty"`
	Valid  bool                  `json:"valid"`
	Issues []ValidationIssueView `json:"issues,omitempty"`
}

// Formatter renders command results to a writer.
type Formatter interface {
	FormatEvaluation(w io.Writer, view *EvaluationView) error
	FormatValidation(w io.Writer, views []ValidationView) error
}

// NewFormatter creates a formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{Indent: true}
	}
	return &TextFormatter{}
}

// TextFormatter renders results as human-readable text.
type TextFormatter struct{}

// FormatEvaluation prints the decision, reason and the path the walk
// took, one hop per line.
func (f *TextFormatter) FormatEvaluation(w io.Writer, view *EvaluationView) error {
	fmt.Fprintf(w, "Tree:     %s", view.Tree)
	if view.TreeVersion != "" {
		fmt.Fprintf(w, " (version %s)", view.TreeVersion)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Decision: %s\n", view.Decision)
	if view.Reason != "" {
		fmt.Fprintf(w, "Reason:   %s\n", view.Reason)
	}
	if len(view.PathTaken) > 0 {
		fmt.Fprintln(w, "Path:")
		for i, hop := range view.PathTaken {
			fmt.Fprintf(w, "  %d. %s\n", i+1, hop)
		}
	}
	fmt.Fprintf(w, "Took:     %s\n", view.EvaluationTime)
	return nil
}

// FormatValidation prints per-file validation results with issue
// details and a summary line.
func (f *TextFormatter) FormatValidation(w io.Writer, views []ValidationView) error {
	valid := 0
	for _, v := range views {
		status := "OK"
		if !v.Valid {
			status = "FAIL"
		} else {
			valid++
		}
		name := v.File
		if v.Tree != "" {
			name = fmt.Sprintf("%s (%s)", v.File, v.Tree)
		}
		fmt.Fprintf(w, "%-4s %s\n", status, name)

		for _, issue := range v.Issues {
			line := fmt.Sprintf("  %s: %s", strings.ToUpper(issue.Severity), issue.Message)
			if issue.Location != "" {
				line += " at " + issue.Location
			}
			fmt.Fprintln(w, line)
			if issue.Suggestion != "" {
				fmt.Fprintf(w, "    hint: %s\n", issue.Suggestion)
			}
		}
	}
	fmt.Fprintf(w, "\n%d/%d file(s) valid\n", valid, len(views))
	return nil
}

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) encode(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// FormatEvaluation writes the evaluation outcome as a JSON object.
func (f *JSONFormatter) FormatEvaluation(w io.Writer, view *EvaluationView) error {
	return f.encode(w, view)
}

// FormatValidation writes the validation results as a JSON array.
func (f *JSONFormatter) FormatValidation(w io.Writer, views []ValidationView) error {
	return f.encode(w, views)
}
