package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"arsmedica/dendron/pkg/cli"
	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/decision/manager"
	"arsmedica/dendron/pkg/dtl/parser"
	"arsmedica/dendron/pkg/dtl/validator"
	"arsmedica/dendron/pkg/evidence/recorder"
)

var evalFlags struct {
	answers  []string
	format   string
	maxDepth int
}

var evalCmd = &cobra.Command{
	Use:   "eval <tree-file>",
	Short: "Evaluate a decision tree against answers",
	Long: `Evaluate a tree file against a set of answers and print the decision,
the reason, and the path the walk took.

Answers are name=value pairs. The answer name is matched against
question text by keyword: the answer "diastolic_blood_pressure" is
relevant to the question "What is the diastolic blood pressure?".
Values are parsed as YAML scalars, so numbers and booleans keep their
type.

Examples:
  # Evaluate a triage tree
  dendron eval blood_pressure.yaml --answer diastolic_blood_pressure=95

  # Multiple answers, JSON output
  dendron eval loan.yaml --answer loan_amount=500 --answer income=42000 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringArrayVarP(&evalFlags.answers, "answer", "a", nil, "answer as name=value (repeatable)")
	evalCmd.Flags().StringVarP(&evalFlags.format, "format", "f", "text", "output format: text, json")
	evalCmd.Flags().IntVar(&evalFlags.maxDepth, "max-depth", 0, "maximum tree depth to walk (0 = default)")
}

func runEval(cmd *cobra.Command, args []string) error {
	treeFile := args[0]

	format, err := cli.ParseOutputFormat(evalFlags.format)
	if err != nil {
		return cli.NewUsageError("eval", err)
	}

	answers, err := parseAnswers(evalFlags.answers)
	if err != nil {
		return cli.NewUsageError("eval", err)
	}

	logger := newLogger()

	root, err := parser.NewParser().Parse(treeFile)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	registry := engine.DefaultRegistry()
	result := validator.NewValidator(registry).Validate(root)
	if !result.Valid() {
		fmt.Fprintln(os.Stderr, "tree failed validation:")
		for _, issue := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", issue)
		}
		return &cli.CommandError{
			Command:  "eval",
			ExitCode: cli.ExitValidation,
			Err:      fmt.Errorf("%d validation error(s) in %s", len(result.Errors), treeFile),
		}
	}

	engineConfig := engine.DefaultConfig()
	if evalFlags.maxDepth > 0 {
		engineConfig.MaxDepth = evalFlags.maxDepth
	}
	eng := engine.New(registry, logger, engineConfig)

	rec, err := newEvalRecorder(logger)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	outcome, evalErr := eng.Lookup(cmd.Context(), root, answers)
	if rec != nil {
		rec.RecordEvaluation(cmd.Context(), manager.TreeName(treeFile), answers, outcome, evalErr)
		rec.Close()
	}
	if evalErr != nil {
		return &cli.CommandError{
			Command:  "eval",
			ExitCode: cli.ExitEvaluation,
			Err:      evalErr,
		}
	}

	view := &cli.EvaluationView{
		Tree:           manager.TreeName(treeFile),
		Decision:       outcome.Decision,
		Reason:         outcome.Reason,
		PathTaken:      outcome.PathTaken,
		EvaluationTime: outcome.EvaluationTime,
	}
	return cli.NewFormatter(format).FormatEvaluation(os.Stdout, view)
}

// newEvalRecorder opens the configured evidence store and returns a
// recorder for it. Recording requires an explicit --config so a bare
// eval never creates a database as a side effect; returns nil when no
// config is given or evidence is disabled.
func newEvalRecorder(logger *slog.Logger) (*recorder.Recorder, error) {
	if cfgFile == "" {
		return nil, nil
	}
	cfg, err := loadCommandConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Evidence.Enabled {
		return nil, nil
	}

	store, err := openEvidenceStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening evidence storage: %w", err)
	}

	rec := recorder.NewRecorder(store, &recorder.Config{
		Enabled:        true,
		AsyncBuffer:    cfg.Evidence.Recorder.AsyncBuffer,
		WriteTimeout:   cfg.Evidence.Recorder.WriteTimeout,
		RedactAnswers:  cfg.Evidence.Recorder.RedactAnswers,
		MaxFieldLength: cfg.Evidence.Recorder.MaxFieldLength,
	})
	logger.Debug("evidence recording enabled", "backend", cfg.Evidence.Backend)
	return rec, nil
}

// parseAnswers converts name=value flags to typed answers. Values go
// through the YAML scalar parser so "95" is an int and "true" a bool.
func parseAnswers(pairs []string) (engine.Answers, error) {
	answers := make(engine.Answers, 0, len(pairs))
	for _, pair := range pairs {
		name, raw, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid answer %q (want name=value)", pair)
		}

		var value interface{}
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		if value == nil {
			value = ""
		}

		answers = append(answers, engine.Answer{Name: name, Value: value})
	}
	return answers, nil
}
