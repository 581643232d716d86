package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"arsmedica/dendron/pkg/cli"
	"arsmedica/dendron/pkg/config"
	"arsmedica/dendron/pkg/decision/engine"
	"arsmedica/dendron/pkg/decision/manager"
	dtlErrors "arsmedica/dendron/pkg/dtl/errors"
	"arsmedica/dendron/pkg/dtl/parser"
	"arsmedica/dendron/pkg/dtl/validator"
)

var validateFlags struct {
	format string
	strict bool
	watch  bool
}

var validateCmd = &cobra.Command{
	Use:   "validate <file-or-directory>...",
	Short: "Validate decision tree files",
	Long: `Parse and validate tree files, reporting syntax errors, structural
problems, and suspicious constructs with source locations.

With --watch the target is loaded through the tree manager and
revalidated whenever a file changes, which is useful while authoring
trees. Press Ctrl-C to stop.

Examples:
  # Validate a single tree
  dendron validate blood_pressure.yaml

  # Validate a directory, treat warnings as errors
  dendron validate trees/ --strict

  # Revalidate on every change
  dendron validate trees/ --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "output format: text, json")
	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "treat warnings as errors")
	validateCmd.Flags().BoolVarP(&validateFlags.watch, "watch", "w", false, "revalidate when files change")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return cli.NewUsageError("validate", err)
	}

	if validateFlags.watch {
		if len(args) != 1 {
			return cli.NewUsageError("validate", fmt.Errorf("--watch takes exactly one file or directory"))
		}
		return watchValidate(cmd.Context(), args[0])
	}

	files, err := collectTreeFiles(args)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	if len(files) == 0 {
		return cli.NewCommandError("validate", fmt.Errorf("no tree files found in %s", strings.Join(args, ", ")))
	}

	views := make([]cli.ValidationView, 0, len(files))
	failed := 0
	for _, file := range files {
		view := validateFile(file)
		if !view.Valid {
			failed++
		}
		views = append(views, view)
	}

	if err := cli.NewFormatter(format).FormatValidation(os.Stdout, views); err != nil {
		return err
	}
	if failed > 0 {
		return &cli.CommandError{
			Command:  "validate",
			ExitCode: cli.ExitValidation,
			Err:      fmt.Errorf("%d of %d file(s) failed validation", failed, len(files)),
		}
	}
	return nil
}

// validateFile parses and validates one tree file.
func validateFile(path string) cli.ValidationView {
	view := cli.ValidationView{File: path, Tree: manager.TreeName(path)}

	root, err := parser.NewParser().Parse(path)
	if err != nil {
		view.Issues = appendIssues(view.Issues, "error", err)
		return view
	}

	result := validator.NewValidator(engine.DefaultRegistry()).Validate(root)
	for _, e := range result.Errors {
		view.Issues = append(view.Issues, issueView("error", e))
	}
	warnSeverity := "warning"
	if validateFlags.strict {
		warnSeverity = "error"
	}
	for _, w := range result.Warnings {
		view.Issues = append(view.Issues, issueView(warnSeverity, w))
	}

	view.Valid = len(result.Errors) == 0 && (!validateFlags.strict || len(result.Warnings) == 0)
	return view
}

// appendIssues flattens a parse error, which may be a single rich
// error or an accumulated list.
func appendIssues(issues []cli.ValidationIssueView, severity string, err error) []cli.ValidationIssueView {
	switch e := err.(type) {
	case *dtlErrors.ErrorList:
		for _, item := range e.Errors {
			issues = append(issues, issueView(severity, item))
		}
	case *dtlErrors.Error:
		issues = append(issues, issueView(severity, e))
	default:
		issues = append(issues, cli.ValidationIssueView{Severity: severity, Message: err.Error()})
	}
	return issues
}

func issueView(severity string, e *dtlErrors.Error) cli.ValidationIssueView {
	view := cli.ValidationIssueView{
		Severity:   severity,
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
	if e.Location.IsValid() {
		view.Location = e.Location.String()
	}
	return view
}

// collectTreeFiles expands the argument list into tree files.
func collectTreeFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() || strings.HasPrefix(fi.Name(), ".") {
				return nil
			}
			switch filepath.Ext(path) {
			case ".yaml", ".yml", ".json":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// watchValidate loads the target through the tree manager and
// revalidates on every file change until interrupted.
func watchValidate(parent context.Context, target string) error {
	logger := newLogger()

	cfg := &config.TreesConfig{
		Mode:  "file",
		Path:  target,
		Watch: true,
		Validation: config.TreeValidationConfig{
			Enabled: true,
			Strict:  validateFlags.strict,
		},
	}

	mgr, err := manager.NewTreeManager(
		cfg,
		parser.NewParser(),
		validator.NewValidator(engine.DefaultRegistry()),
		engine.New(engine.DefaultRegistry(), logger, engine.DefaultConfig()),
		logger,
	)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	defer mgr.Close()

	if err := mgr.LoadTrees(); err != nil {
		fmt.Fprintf(os.Stderr, "initial load failed: %v\n", err)
	} else {
		fmt.Printf("loaded %d tree(s) from %s\n", len(mgr.GetAllTrees()), target)
	}

	ctx, stop := cli.SignalContext(parent)
	defer stop()

	fmt.Println("watching for changes, press Ctrl-C to stop")
	if err := mgr.Watch(ctx); err != nil && ctx.Err() == nil {
		return cli.NewCommandError("validate", err)
	}
	return nil
}
