package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arsmedica/dendron/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dendron",
	Short: "Dendron - deterministic decision tree evaluator",
	Long: `Dendron evaluates ordered decision trees against a set of answers and
produces an explainable outcome: the decision, the reason, and the
exact path the walk took.

Trees are plain YAML or JSON files. They can be loaded from disk or
tracked in a Git repository, hot-reloaded on change, and every
evaluation can be recorded to an evidence store for audit.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var cmdErr *cli.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			os.Exit(cmdErr.ExitCode)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
