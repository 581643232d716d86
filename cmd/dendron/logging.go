package main

import (
	"log/slog"
	"os"

	"arsmedica/dendron/pkg/telemetry/logging"
)

// newLogger builds the command logger. Logs go to stderr so they never
// mix with formatted command output, and answer values are redacted.
func newLogger() *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:        level,
		Format:       "text",
		RedactValues: true,
		Writer:       os.Stderr,
	})
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return logger.Slog()
}
