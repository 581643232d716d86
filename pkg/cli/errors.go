package cli

import "fmt"

// Exit codes for command failures.
const (
	// ExitUsage is returned for bad flags or arguments.
	ExitUsage = 2
	// ExitValidation is returned when tree validation finds errors.
	ExitValidation = 3
	// ExitEvaluation is returned when an evaluation fails hard.
	ExitEvaluation = 4
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError with exit code 1.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, ExitCode: 1, Err: err}
}

// NewUsageError creates a CommandError for bad flags or arguments.
func NewUsageError(command string, err error) *CommandError {
	return &CommandError{Command: command, ExitCode: ExitUsage, Err: err}
}
