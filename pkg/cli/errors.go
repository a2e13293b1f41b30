package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mahi3005/data-alchemist/pkg/engine"
)

// ErrValidationFailed is returned when a report trips the --fail-on gate.
var ErrValidationFailed = errors.New("validation failed")

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// FailOn selects which diagnostics make a command exit non-zero.
type FailOn string

const (
	FailOnError   FailOn = "error"
	FailOnWarning FailOn = "warning"
	FailOnNone    FailOn = "none"
)

// ParseFailOn parses a --fail-on value.
func ParseFailOn(s string) (FailOn, error) {
	switch f := FailOn(strings.ToLower(strings.TrimSpace(s))); f {
	case FailOnError, FailOnWarning, FailOnNone:
		return f, nil
	case "":
		return FailOnError, nil
	default:
		return "", NewConfigError("fail-on", fmt.Sprintf("invalid value %q: must be error, warning or none", s))
	}
}

// Check returns ErrValidationFailed when the report has diagnostics at or
// above the threshold.
func (f FailOn) Check(r *engine.Report) error {
	switch f {
	case FailOnNone:
		return nil
	case FailOnWarning:
		if r.Summary.Errors+r.Summary.Warnings > 0 {
			return fmt.Errorf("%w: %d errors, %d warnings", ErrValidationFailed, r.Summary.Errors, r.Summary.Warnings)
		}
	default:
		if r.Summary.Errors > 0 {
			return fmt.Errorf("%w: %d errors", ErrValidationFailed, r.Summary.Errors)
		}
	}
	return nil
}
