package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the secret source adapter and the controller.
var (
	// ErrToolUnavailable means the dotenvx binary could not be located.
	ErrToolUnavailable = errors.New("dotenvx binary not found")
	// ErrToolError means dotenvx ran but exited non-zero or wrote to stderr.
	ErrToolError = errors.New("dotenvx command failed")
	// ErrNotFound means the target .env file does not exist.
	ErrNotFound = errors.New("dotenv file not found")
	// ErrKeyNotFound means the requested key is absent from the file.
	ErrKeyNotFound = errors.New("key not found")
	// ErrParseAmbiguity marks a line whose value token could not be located.
	ErrParseAmbiguity = errors.New("value token could not be located")
	// ErrStaleRequest marks a refresh superseded by a newer one.
	ErrStaleRequest = errors.New("refresh superseded by a newer request")
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError represents a command execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
	Err        error
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e CommandError) Unwrap() error {
	return e.Err
}

// ToolError describes a failed dotenvx invocation. It matches ErrToolError
// under errors.Is.
type ToolError struct {
	Command  string // subcommand, e.g. "get" or "set"
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("dotenvx %s failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if line := firstLine(e.Stderr); line != "" {
		msg += ": " + line
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrToolError) match any *ToolError.
func (e *ToolError) Is(target error) bool {
	return target == ErrToolError
}

// ToolFailure wraps a dotenvx adapter error with a suggestion for the user.
func ToolFailure(operation string, err error) error {
	if err == nil {
		return nil
	}
	return UserError{
		Message:    fmt.Sprintf("dotenvx error during %s", operation),
		Suggestion: toolSuggestion(err),
		Details:    err.Error(),
		Err:        err,
	}
}

// toolSuggestion returns helpful suggestions based on the dotenvx error
func toolSuggestion(err error) string {
	if errors.Is(err, ErrToolUnavailable) {
		return "Install dotenvx globally or in your project (npm i @dotenvx/dotenvx), then try again"
	}
	if errors.Is(err, ErrNotFound) {
		return "Check the .env file path"
	}
	if errors.Is(err, ErrKeyNotFound) {
		return "List the keys in the file with 'envlens show --decrypted'"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "private key"), strings.Contains(errStr, "dotenv_private_key"):
		return "Make sure .env.keys is next to the file, DOTENV_PRIVATE_KEY is exported, or run 'envlens keys store'"
	case strings.Contains(errStr, "missing"):
		return "Verify the key exists in the file"
	case strings.Contains(errStr, "permission denied"):
		return "Check file permissions on the .env file"
	}
	return ""
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions.
// The result matches ErrToolUnavailable under errors.Is.
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"dotenvx": "Install dotenvx: https://dotenvx.com/docs/install",
		"npx":     "Install Node.js from https://nodejs.org/",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: suggestion,
		Err:        errors.Join(ErrToolUnavailable, err),
	}
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var ue UserError
	if errors.As(err, &ue) {
		return err
	}
	var ce ConfigError
	if errors.As(err, &ce) {
		return err
	}
	var cmdErr CommandError
	if errors.As(err, &cmdErr) {
		return err
	}

	if errors.Is(err, ErrToolUnavailable) || errors.Is(err, ErrToolError) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrKeyNotFound) {
		return ToolFailure("command", err)
	}

	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}
	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	return err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
