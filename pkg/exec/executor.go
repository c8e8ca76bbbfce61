// Package exec provides abstractions for command execution.
// This package enables testable code by allowing CLI commands to be mocked.
package exec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// CommandExecutor defines an interface for executing shell commands.
// This abstraction allows for mocking CLI tool behavior in tests.
type CommandExecutor interface {
	// Execute runs a command with the given context and arguments.
	// Returns stdout, stderr, and any error that occurred.
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// EnvCommandExecutor is a CommandExecutor that can also run a command with
// additional environment variables (KEY=VALUE) layered over the current
// process environment.
type EnvCommandExecutor interface {
	CommandExecutor
	ExecuteEnv(ctx context.Context, env []string, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor executes actual shell commands using os/exec.
// This is the production implementation.
type RealCommandExecutor struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Execute runs an actual shell command.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return r.ExecuteEnv(ctx, nil, name, args...)
}

// ExecuteEnv runs a command with extra environment variables.
func (r *RealCommandExecutor) ExecuteEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultExecutor returns the standard production executor.
// This is used as the default when no executor is injected.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// ExitCode extracts the process exit code from an Execute error, or -1 when
// the error did not come from a finished process.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
