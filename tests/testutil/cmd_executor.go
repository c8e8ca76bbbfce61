// Package testutil provides testing utilities for envlens.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MockCommandExecutor provides a configurable mock for the dotenvx CLI.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Responses maps command patterns to their mock responses.
	// Key format: "command arg1 arg2" (space-separated command and args)
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching pattern is found.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no matching response is found.
	StrictMode bool
}

// MockResponse defines the expected output for a mocked command.
type MockResponse struct {
	Stdout   []byte
	Stderr   []byte
	Err      error
	ExitCode int // Used to simulate exit codes when Err is nil
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Env     []string
	Context context.Context
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return m.ExecuteEnv(ctx, nil, name, args...)
}

// ExecuteEnv records env alongside the call and returns the mocked response.
func (m *MockCommandExecutor) ExecuteEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{
		Command: name,
		Args:    args,
		Env:     env,
		Context: ctx,
	})

	key := m.buildKey(name, args)

	// Try exact match first
	if resp, ok := m.Responses[key]; ok {
		return resp.Stdout, resp.Stderr, resp.Err
	}

	// Longest matching prefix wins so "dotenvx get KEY" beats "dotenvx get"
	best := ""
	for pattern := range m.Responses {
		if m.matchesPattern(key, pattern) && len(pattern) > len(best) {
			best = pattern
		}
	}
	if best != "" {
		resp := m.Responses[best]
		return resp.Stdout, resp.Stderr, resp.Err
	}

	if m.DefaultResponse != nil {
		return m.DefaultResponse.Stdout, m.DefaultResponse.Stderr, m.DefaultResponse.Err
	}

	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	return []byte{}, []byte{}, nil
}

// buildKey creates a lookup key from command and arguments.
func (m *MockCommandExecutor) buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// matchesPattern checks if the command key matches a pattern.
// Supports simple prefix matching for flexible response configuration.
func (m *MockCommandExecutor) matchesPattern(key, pattern string) bool {
	if i := strings.Index(pattern, "*"); i >= 0 {
		return strings.HasPrefix(key, pattern[:i])
	}
	return strings.HasPrefix(key, pattern)
}

// AddResponse registers a mock response for a specific command pattern.
func (m *MockCommandExecutor) AddResponse(commandPattern string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandPattern] = response
}

// AddOutput registers a successful response printing stdout.
func (m *MockCommandExecutor) AddOutput(commandPattern string, stdout string) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout: []byte(stdout),
		Stderr: []byte{},
	})
}

// AddJSONResponse registers a successful response printing v as JSON.
func (m *MockCommandExecutor) AddJSONResponse(commandPattern string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mock: cannot marshal response: %v", err))
	}
	m.AddOutput(commandPattern, string(data))
}

// AddErrorResponse adds an error response for a command pattern.
func (m *MockCommandExecutor) AddErrorResponse(commandPattern string, errMsg string, exitCode int) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout:   []byte{},
		Stderr:   []byte(errMsg),
		Err:      fmt.Errorf("exit status %d: %s", exitCode, errMsg),
		ExitCode: exitCode,
	})
}

// GetCalls returns all recorded calls matching the given command name.
func (m *MockCommandExecutor) GetCalls(commandName string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []RecordedCall
	for _, call := range m.RecordedCalls {
		if call.Command == commandName {
			matches = append(matches, call)
		}
	}
	return matches
}

// LastCall returns the most recent call, if any.
func (m *MockCommandExecutor) LastCall() (RecordedCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.RecordedCalls) == 0 {
		return RecordedCall{}, false
	}
	return m.RecordedCalls[len(m.RecordedCalls)-1], true
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// Reset clears all recorded calls and responses.
func (m *MockCommandExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = make(map[string]MockResponse)
	m.RecordedCalls = make([]RecordedCall, 0)
	m.DefaultResponse = nil
}

// AssertCalled verifies that a specific command was called at least once.
func (m *MockCommandExecutor) AssertCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) == 0 {
		t.Error("expected command", commandName, "to be called, but it was not")
		return false
	}
	return true
}

// AssertNotCalled verifies that a specific command was never called.
func (m *MockCommandExecutor) AssertNotCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) > 0 {
		t.Error("expected command", commandName, "to not be called, but it was called", len(calls), "times")
		return false
	}
	return true
}

// AssertCallCount verifies the exact number of times a command was called.
func (m *MockCommandExecutor) AssertCallCount(t interface{ Error(args ...interface{}) }, commandName string, expected int) bool {
	calls := m.GetCalls(commandName)
	if len(calls) != expected {
		t.Error("expected command", commandName, "to be called", expected, "times, but was called", len(calls), "times")
		return false
	}
	return true
}

// DotenvxMockResponses provides pre-configured responses for the dotenvx CLI.
type DotenvxMockResponses struct{}

// Version returns a mock `dotenvx --version` response.
func (DotenvxMockResponses) Version(v string) MockResponse {
	return MockResponse{Stdout: []byte(v + "\n")}
}

// MissingKey returns the failure dotenvx prints for an unknown key.
func (DotenvxMockResponses) MissingKey(key string) MockResponse {
	msg := fmt.Sprintf("[MISSING_KEY] missing %s key\n", key)
	return MockResponse{
		Stderr:   []byte(msg),
		Err:      fmt.Errorf("exit status 1"),
		ExitCode: 1,
	}
}

// MissingPrivateKey returns the failure dotenvx prints when it cannot
// decrypt a file.
func (DotenvxMockResponses) MissingPrivateKey(file string) MockResponse {
	msg := fmt.Sprintf("[MISSING_PRIVATE_KEY] could not decrypt %s using private key 'DOTENV_PRIVATE_KEY=' (.env.keys)\n", file)
	return MockResponse{
		Stderr:   []byte(msg),
		Err:      fmt.Errorf("exit status 1"),
		ExitCode: 1,
	}
}
