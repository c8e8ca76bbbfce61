package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/envlens/internal/logging"
)

// Buffer is a bytes.Buffer that is safe for concurrent writers, such as
// the controller goroutine and a command printing passes.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards everything written so far.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// TestLogger captures the output of a real logging.Logger so tests can
// check what was logged and that secrets were redacted.
//
// Example usage:
//
//	logs := NewTestLogger(t)
//	cfg.Logger = logs.Logger
//	runCommand(cfg)
//	logs.AssertRedacted(t, "password123")
type TestLogger struct {
	*logging.Logger
	out *Buffer
}

// NewTestLogger creates a TestLogger with debug output disabled.
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()
	return NewTestLoggerWithDebug(t, false)
}

// NewTestLoggerWithDebug creates a TestLogger that also captures Debug
// messages when debug is true. Color is always off.
func NewTestLoggerWithDebug(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	out := &Buffer{}
	return &TestLogger{
		Logger: logging.NewWithWriter(out, debug, true),
		out:    out,
	}
}

// GetOutput returns everything logged since creation or the last Clear.
func (l *TestLogger) GetOutput() string {
	return l.out.String()
}

// Clear discards the captured output.
func (l *TestLogger) Clear() {
	l.out.Reset()
}

// Lines returns the captured output split into non-empty lines.
func (l *TestLogger) Lines() []string {
	var lines []string
	for _, line := range strings.Split(l.GetOutput(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// AssertContains asserts that the log output contains substr.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.GetOutput(), substr, "log output should contain %q", substr)
}

// AssertNotContains asserts that the log output does not contain substr.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.GetOutput(), substr, "log output should not contain %q", substr)
}

// AssertRedacted asserts that secretValue was logged only in redacted form.
func (l *TestLogger) AssertRedacted(t *testing.T, secretValue string) {
	t.Helper()
	AssertSecretRedacted(t, l.GetOutput(), secretValue)
}

// AssertEmpty asserts that nothing was logged.
func (l *TestLogger) AssertEmpty(t *testing.T) {
	t.Helper()
	assert.Empty(t, l.GetOutput(), "expected no log output")
}
