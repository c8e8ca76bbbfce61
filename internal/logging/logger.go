package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	infoMark  = color.New(color.FgGreen)
	warnMark  = color.New(color.FgYellow)
	errorMark = color.New(color.FgRed)
	debugMark = color.New(color.FgCyan)
)

// Logger provides structured logging with redaction support
type Logger struct {
	debug   bool
	noColor bool

	mu  sync.Mutex
	out io.Writer
}

// New creates a new logger instance writing to stderr
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter creates a logger that writes to w instead of stderr.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	if os.Getenv("NO_COLOR") != "" {
		noColor = true
	}
	return &Logger{
		debug:   debug,
		noColor: noColor,
		out:     w,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, false, true)
}

// DebugEnabled reports whether Debug messages are emitted.
func (l *Logger) DebugEnabled() bool {
	return l.debug
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(infoMark, "✓", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(warnMark, "⚠", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(errorMark, "✗", format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit(debugMark, "[DEBUG]", format, args...)
}

func (l *Logger) emit(c *color.Color, mark, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.noColor {
		fmt.Fprintf(l.out, "%s %s\n", mark, msg)
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", c.Sprint(mark), msg)
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces sensitive values in a string with [REDACTED]
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}

// RedactMapping scrubs every plaintext value of a decrypted mapping from s.
func RedactMapping(s string, mapping map[string]string) string {
	values := make([]string, 0, len(mapping))
	for _, v := range mapping {
		values = append(values, v)
	}
	return Redact(s, values)
}
