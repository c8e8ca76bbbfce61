// Package ui holds the small terminal helpers envlens commands share:
// progress spinners, hidden prompts and clipboard access.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Progress shows a spinner while a dotenvx call runs. When disabled (debug
// output or a non-interactive run) it only prints the final message.
type Progress struct {
	s       *spinner.Spinner
	out     io.Writer
	enabled bool
	final   string
}

// StartProgress starts a spinner with message on out.
func StartProgress(out io.Writer, message string, enabled bool) *Progress {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + message

	// Continue without colour if the terminal does not support it.
	_ = s.Color("cyan")

	p := &Progress{s: s, out: out, enabled: enabled}
	if enabled {
		s.Start()
	}
	return p
}

// Success sets a ✓ final message.
func (p *Progress) Success(format string, args ...interface{}) {
	p.final = color.GreenString("✓") + " " + fmt.Sprintf(format, args...)
}

// Fail sets a ✗ final message.
func (p *Progress) Fail(format string, args ...interface{}) {
	p.final = color.RedString("✗") + " " + fmt.Sprintf(format, args...)
}

// Stop clears the spinner line and prints the final message, if any.
func (p *Progress) Stop() {
	if p.enabled {
		p.s.Stop()
	}
	if p.final != "" {
		_, _ = fmt.Fprint(p.out, EnsureNewline(p.final))
		p.final = ""
	}
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
