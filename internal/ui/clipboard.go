package ui

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable means no clipboard utility was found.
var ErrClipboardUnavailable = errors.New("no clipboard available (install xclip, xsel or wl-clipboard)")

// Clipboard receives copied secrets.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// MemoryClipboard keeps the last copied text. Used by tests and headless runs.
type MemoryClipboard struct {
	Text string
}

// WriteAll stores text.
func (m *MemoryClipboard) WriteAll(text string) error {
	m.Text = text
	return nil
}
