package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/systmms/envlens/internal/secure"
	"golang.org/x/term"
)

// ErrEmptyInput is returned when the user enters nothing.
var ErrEmptyInput = errors.New("no value entered")

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReadSecret prompts for a value without echoing it. When in is not a
// terminal the first line is read instead, so values can be piped in.
func ReadSecret(in io.Reader, out io.Writer, prompt string) (*secure.Value, error) {
	if f, ok := in.(*os.File); ok && IsTerminal(f) {
		_, _ = fmt.Fprint(out, prompt)
		data, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out) // newline after entry
		if err != nil {
			return nil, fmt.Errorf("failed to read value: %w", err)
		}
		if len(data) == 0 {
			return nil, ErrEmptyInput
		}
		return secure.NewValue(data), nil
	}
	return readLine(in)
}

func readLine(r io.Reader) (*secure.Value, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read value from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, ErrEmptyInput
	}
	return secure.NewValueFromString(line), nil
}

// ReadLine prompts for one visible line of input.
func ReadLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrEmptyInput
	}
	return line, nil
}
