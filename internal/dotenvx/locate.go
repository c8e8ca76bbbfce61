package dotenvx

import (
	"os"
	"os/exec"
	"path/filepath"

	dserrors "github.com/systmms/envlens/internal/errors"
)

// Locator finds the dotenvx executable: first on PATH, then (optionally) in
// node_modules/.bin of the start directory or any of its parents.
type Locator struct {
	SearchLocal bool
	// StartDir is where the upward node_modules search begins. Empty means
	// the current working directory.
	StartDir string

	lookPath func(string) (string, error)
}

// NewLocator returns a locator using the real PATH.
func NewLocator(searchLocal bool) *Locator {
	return &Locator{SearchLocal: searchLocal, lookPath: exec.LookPath}
}

// Find returns the path to dotenvx or an error matching ErrToolUnavailable.
func (l *Locator) Find() (string, error) {
	lookPath := l.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath("dotenvx"); err == nil && path != "" {
		return path, nil
	}

	if l.SearchLocal {
		dir := l.StartDir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", dserrors.ErrToolUnavailable
			}
			dir = wd
		}
		if path, ok := findUp(dir, filepath.Join("node_modules", ".bin", "dotenvx")); ok {
			return path, nil
		}
	}

	return "", dserrors.ErrToolUnavailable
}

// SetLookPath replaces the PATH lookup.
func (l *Locator) SetLookPath(fn func(string) (string, error)) {
	l.lookPath = fn
}

func findUp(dir, rel string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
