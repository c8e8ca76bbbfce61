package dotenvx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/envlens/internal/errors"
)

func noPath(string) (string, error) { return "", errors.New("executable file not found in $PATH") }

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
}

func TestLocator_PrefersPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeExecutable(t, filepath.Join(root, "node_modules", ".bin", "dotenvx"))

	l := &Locator{
		SearchLocal: true,
		StartDir:    root,
		lookPath:    func(string) (string, error) { return "/usr/local/bin/dotenvx", nil },
	}

	path, err := l.Find()
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/dotenvx", path)
}

func TestLocator_FindsLocalInstallInParent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	local := filepath.Join(root, "node_modules", ".bin", "dotenvx")
	writeExecutable(t, local)

	nested := filepath.Join(root, "packages", "api")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	l := &Locator{SearchLocal: true, StartDir: nested, lookPath: noPath}

	path, err := l.Find()
	require.NoError(t, err)
	assert.Equal(t, local, path)
}

func TestLocator_LocalSearchDisabled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeExecutable(t, filepath.Join(root, "node_modules", ".bin", "dotenvx"))

	l := &Locator{SearchLocal: false, StartDir: root, lookPath: noPath}

	_, err := l.Find()
	assert.ErrorIs(t, err, dserrors.ErrToolUnavailable)
}

func TestLocator_NotInstalled(t *testing.T) {
	t.Parallel()

	l := &Locator{SearchLocal: true, StartDir: t.TempDir(), lookPath: noPath}

	_, err := l.Find()
	assert.ErrorIs(t, err, dserrors.ErrToolUnavailable)
}
