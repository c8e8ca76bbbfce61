package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/systmms/envlens/internal/dotenvx"
	"github.com/systmms/envlens/internal/tui"
)

// preview runs change against a scratch copy of file (and its .env.keys)
// and writes a diff of the result to out. file itself is not touched and
// need not exist yet.
func preview(out io.Writer, file string, change func(scratch string) error) error {
	dir, err := os.MkdirTemp("", "envlens-preview-*")
	if err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	scratch := filepath.Join(dir, filepath.Base(file))
	before, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := os.WriteFile(scratch, before, 0o600); err != nil {
			return err
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	keys := filepath.Join(filepath.Dir(file), dotenvx.KeysFileName)
	if data, err := os.ReadFile(keys); err == nil {
		if err := os.WriteFile(filepath.Join(dir, dotenvx.KeysFileName), data, 0o600); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := change(scratch); err != nil {
		return err
	}

	after, err := os.ReadFile(scratch)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "--- %s\n+++ %s (dry run)\n", file, file)
	_, _ = fmt.Fprint(out, tui.RenderDiff(string(before), string(after)))
	return nil
}
