package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/dotenvx"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/metrics"
	"github.com/systmms/envlens/internal/ui"
	pkgexec "github.com/systmms/envlens/pkg/exec"
)

const defaultFile = ".env"

// newClient builds a dotenvx client from the persisted settings.
func newClient(cfg *config.Config, prefs config.Preferences, rec *metrics.Recorder) *dotenvx.Client {
	dc := dotenvx.Config{
		BinaryPath:  prefs.DotenvxPath,
		SearchLocal: prefs.AutoSearchForLocalDotenvxBinary,
	}
	if prefs.UseKeyring {
		dc.Keys = dotenvx.NewKeyring()
	}

	executor := cfg.Executor
	if executor == nil {
		executor = pkgexec.DefaultExecutor()
	}
	return dotenvx.NewClientWithExecutor(dc, cfg.Logger, executor).WithMetrics(rec)
}

// loadClient loads settings and returns them with a client.
func loadClient(cfg *config.Config) (config.Preferences, *dotenvx.Client, error) {
	prefs, err := cfg.Preferences()
	if err != nil {
		return config.Preferences{}, nil, err
	}
	return prefs, newClient(cfg, prefs, nil), nil
}

func clipboardFor(cfg *config.Config) config.Clipboard {
	if cfg.Clipboard != nil {
		return cfg.Clipboard
	}
	return ui.SystemClipboard{}
}

// checkDotenvFile validates that path names an existing dotenv file.
func checkDotenvFile(path string) error {
	if !dotenvx.IsSupportedFile(path) {
		return dserrors.UserError{
			Message:    fmt.Sprintf("%s is not a dotenv file", filepath.Base(path)),
			Suggestion: "Pass a file whose name starts with .env (but not .env.keys)",
		}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return dserrors.UserError{
				Message:    fmt.Sprintf("File not found: %s", path),
				Suggestion: "Check the path, or create the file with 'envlens set KEY -f " + path + "'",
				Err:        dserrors.ErrNotFound,
			}
		}
		return err
	}
	return nil
}

// readDotenvFile validates and reads a dotenv file.
func readDotenvFile(path string) (string, error) {
	if err := checkDotenvFile(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func addFileFlag(cmd *cobra.Command, file *string) {
	cmd.Flags().StringVarP(file, "file", "f", defaultFile, "Path to the .env file")
}

// showProgress reports whether spinners should animate on out.
func showProgress(cfg *config.Config, out io.Writer) bool {
	if cfg.Logger != nil && cfg.Logger.DebugEnabled() {
		return false
	}
	f, ok := out.(*os.File)
	return ok && ui.IsTerminal(f)
}

func success(out io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func errNotInteractive(command, alternative string) error {
	return dserrors.UserError{
		Message:    fmt.Sprintf("'%s' needs an interactive terminal", command),
		Suggestion: fmt.Sprintf("Use '%s' instead", alternative),
	}
}
