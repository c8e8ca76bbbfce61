// Package config holds envlens runtime configuration and the persisted
// user settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/systmms/envlens/internal/logging"
	pkgexec "github.com/systmms/envlens/pkg/exec"
)

// SettingsFileName is the settings file inside the envlens config directory.
const SettingsFileName = "settings.yaml"

// Config holds the runtime configuration
type Config struct {
	// Path is the settings file. Empty means DefaultSettingsPath().
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	// DotenvxPath overrides the dotenvxPath setting for this run.
	DotenvxPath string
	Debug       bool
	NoColor     bool

	// Executor runs dotenvx. Nil means the real executor.
	Executor pkgexec.CommandExecutor
	// Clipboard receives copied secrets. Nil means the system clipboard.
	Clipboard Clipboard
}

// Clipboard is anything secrets can be copied to.
type Clipboard interface {
	WriteAll(text string) error
}

// DefaultSettingsPath returns $XDG_CONFIG_HOME/envlens/settings.yaml,
// falling back to the OS user config directory.
func DefaultSettingsPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "envlens", SettingsFileName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "envlens", SettingsFileName)
	}
	return filepath.Join(".envlens", SettingsFileName)
}

// SettingsPath returns the effective settings file.
func (c *Config) SettingsPath() string {
	if c.Path != "" {
		return c.Path
	}
	return DefaultSettingsPath()
}

// Store returns the settings store for this configuration.
func (c *Config) Store() Store {
	return NewFileStore(c.SettingsPath())
}

// Preferences loads the settings and applies run-level overrides.
func (c *Config) Preferences() (Preferences, error) {
	prefs, err := c.Store().Load()
	if err != nil {
		return Preferences{}, err
	}
	if c.DotenvxPath != "" {
		prefs.DotenvxPath = c.DotenvxPath
	}
	return prefs, nil
}
