package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed settings.schema.json
var settingsSchema []byte

// Store persists Preferences.
type Store interface {
	Load() (Preferences, error)
	Save(Preferences) error
}

// FileStore keeps preferences in a YAML file. A missing file reads as
// Defaults().
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads and validates the settings file.
func (s *FileStore) Load() (Preferences, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Preferences{}, dserrors.UserError{
			Message:    "Failed to read settings file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}
	return Parse(data)
}

// Save writes prefs, creating the parent directory if needed. The file is
// replaced atomically so a concurrent Load never sees a partial write.
func (s *FileStore) Save(prefs Preferences) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dserrors.UserError{
			Message:    "Failed to create settings directory",
			Details:    err.Error(),
			Suggestion: "Check permissions on " + dir,
			Err:        err,
		}
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Parse decodes settings YAML on top of Defaults() after validating it
// against the settings schema.
func Parse(data []byte) (Preferences, error) {
	prefs := Defaults()
	if len(strings.TrimSpace(string(data))) == 0 {
		return prefs, nil
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Preferences{}, dserrors.ConfigError{
			Message:    "invalid YAML syntax in settings file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	if err := Validate(raw); err != nil {
		return Preferences{}, err
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, dserrors.ConfigError{
			Message:    "invalid settings file",
			Suggestion: err.Error(),
		}
	}
	return prefs, nil
}

// Validate checks a decoded settings document against the embedded schema.
func Validate(raw map[string]interface{}) error {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal settings for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(settingsSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return dserrors.ConfigError{
			Message:    "settings do not match the schema:\n  - " + strings.Join(errorMessages, "\n  - "),
			Suggestion: "Run 'envlens config show' to see valid settings",
		}
	}
	return nil
}

// MemoryStore keeps preferences in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	prefs Preferences
	saves int
}

// NewMemoryStore returns a store holding prefs.
func NewMemoryStore(prefs Preferences) *MemoryStore {
	return &MemoryStore{prefs: prefs}
}

// Load returns the held preferences.
func (m *MemoryStore) Load() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

// Save replaces the held preferences.
func (m *MemoryStore) Save(prefs Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = prefs
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
