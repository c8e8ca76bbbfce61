package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/envlens/internal/errors"
)

func TestFileStore_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "nope", SettingsFileName))

	prefs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), prefs)
	assert.False(t, prefs.EnableAutoReveal)
}

func TestFileStore_SaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "envlens", SettingsFileName)
	store := NewFileStore(path)

	prefs := Defaults()
	prefs.EnableAutoReveal = true
	prefs.DotenvxPath = "/opt/dotenvx/bin/dotenvx"
	require.NoError(t, store.Save(prefs))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, prefs, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestParse_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	prefs, err := Parse([]byte("enableAutoReveal: true\nuseKeyring: false\n"))
	require.NoError(t, err)

	assert.True(t, prefs.EnableAutoReveal)
	assert.False(t, prefs.UseKeyring)
	assert.True(t, prefs.DisplayCopyToClipboardButton)
	assert.True(t, prefs.AutoSearchForLocalDotenvxBinary)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	prefs, err := Parse([]byte("   \n"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), prefs)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{
			name:        "syntax error",
			yaml:        "enableAutoReveal: [[[\n",
			errContains: "invalid YAML syntax",
		},
		{
			name:        "wrong type",
			yaml:        "enableAutoReveal: \"sometimes\"\n",
			errContains: "enableAutoReveal",
		},
		{
			name:        "unknown key",
			yaml:        "revealEverything: true\n",
			errContains: "revealEverything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)

			var ce dserrors.ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestPreferences_GetSet(t *testing.T) {
	t.Parallel()

	prefs := Defaults()

	require.NoError(t, prefs.Set(KeyEnableAutoReveal, "true"))
	v, err := prefs.Get(KeyEnableAutoReveal)
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, prefs.Set(KeyDotenvxPath, " /usr/local/bin/dotenvx "))
	v, err = prefs.Get(KeyDotenvxPath)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/dotenvx", v)

	err = prefs.Set(KeyUseKeyring, "maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a boolean")

	_, err = prefs.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestPreferences_Diff(t *testing.T) {
	t.Parallel()

	a := Defaults()
	b := Defaults()
	assert.Empty(t, a.Diff(b))

	b.EnableAutoReveal = true
	b.DotenvxPath = "/bin/dotenvx"
	assert.Equal(t, []string{KeyDotenvxPath, KeyEnableAutoReveal}, a.Diff(b))
}

func TestKeys_AllValidAgainstSchema(t *testing.T) {
	t.Parallel()

	raw := map[string]interface{}{}
	for _, k := range Keys() {
		if k == KeyDotenvxPath {
			raw[k] = "/bin/dotenvx"
			continue
		}
		raw[k] = true
	}
	assert.NoError(t, Validate(raw))
	assert.Len(t, Keys(), 11)
}

func TestConfig_PreferencesOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("dotenvxPath: /from/settings\n"), 0o600))

	cfg := &Config{Path: path}
	prefs, err := cfg.Preferences()
	require.NoError(t, err)
	assert.Equal(t, "/from/settings", prefs.DotenvxPath)

	cfg.DotenvxPath = "/from/flag"
	prefs, err = cfg.Preferences()
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", prefs.DotenvxPath)
}

func TestDefaultSettingsPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "envlens", SettingsFileName), DefaultSettingsPath())
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(Defaults())
	prefs, err := store.Load()
	require.NoError(t, err)
	prefs.EnableAutoReveal = true
	require.NoError(t, store.Save(prefs))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.EnableAutoReveal)
	assert.Equal(t, 1, store.Saves())
}
