package testutil

import (
	"os"
	"strings"
	"testing"
)

// ClearPrivateKeys blanks DOTENV_PRIVATE_KEY and every
// DOTENV_PRIVATE_KEY_* variable for the duration of the test, so private
// key lookups only see the keychain and .env.keys.
//
// It uses t.Setenv, so the calling test must not be parallel.
func ClearPrivateKeys(t *testing.T) {
	t.Helper()

	t.Setenv("DOTENV_PRIVATE_KEY", "")
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "DOTENV_PRIVATE_KEY_") {
			t.Setenv(name, "")
		}
	}
}

// SetupTestEnv sets environment variables for the duration of a test.
// The previous values come back when the test completes.
//
// Example usage:
//
//	SetupTestEnv(t, map[string]string{
//	    "DOTENV_PRIVATE_KEY_PRODUCTION": "abc123",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for key, value := range vars {
		t.Setenv(key, value)
	}
}
