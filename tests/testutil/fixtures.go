package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleDotenv is a minimal dotenvx-encrypted file.
const SampleDotenv = `#/-------------------[DOTENV_PUBLIC_KEY]--------------------/
#/            public-key encryption for .env files          /
#/----------------------------------------------------------/
DOTENV_PUBLIC_KEY="03f8b3a0e1c1"

# .env
DB_PASS=encrypted:BDqDBibm4wsYqMpCjTQ6BsDHmMadg9K3dAt+Z9HPMfLEIRVz50hmLXPXRuDBXaJi/LwWYEVUNiq0HQQ==
HELLO="encrypted:BE9Y7LKANx77X1pv1HnEoil93fPa5c9rpL/1ps48uaRT9zM8VR6mHx9yM+HktKdsPGIZELuZ7rr2mn1gScsmWitppAgE"
PLAIN=visible
`

// WriteDotenv writes content to name inside a fresh temp directory and
// returns the full path.
//
// Example usage:
//
//	path := WriteDotenv(t, ".env.production", SampleDotenv)
func WriteDotenv(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}
