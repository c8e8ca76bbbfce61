package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertSecretRedacted verifies that a secret value does not appear in a string.
//
// This is a specialized assertion for security testing. It checks that the
// secret value is not present in the output, and that the [REDACTED] marker
// is present instead.
//
// Example usage:
//
//	output := someOperation()
//	AssertSecretRedacted(t, output, "password123")
func AssertSecretRedacted(t *testing.T, output, secretValue string) {
	t.Helper()

	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in output", secretValue)

	assert.Contains(t, output, "[REDACTED]",
		"Expected [REDACTED] marker when secret is used")
}
