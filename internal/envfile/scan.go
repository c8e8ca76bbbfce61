// Package envfile locates KEY=VALUE assignments in dotenv source text.
//
// The scanner is deliberately shallow: it does not understand comments,
// multi-line values or shell syntax. Each line yields at most one
// assignment and anything that does not look like an assignment is skipped.
// All functions are pure.
package envfile

import (
	"regexp"
	"strings"

	dserrors "github.com/systmms/envlens/internal/errors"
)

// PublicKeyPrefix marks keys that carry dotenvx public key material. They are
// never secrets.
const PublicKeyPrefix = "DOTENV_PUBLIC_KEY"

// EncryptedPrefix is the marker dotenvx writes in front of ciphertext.
const EncryptedPrefix = "encrypted:"

var (
	assignmentPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z_0-9]*)=(.+)`)
	linePattern       = regexp.MustCompile(`([A-Za-z_][A-Za-z_0-9]*)=(?:['"]?([^'"]+)['"]?)?`)
	keyPattern        = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)
)

// Assignment is a single KEY=VALUE location found by Scan.
//
// Line is 1-based. StartColumn and EndColumn are byte offsets into the line
// delimiting RawValue, with StartColumn < EndColumn <= len(line).
type Assignment struct {
	Key         string
	RawValue    string
	Line        int
	StartColumn int
	EndColumn   int
}

// Scan returns every assignment in source, in line order.
//
// The value span is located with a first-occurrence search of the captured
// value within its line, so a value that also appears earlier on the line
// (for example equal to its own key) is reported at the earlier position.
func Scan(source string) []Assignment {
	var out []Assignment

	for i, line := range strings.Split(source, "\n") {
		line = strings.TrimSuffix(line, "\r")

		m := assignmentPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], m[2]

		start, err := locate(line, value)
		if err != nil {
			continue
		}

		out = append(out, Assignment{
			Key:         key,
			RawValue:    value,
			Line:        i + 1,
			StartColumn: start,
			EndColumn:   start + len(value),
		})
	}

	return out
}

// locate returns the byte offset of the first occurrence of value in line.
// Scan always passes a value captured from line, so the error is unreachable
// there; it guards callers that locate values from elsewhere.
func locate(line, value string) (int, error) {
	start := strings.Index(line, value)
	if start < 0 {
		return 0, dserrors.ErrParseAmbiguity
	}
	return start, nil
}

// LineAssignment is the key and unquoted value of a single line, as used by
// the per-line commands.
type LineAssignment struct {
	Key   string
	Value string
}

// ParseLine extracts the assignment from one editor line. Surrounding
// whitespace and a single layer of quotes around the value are ignored. The
// value is empty for "KEY=".
func ParseLine(line string) (LineAssignment, bool) {
	m := linePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return LineAssignment{}, false
	}
	return LineAssignment{Key: m[1], Value: m[2]}, true
}

// IsPublicKey reports whether key holds public key material.
func IsPublicKey(key string) bool {
	return strings.HasPrefix(key, PublicKeyPrefix)
}

// IsEncryptedValue reports whether an unquoted value is dotenvx ciphertext.
func IsEncryptedValue(value string) bool {
	return len(value) > len(EncryptedPrefix) && strings.HasPrefix(value, EncryptedPrefix)
}

// StartsWithKey reports whether line begins with a character a key can
// start with. Scan and the decrypted view share this rule.
func StartsWithKey(line string) bool {
	if line == "" {
		return false
	}
	c := line[0]
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// ValidKey reports whether key is a well-formed variable name.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// LineAt returns the 1-based line n of source without its line terminator.
func LineAt(source string, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	lines := strings.Split(source, "\n")
	if n > len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[n-1], "\r"), true
}
