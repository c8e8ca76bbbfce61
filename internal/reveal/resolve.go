// Package reveal joins scanned assignments with a decrypted mapping.
package reveal

import (
	"strings"

	"github.com/systmms/envlens/internal/envfile"
)

// Mapping holds decrypted values keyed by variable name, as returned by
// dotenvx for a single file.
type Mapping map[string]string

// Range is a single-line span. Lines are 1-based, columns are byte offsets.
type Range struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Patch describes one value to reveal: the encrypted token at Range should
// be displayed as Plaintext.
type Patch struct {
	Key            string
	Plaintext      string
	EncryptedToken string
	Range          Range
}

// Resolve returns one patch per assignment that has something to reveal,
// preserving input order. Public key lines and keys without a (non-empty)
// decrypted value are skipped. Resolve has no side effects.
func Resolve(assignments []envfile.Assignment, mapping Mapping) []Patch {
	var patches []Patch

	for _, a := range assignments {
		if envfile.IsPublicKey(a.Key) {
			continue
		}
		secret, ok := mapping[a.Key]
		if !ok || secret == "" {
			continue
		}

		patches = append(patches, Patch{
			Key:            a.Key,
			Plaintext:      secret,
			EncryptedToken: a.RawValue,
			Range: Range{
				StartLine:   a.Line,
				StartColumn: a.StartColumn,
				EndLine:     a.Line,
				EndColumn:   a.EndColumn,
			},
		})
	}

	return patches
}

// Plan scans source and resolves it against mapping in one step.
func Plan(source string, mapping Mapping) []Patch {
	return Resolve(envfile.Scan(source), mapping)
}

// DecryptedHeader is the first line of a decrypted document.
const DecryptedHeader = "#/ The secrets in this file have been decrypted by dotenvx"

// DecryptedDocument renders a read-only copy of source where every line
// starting with a variable name that has a decrypted value is replaced by
// KEY="plaintext". Other lines are kept verbatim.
func DecryptedDocument(source string, mapping Mapping) string {
	var b strings.Builder
	b.WriteString(DecryptedHeader)
	b.WriteString("\n\n")

	lines := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
	for _, line := range lines {
		if envfile.StartsWithKey(line) {
			key, _, _ := strings.Cut(line, "=")
			if v := mapping[key]; v != "" {
				b.WriteString(key)
				b.WriteString(`="`)
				b.WriteString(v)
				b.WriteString("\"\n")
				continue
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
