package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envlens/internal/envfile"
)

const sample = "DB_PASS=encrypted:abc123\nDOTENV_PUBLIC_KEY=xyz\n"

func TestResolveRevealsEncryptedValue(t *testing.T) {
	t.Parallel()

	patches := Plan(sample, Mapping{"DB_PASS": "s3cr3t"})

	require.Len(t, patches, 1)
	assert.Equal(t, Patch{
		Key:            "DB_PASS",
		Plaintext:      "s3cr3t",
		EncryptedToken: "encrypted:abc123",
		Range:          Range{StartLine: 1, StartColumn: 8, EndLine: 1, EndColumn: 24},
	}, patches[0])
}

func TestResolveMissingMapping(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Plan(sample, Mapping{}))
	assert.Empty(t, Plan(sample, nil))
	assert.Empty(t, Plan(sample, Mapping{"DB_PASS": ""}))
}

func TestResolveNeverPatchesPublicKeys(t *testing.T) {
	t.Parallel()

	assignments := []envfile.Assignment{
		{Key: "DOTENV_PUBLIC_KEY", RawValue: "xyz", Line: 1, StartColumn: 18, EndColumn: 21},
		{Key: "DOTENV_PUBLIC_KEY_CI", RawValue: "abc", Line: 2, StartColumn: 21, EndColumn: 24},
		{Key: "TOKEN", RawValue: "encrypted:t", Line: 3, StartColumn: 6, EndColumn: 17},
	}
	mapping := Mapping{
		"DOTENV_PUBLIC_KEY":    "xyz",
		"DOTENV_PUBLIC_KEY_CI": "abc",
		"TOKEN":                "tok",
	}

	patches := Resolve(assignments, mapping)

	require.Len(t, patches, 1)
	assert.Equal(t, "TOKEN", patches[0].Key)
	for _, p := range patches {
		assert.False(t, envfile.IsPublicKey(p.Key))
	}
}

func TestResolvePreservesOrderAndIsPure(t *testing.T) {
	t.Parallel()

	src := "C=encrypted:c\nA=encrypted:a\nSKIP=plain\nB=encrypted:b\n"
	mapping := Mapping{"A": "1", "B": "2", "C": "3"}
	assignments := envfile.Scan(src)

	first := Resolve(assignments, mapping)
	second := Resolve(assignments, mapping)

	assert.Equal(t, first, second)
	keys := make([]string, 0, len(first))
	for _, p := range first {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"C", "A", "B"}, keys)
	assert.Equal(t, Mapping{"A": "1", "B": "2", "C": "3"}, mapping, "mapping must not be mutated")
}

func TestResolvePatchesDoNotOverlap(t *testing.T) {
	t.Parallel()

	src := "A=encrypted:a\nB=encrypted:b\nC=encrypted:c\n"
	patches := Plan(src, Mapping{"A": "1", "B": "2", "C": "3"})

	seen := map[int]bool{}
	for _, p := range patches {
		assert.Equal(t, p.Range.StartLine, p.Range.EndLine)
		assert.False(t, seen[p.Range.StartLine], "two patches on line %d", p.Range.StartLine)
		seen[p.Range.StartLine] = true
	}
}

func TestDecryptedDocument(t *testing.T) {
	t.Parallel()

	src := "#/ header\nDOTENV_PUBLIC_KEY=xyz\n\nDB_PASS=encrypted:abc\nOTHER=plain\n"
	got := DecryptedDocument(src, Mapping{"DB_PASS": "s3cr3t", "OTHER": "plain"})

	want := DecryptedHeader + "\n\n" +
		"#/ header\n" +
		"DOTENV_PUBLIC_KEY=xyz\n" +
		"\n" +
		"DB_PASS=\"s3cr3t\"\n" +
		"OTHER=\"plain\"\n"
	assert.Equal(t, want, got)
}

func TestDecryptedDocumentMatchesScannedKeys(t *testing.T) {
	t.Parallel()

	src := "db_pass=encrypted:abc\n_hidden=encrypted:def\n"
	mapping := Mapping{"db_pass": "s3cr3t", "_hidden": "x"}

	require.Len(t, Plan(src, mapping), 2)
	got := DecryptedDocument(src, mapping)
	assert.Contains(t, got, "db_pass=\"s3cr3t\"\n")
	assert.Contains(t, got, "_hidden=\"x\"\n")
	assert.NotContains(t, got, "encrypted:")
}
