package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/reveal"
	"github.com/systmms/envlens/tests/testutil"
)

var decrypted = map[string]string{
	"DOTENV_PUBLIC_KEY": "03f8b3a0e1c1",
	"DB_PASS":           "s3cr3t",
	"HELLO":             "world",
}

func TestShowCommand_RevealsInline(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(p *config.Preferences) { p.EnableAutoReveal = true })
	path := sampleFile(t)
	h.exec.AddJSONResponse(bin+" get -f "+path, decrypted)

	out, err := execute(t, NewShowCommand(h.cfg), "", path)
	require.NoError(t, err)

	assert.Contains(t, out, `DB_PASS="s3cr3t"`)
	assert.Contains(t, out, `HELLO="world"`)
	assert.Contains(t, out, "PLAIN=visible")
	assert.Contains(t, out, `DOTENV_PUBLIC_KEY="03f8b3a0e1c1"`)
	assert.NotContains(t, out, "encrypted:")
	assert.Equal(t, []string{"get -f " + path}, h.dotenvxArgs())
}

func TestShowCommand_HiddenByDefault(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := sampleFile(t)

	out, err := execute(t, NewShowCommand(h.cfg), "", path)
	require.NoError(t, err)

	assert.Equal(t, testutil.SampleDotenv, out)
	assert.Empty(t, h.dotenvxArgs(), "hidden secrets are never fetched")
	assert.Contains(t, h.logs.GetOutput(), "Secrets are hidden")
}

func TestShowCommand_RevealFlag(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := sampleFile(t)
	h.exec.AddJSONResponse(bin+" get -f "+path, decrypted)

	out, err := execute(t, NewShowCommand(h.cfg), "", path, "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, `DB_PASS="s3cr3t"`)

	assert.False(t, h.prefs(t).EnableAutoReveal, "--reveal does not change settings")
}

func TestShowCommand_Decrypted(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := sampleFile(t)
	h.exec.AddJSONResponse(bin+" get -f "+path, decrypted)

	out, err := execute(t, NewShowCommand(h.cfg), "", path, "--decrypted")
	require.NoError(t, err)

	assert.Contains(t, out, reveal.DecryptedHeader)
	assert.Contains(t, out, "DB_PASS=\"s3cr3t\"\n")
	assert.Contains(t, out, "# .env\n")
}

func TestShowCommand_Diff(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := sampleFile(t)
	h.exec.AddJSONResponse(bin+" get -f "+path, decrypted)

	out, err := execute(t, NewShowCommand(h.cfg), "", path, "--diff")
	require.NoError(t, err)

	assert.Contains(t, out, "- DB_PASS=encrypted:")
	assert.Contains(t, out, `+ DB_PASS="s3cr3t"`)
	assert.NotContains(t, out, "- PLAIN=visible")
}

func TestShowCommand_Failure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(p *config.Preferences) { p.EnableAutoReveal = true })
	path := sampleFile(t)
	h.exec.AddResponse(bin+" get -f "+path, testutil.DotenvxMockResponses{}.MissingPrivateKey(path))

	_, err := execute(t, NewShowCommand(h.cfg), "", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dotenvx error during decoration")
	assert.Contains(t, err.Error(), "MISSING_PRIVATE_KEY")
}

func TestShowCommand_RejectsKeysFile(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := testutil.WriteDotenv(t, ".env.keys", "DOTENV_PRIVATE_KEY=abc\n")

	_, err := execute(t, NewShowCommand(h.cfg), "", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a dotenv file")
}
