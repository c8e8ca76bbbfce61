package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/tests/testutil"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := sampleFile(t)
	h.exec.AddOutput(bin+" get DB_PASS -f "+path, "s3cr3t\n")
	h.exec.AddJSONResponse(bin+" get -f "+path, decrypted)
	h.exec.AddResponse(bin+" get NOPE -f "+path, testutil.DotenvxMockResponses{}.MissingKey("NOPE"))

	t.Run("raw value", func(t *testing.T) {
		out, err := execute(t, NewGetCommand(h.cfg), "", "DB_PASS", "-f", path)
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, NewGetCommand(h.cfg), "", "DB_PASS", "-f", path, "--json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "DB_PASS", result["key"])
		assert.Equal(t, "s3cr3t", result["value"])
		assert.Equal(t, path, result["file"])
	})

	t.Run("all keys", func(t *testing.T) {
		out, err := execute(t, NewGetCommand(h.cfg), "", "-f", path)
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, decrypted, result)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := execute(t, NewGetCommand(h.cfg), "", "NOPE", "-f", path)
		require.Error(t, err)
		assert.ErrorIs(t, err, dserrors.ErrKeyNotFound)
		assert.Contains(t, err.Error(), "envlens show --decrypted")
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := execute(t, NewGetCommand(h.cfg), "", "1BAD", "-f", path)
		var ce dserrors.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "1BAD", ce.Value)
	})
}

func TestGetCommand_MissingFile(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := execute(t, NewGetCommand(h.cfg), "", "KEY", "-f", t.TempDir()+"/.env")
	require.Error(t, err)
	assert.ErrorIs(t, err, dserrors.ErrNotFound)
	assert.Empty(t, h.dotenvxArgs())
}

func TestGetCommand_ToolUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := sampleFile(t)
	h.exec.AddErrorResponse(bin+" get", "sh: dotenvx: not found", 127)

	_, err := execute(t, NewGetCommand(h.cfg), "", "DB_PASS", "-f", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, dserrors.ErrToolError)
}
