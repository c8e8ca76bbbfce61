package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envlens/tests/testutil"
)

func TestDoctorCommand_Healthy(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.exec.AddResponse(bin+" --version", testutil.DotenvxMockResponses{}.Version("1.39.0"))

	out, err := execute(t, NewDoctorCommand(h.cfg), "")
	require.NoError(t, err)

	assert.Contains(t, out, "CHECK")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, bin)
	assert.Contains(t, out, "1.39.0")
	assert.Contains(t, out, "Summary: 3/3 checks passed")
	assert.NotContains(t, out, "keychain", "keychain is not checked when useKeyring is off")
}

func TestDoctorCommand_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.exec.AddResponse(bin+" --version", testutil.DotenvxMockResponses{}.Version("0.44.1"))

	out, err := execute(t, NewDoctorCommand(h.cfg), "")
	require.Error(t, err)
	assert.Contains(t, out, "Unsupported dotenvx version 0.44.1, must be 1.0.0 or higher")
	assert.Contains(t, out, "Summary: 2/3 checks passed")
}

func TestDoctorCommand_File(t *testing.T) {
	testutil.ClearPrivateKeys(t)

	h := newHarness(t)
	h.exec.AddResponse(bin+" --version", testutil.DotenvxMockResponses{}.Version("1.39.0"))
	path := sampleFile(t)

	out, err := execute(t, NewDoctorCommand(h.cfg), "", "-f", path)
	require.NoError(t, err, "a missing private key is a warning")
	assert.Contains(t, out, "no DOTENV_PRIVATE_KEY found")
	assert.Contains(t, out, "Summary: 4/4 checks passed")
}

func TestDoctorCommand_MissingFile(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.exec.AddResponse(bin+" --version", testutil.DotenvxMockResponses{}.Version("1.39.0"))

	out, err := execute(t, NewDoctorCommand(h.cfg), "", "-f", t.TempDir()+"/.env")
	require.Error(t, err)
	assert.Contains(t, out, "File not found")
}
