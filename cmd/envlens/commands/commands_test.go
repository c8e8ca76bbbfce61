package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/ui"
	"github.com/systmms/envlens/tests/testutil"
	"github.com/zalando/go-keyring"
)

const bin = "/usr/bin/dotenvx"

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

type harness struct {
	cfg  *config.Config
	exec *testutil.MockCommandExecutor
	clip *ui.MemoryClipboard
	logs *testutil.TestLogger
}

// newHarness returns a config with a mocked dotenvx and the keychain turned
// off in settings. prefs, when given, adjust the saved settings.
func newHarness(t *testing.T, prefs ...func(*config.Preferences)) *harness {
	t.Helper()

	settings := filepath.Join(t.TempDir(), "settings.yaml")
	p := config.Defaults()
	p.UseKeyring = false
	for _, fn := range prefs {
		fn(&p)
	}
	require.NoError(t, config.NewFileStore(settings).Save(p))

	h := &harness{
		exec: testutil.NewMockCommandExecutor(),
		clip: &ui.MemoryClipboard{},
		logs: testutil.NewTestLogger(t),
	}
	h.cfg = &config.Config{
		Path:        settings,
		Logger:      h.logs.Logger,
		DotenvxPath: bin,
		Executor:    h.exec,
		Clipboard:   h.clip,
	}
	return h
}

// dotenvxArgs returns the argument lists dotenvx was called with.
func (h *harness) dotenvxArgs() []string {
	var out []string
	for _, c := range h.exec.GetCalls(bin) {
		out = append(out, strings.Join(c.Args, " "))
	}
	return out
}

func (h *harness) prefs(t *testing.T) config.Preferences {
	t.Helper()
	p, err := h.cfg.Store().Load()
	require.NoError(t, err)
	return p
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return out.String(), err
}

func sampleFile(t *testing.T) string {
	t.Helper()
	return testutil.WriteDotenv(t, ".env", testutil.SampleDotenv)
}
