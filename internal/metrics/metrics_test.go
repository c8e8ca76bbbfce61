package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := New()
	r.RecordPass(OutcomeApplied, 3)
	r.RecordPass(OutcomeApplied, 2)
	r.RecordPass(OutcomeStale, 0)
	r.RecordToolCall("get", nil, 20*time.Millisecond)
	r.RecordToolCall("get", errors.New("boom"), time.Second)
	r.SetRevealEnabled(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.PassesTotal().WithLabelValues(OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PassesTotal().WithLabelValues(OutcomeStale)))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.PatchesTotal()))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ToolCalls().WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ToolCalls().WithLabelValues("get", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RevealEnabled()))

	r.SetRevealEnabled(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.RevealEnabled()))
}

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.RecordPass(OutcomeFailed, 0)
	r.RecordToolCall("set", nil, time.Millisecond)
	r.SetRevealEnabled(true)
	assert.Nil(t, r.Registry())
}

func TestServer(t *testing.T) {
	t.Parallel()

	r := New()
	r.RecordPass(OutcomeApplied, 1)

	cfg := DefaultServerConfig()
	cfg.Addr = "127.0.0.1:0"
	s := NewServer(cfg, r)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `envlens_decoration_passes_total{outcome="applied"} 1`)
}

func TestServerDisabled(t *testing.T) {
	t.Parallel()

	s := NewServer(ServerConfig{}, New())
	require.NoError(t, s.Start())
	assert.Empty(t, s.Addr())
	assert.NoError(t, s.Stop(context.Background()))
}
