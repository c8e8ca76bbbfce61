// Package metrics exposes Prometheus counters for decoration passes and
// dotenvx invocations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pass outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeCleared = "cleared"
	OutcomeFailed  = "failed"
	OutcomeStale   = "stale"
	OutcomeSkipped = "skipped"
)

// Recorder records envlens metrics. A nil *Recorder is valid and records
// nothing, so components can take one unconditionally.
type Recorder struct {
	registry *prometheus.Registry

	passesTotal   *prometheus.CounterVec
	patchesTotal  prometheus.Counter
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	revealEnabled prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		passesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envlens_decoration_passes_total",
				Help: "Total number of decoration passes by outcome",
			},
			[]string{"outcome"},
		),
		patchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "envlens_patches_rendered_total",
				Help: "Total number of reveal patches rendered",
			},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envlens_dotenvx_calls_total",
				Help: "Total number of dotenvx invocations by subcommand and status",
			},
			[]string{"command", "status"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "envlens_dotenvx_duration_seconds",
				Help:    "Duration of dotenvx invocations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"command"},
		),
		revealEnabled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "envlens_reveal_enabled",
				Help: "Whether secret reveal is enabled (1) or disabled (0)",
			},
		),
	}

	r.registry.MustRegister(r.passesTotal, r.patchesTotal, r.toolCalls, r.toolDuration, r.revealEnabled)
	return r
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordPass records the outcome of one decoration pass and, for applied
// passes, how many patches were drawn.
func (r *Recorder) RecordPass(outcome string, patches int) {
	if r == nil {
		return
	}
	r.passesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeApplied {
		r.patchesTotal.Add(float64(patches))
	}
}

// RecordToolCall records one dotenvx invocation.
func (r *Recorder) RecordToolCall(command string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.toolCalls.WithLabelValues(command, status).Inc()
	r.toolDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// SetRevealEnabled tracks the reveal toggle.
func (r *Recorder) SetRevealEnabled(enabled bool) {
	if r == nil {
		return
	}
	value := 0.0
	if enabled {
		value = 1.0
	}
	r.revealEnabled.Set(value)
}

// PassesTotal returns the pass counter for testing.
func (r *Recorder) PassesTotal() *prometheus.CounterVec {
	return r.passesTotal
}

// ToolCalls returns the dotenvx call counter for testing.
func (r *Recorder) ToolCalls() *prometheus.CounterVec {
	return r.toolCalls
}

// PatchesTotal returns the patch counter for testing.
func (r *Recorder) PatchesTotal() prometheus.Counter {
	return r.patchesTotal
}

// RevealEnabled returns the toggle gauge for testing.
func (r *Recorder) RevealEnabled() prometheus.Gauge {
	return r.revealEnabled
}
