package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderRegisters(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ObserveRenderDuration("reference", 25*time.Millisecond)
	rec.IncRenderResult("reference", ResultSuccess)
	rec.IncCacheHit("reference")
	rec.IncCacheMiss("reference")
	rec.IncRenderWarnings("reference", 3)
	rec.ObserveBuildDuration(2 * time.Second)
	rec.IncBuildDocOutcome("built")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"docsite_render_duration_seconds",
		"docsite_render_results_total",
		"docsite_render_cache_events_total",
		"docsite_render_warnings_total",
		"docsite_build_duration_seconds",
		"docsite_build_docs_total",
	} {
		require.True(t, names[want], "metric %s not gathered", want)
	}
}

func TestIncRenderWarningsSkipsZero(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.IncRenderWarnings("reference", 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		require.NotEqual(t, "docsite_render_warnings_total", f.GetName())
	}
}

func TestNoopRecorderIsARecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRenderDuration("z", time.Second)
	r.IncBuildDocOutcome("skipped")
}
