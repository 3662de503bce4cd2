// Package metrics defines observability hooks for the rendering pipeline.
package metrics

import "time"

// ResultLabel enumerates render result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultNotFound ResultLabel = "not_found"
	ResultParse    ResultLabel = "parse_error"
	ResultRender   ResultLabel = "render_error"
	ResultSource   ResultLabel = "source_error"
)

// Recorder defines observability hooks for render and build metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
// The NoopRecorder makes injection optional.
type Recorder interface {
	ObserveRenderDuration(zone string, d time.Duration)
	IncRenderResult(zone string, result ResultLabel)
	IncCacheHit(zone string)
	IncCacheMiss(zone string)
	IncRenderWarnings(zone string, n int)
	ObserveBuildDuration(d time.Duration)
	IncBuildDocOutcome(outcome string) // outcome: built|skipped|failed
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) IncRenderResult(string, ResultLabel)         {}
func (NoopRecorder) IncCacheHit(string)                          {}
func (NoopRecorder) IncCacheMiss(string)                         {}
func (NoopRecorder) IncRenderWarnings(string, int)               {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) IncBuildDocOutcome(string)                   {}
