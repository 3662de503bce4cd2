package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	renderResults  *prom.CounterVec
	cacheEvents    *prom.CounterVec
	renderWarnings *prom.CounterVec
	buildDuration  prom.Histogram
	buildDocs      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a private registry is created when reg is nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docsite",
			Name:      "render_duration_seconds",
			Help:      "Duration of individual page renders",
			Buckets:   prom.DefBuckets,
		}, []string{"zone"}),
		renderResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "render_results_total",
			Help:      "Render outcomes by result category",
		}, []string{"zone", "result"}),
		cacheEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "render_cache_events_total",
			Help:      "Render cache hits and misses",
		}, []string{"zone", "event"}),
		renderWarnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "render_warnings_total",
			Help:      "Non-fatal render degradations (broken links etc.)",
		}, []string{"zone"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docsite",
			Name:      "build_duration_seconds",
			Help:      "Total batch pre-render duration",
			Buckets:   prom.DefBuckets,
		}),
		buildDocs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "build_docs_total",
			Help:      "Batch pre-render per-doc outcomes",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderResults, pr.cacheEvents, pr.renderWarnings, pr.buildDuration, pr.buildDocs)
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(zone string, d time.Duration) {
	p.renderDuration.WithLabelValues(zone).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderResult(zone string, result ResultLabel) {
	p.renderResults.WithLabelValues(zone, string(result)).Inc()
}

func (p *PrometheusRecorder) IncCacheHit(zone string) {
	p.cacheEvents.WithLabelValues(zone, "hit").Inc()
}

func (p *PrometheusRecorder) IncCacheMiss(zone string) {
	p.cacheEvents.WithLabelValues(zone, "miss").Inc()
}

func (p *PrometheusRecorder) IncRenderWarnings(zone string, n int) {
	if n > 0 {
		p.renderWarnings.WithLabelValues(zone).Add(float64(n))
	}
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildDocOutcome(outcome string) {
	p.buildDocs.WithLabelValues(outcome).Inc()
}
