package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the monitor.
type Metrics struct {
	EvaluationsTotal   prometheus.Counter
	EvaluationDuration prometheus.Histogram
	MonitorRunning     prometheus.Gauge

	// Fetch metrics.
	FetchFailures  *prometheus.CounterVec // labels: source={catalog,kp}
	FallbacksTotal *prometheus.CounterVec // labels: source={catalog,kp}
	CacheHits      *prometheus.CounterVec // labels: source={catalog,kp}
	CacheMisses    *prometheus.CounterVec // labels: source={catalog,kp}

	// Latest indicator values, exported for dashboarding.
	CurrentEII        prometheus.Gauge
	CurrentCCI        prometheus.Gauge
	CurrentKp         prometheus.Gauge
	CurrentEventCount prometheus.Gauge

	// Bundle publishing metrics.
	BundlesPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all monitor metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.MonitorRunning,
		m.FetchFailures,
		m.FallbacksTotal,
		m.CacheHits,
		m.CacheMisses,
		m.CurrentEII,
		m.CurrentCCI,
		m.CurrentKp,
		m.CurrentEventCount,
		m.BundlesPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EvaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supt_monitor",
			Name:      "evaluations_total",
			Help:      "Total completed evaluation cycles.",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supt_monitor",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-compute-classify cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supt_monitor",
			Name:      "running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supt_monitor",
			Name:      "fetch_failures_total",
			Help:      "Failed remote fetches by source.",
		}, []string{"source"}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supt_monitor",
			Name:      "fallbacks_total",
			Help:      "Evaluations that substituted a fallback input, by source.",
		}, []string{"source"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supt_monitor",
			Name:      "cache_hits_total",
			Help:      "Fetches served from the TTL cache, by source.",
		}, []string{"source"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supt_monitor",
			Name:      "cache_misses_total",
			Help:      "Fetches that had to reach the upstream source, by source.",
		}, []string{"source"}),
		CurrentEII: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supt_monitor",
			Name:      "eii",
			Help:      "Energetic Instability Index from the latest evaluation.",
		}),
		CurrentCCI: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supt_monitor",
			Name:      "cci",
			Help:      "Psi-Depth Coherence Index from the latest evaluation.",
		}),
		CurrentKp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supt_monitor",
			Name:      "kp",
			Help:      "Planetary K-index used by the latest evaluation.",
		}),
		CurrentEventCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supt_monitor",
			Name:      "event_count",
			Help:      "Normalized catalog events in the latest evaluation.",
		}),
		BundlesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supt_monitor",
			Name:      "bundles_published_total",
			Help:      "Metric bundles published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supt_monitor",
			Name:      "publish_errors_total",
			Help:      "Failed bundle publish attempts.",
		}),
	}
}
