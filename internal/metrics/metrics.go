// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the application metrics.
type Metrics struct {
	ChecksTotal   *prometheus.CounterVec
	CheckDuration *prometheus.HistogramVec

	ExtractionTotal    *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec

	VerificationTotal    *prometheus.CounterVec
	VerificationDuration *prometheus.HistogramVec

	SweepsTotal    *prometheus.CounterVec
	SweepNewVideos prometheus.Counter

	EventPublishTotal *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsMutex  sync.Mutex
)

// NewMetrics creates the metrics set, registering it with the default
// registry. Repeated calls return the same instance.
func NewMetrics() *Metrics {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if globalMetrics != nil {
		return globalMetrics
	}

	m := &Metrics{
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factcheck_checks_total",
			Help: "Total number of check requests processed",
		}, []string{"platform", "status"}),

		CheckDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factcheck_check_duration_seconds",
			Help:    "End-to-end check duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"platform"}),

		ExtractionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factcheck_extractions_total",
			Help: "Total number of content extraction attempts",
		}, []string{"platform", "status"}),

		ExtractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factcheck_extraction_duration_seconds",
			Help:    "Content extraction duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"platform"}),

		VerificationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factcheck_verifications_total",
			Help: "Total number of verification submissions",
		}, []string{"verdict", "status"}),

		VerificationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factcheck_verification_duration_seconds",
			Help:    "Verification round-trip duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 90, 120, 180},
		}, []string{"platform"}),

		SweepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factcheck_sweeps_total",
			Help: "Total number of watch-list sweeps",
		}, []string{"status"}),

		SweepNewVideos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factcheck_sweep_new_videos_total",
			Help: "Total number of new videos discovered by sweeps",
		}),

		EventPublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factcheck_event_publish_total",
			Help: "Total number of event publish operations",
		}, []string{"event_type", "status"}),
	}

	registerMetrics(m)
	globalMetrics = m

	return m
}

func registerMetrics(m *Metrics) {
	registerOrGet(m.ChecksTotal)
	registerOrGet(m.CheckDuration)
	registerOrGet(m.ExtractionTotal)
	registerOrGet(m.ExtractionDuration)
	registerOrGet(m.VerificationTotal)
	registerOrGet(m.VerificationDuration)
	registerOrGet(m.SweepsTotal)
	registerOrGet(m.SweepNewVideos)
	registerOrGet(m.EventPublishTotal)
}

// registerOrGet registers a metric, keeping the existing collector when one
// with the same name is already registered.
func registerOrGet(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}
