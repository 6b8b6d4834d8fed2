// Package prometheus implements pkg/metrics with client_golang. Import it
// for side effects to register the constructors.
package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/dittotape/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterRAOMetricsConstructor(func() metrics.RAOMetrics {
		if m := NewRAOMetrics(); m != nil {
			return m
		}
		return nil
	})
	metrics.RegisterCatalogueMetricsConstructor(func() metrics.CatalogueMetrics {
		if m := NewCatalogueMetrics(); m != nil {
			return m
		}
		return nil
	})
}

// instances holds one collector set per registry and metrics kind, since
// promauto panics on duplicate registration.
var (
	instancesMu sync.Mutex
	instances   = map[instanceKey]any{}
)

type instanceKey struct {
	reg  *prometheus.Registry
	kind string
}

// durationBuckets covers sub-millisecond SLTF runs up to multi-second
// native queries, in milliseconds.
var durationBuckets = []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000, 30000}

// batchBuckets covers batch sizes from one file to large recalls.
var batchBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}

// raoMetrics is the Prometheus implementation of metrics.RAOMetrics.
type raoMetrics struct {
	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	batchSize       *prometheus.HistogramVec
	stageDuration   *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	nativeQueries   *prometheus.CounterVec
	nativeDuration  prometheus.Histogram
	nativeBatchSize prometheus.Histogram
	resolutions     *prometheus.CounterVec
}

// NewRAOMetrics creates Prometheus RAO metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called). One
// instance is shared per registry.
func NewRAOMetrics() *raoMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	instancesMu.Lock()
	defer instancesMu.Unlock()
	if m, ok := instances[instanceKey{reg, "rao"}].(*raoMetrics); ok {
		return m
	}

	m := &raoMetrics{
		queries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittotape_rao_queries_total",
				Help: "Total number of RAO queries by algorithm and status",
			},
			[]string{"algorithm", "status"},
		),
		queryDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittotape_rao_query_duration_milliseconds",
				Help:    "Duration of RAO queries in milliseconds by algorithm",
				Buckets: durationBuckets,
			},
			[]string{"algorithm"},
		),
		batchSize: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittotape_rao_batch_files",
				Help:    "Number of files per RAO query by algorithm",
				Buckets: batchBuckets,
			},
			[]string{"algorithm"},
		),
		stageDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittotape_rao_stage_duration_milliseconds",
				Help:    "Duration of RAO computation stages in milliseconds",
				Buckets: durationBuckets,
			},
			[]string{"algorithm", "stage"},
		),
		fallbacks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittotape_rao_fallbacks_total",
				Help: "Total number of configured algorithms replaced by linear",
			},
			[]string{"reason"}, // "unknown_algorithm", "native_unavailable"
		),
		nativeQueries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittotape_rao_native_queries_total",
				Help: "Total number of native ordering queries sent to drives",
			},
			[]string{"status"},
		),
		nativeDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dittotape_rao_native_query_duration_milliseconds",
				Help:    "Duration of native ordering queries in milliseconds",
				Buckets: durationBuckets,
			},
		),
		nativeBatchSize: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dittotape_rao_native_query_files",
				Help:    "Number of files per native ordering query",
				Buckets: batchBuckets,
			},
		),
		resolutions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittotape_rao_resolutions_total",
				Help: "Total number of per-mount algorithm resolutions",
			},
			[]string{"algorithm", "status"},
		),
	}
	instances[instanceKey{reg, "rao"}] = m
	return m
}

func (m *raoMetrics) ObserveQuery(algorithm string, files int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(algorithm, metrics.Status(err)).Inc()
	m.queryDuration.WithLabelValues(algorithm).Observe(milliseconds(duration))
	m.batchSize.WithLabelValues(algorithm).Observe(float64(files))
}

func (m *raoMetrics) ObserveStage(algorithm, stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(algorithm, stage).Observe(milliseconds(duration))
}

func (m *raoMetrics) RecordFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *raoMetrics) RecordNativeQuery(files int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.nativeQueries.WithLabelValues(metrics.Status(err)).Inc()
	m.nativeDuration.Observe(milliseconds(duration))
	m.nativeBatchSize.Observe(float64(files))
}

func (m *raoMetrics) RecordResolution(algorithm string, err error) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(algorithm, metrics.Status(err)).Inc()
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
