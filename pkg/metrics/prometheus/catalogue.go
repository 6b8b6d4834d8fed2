package prometheus

import (
	"time"

	"github.com/marmos91/dittotape/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// catalogueMetrics is the Prometheus implementation of
// metrics.CatalogueMetrics.
type catalogueMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCatalogueMetrics creates Prometheus catalogue metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called). One
// instance is shared per registry.
func NewCatalogueMetrics() *catalogueMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	instancesMu.Lock()
	defer instancesMu.Unlock()
	if m, ok := instances[instanceKey{reg, "catalogue"}].(*catalogueMetrics); ok {
		return m
	}

	m := &catalogueMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittotape_catalogue_operations_total",
				Help: "Total number of catalogue operations by backend, operation and status",
			},
			[]string{"backend", "operation", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittotape_catalogue_operation_duration_milliseconds",
				Help:    "Duration of catalogue operations in milliseconds",
				Buckets: durationBuckets,
			},
			[]string{"backend", "operation"},
		),
	}
	instances[instanceKey{reg, "catalogue"}] = m
	return m
}

func (m *catalogueMetrics) ObserveOperation(backend, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(backend, operation, metrics.Status(err)).Inc()
	m.duration.WithLabelValues(backend, operation).Observe(milliseconds(duration))
}
