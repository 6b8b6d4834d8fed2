package metrics

import "time"

// CatalogueMetrics records catalogue lookups. A nil CatalogueMetrics
// disables recording.
type CatalogueMetrics interface {
	// ObserveOperation records one catalogue operation on a backend.
	ObserveOperation(backend, operation string, duration time.Duration, err error)
}

// NewCatalogueMetrics returns the Prometheus catalogue metrics, or nil when
// metrics are disabled.
func NewCatalogueMetrics() CatalogueMetrics {
	if !IsEnabled() || newCatalogueMetrics == nil {
		return nil
	}
	return newCatalogueMetrics()
}

var newCatalogueMetrics func() CatalogueMetrics

// RegisterCatalogueMetricsConstructor registers the Prometheus constructor.
func RegisterCatalogueMetricsConstructor(constructor func() CatalogueMetrics) {
	newCatalogueMetrics = constructor
}
