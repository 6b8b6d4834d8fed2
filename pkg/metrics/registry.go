// Package metrics exposes Prometheus metrics for RAO and the catalogue.
//
// Metrics are opt-in: until InitRegistry is called IsEnabled returns false
// and every constructor returns nil. Instrumented components accept a nil
// metrics value and skip recording, so disabled metrics cost nothing.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "dittotape"

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the registry with Go runtime and process collectors.
// Calling it again is a no-op.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	if registry != nil {
		return
	}
	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the registry, nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ResetForTesting drops the registry. Tests only.
func ResetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
}
