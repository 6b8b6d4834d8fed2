package config

import (
	"github.com/marmos91/dittotape/pkg/metrics"
)

// InitializeMetrics enables the metrics registry when configured and returns
// the server exposing it. It returns nil when metrics are disabled.
//
// It must run before the catalogue and RAO components are created, since
// they pick up their metrics at construction.
func InitializeMetrics(cfg *Config) *metrics.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}
	metrics.InitRegistry()
	return metrics.NewServer(cfg.Metrics.Port)
}
