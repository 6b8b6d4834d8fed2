package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/dittotape/internal/bytesize"
	"github.com/marmos91/dittotape/pkg/api"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/cost"
	"github.com/marmos91/dittotape/pkg/rao/estimator"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyMetricsDefaults(&cfg.Metrics)
	applyAPIDefaults(&cfg.API)
	applyCatalogueDefaults(&cfg.Catalogue)
	applyRAODefaults(&cfg.RAO)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyMetricsDefaults sets the metrics port when metrics are enabled.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAPIDefaults sets planning API server defaults.
func applyAPIDefaults(cfg *api.APIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
}

// applyCatalogueDefaults selects sqlite and fills backend paths.
func applyCatalogueDefaults(cfg *CatalogueConfig) {
	if cfg.Type == "" {
		cfg.Type = catalogue.TypeSQLite
	}

	switch cfg.Type {
	case catalogue.TypeBadger:
		if cfg.Badger.Path == "" && !cfg.Badger.InMemory {
			cfg.Badger.Path = filepath.Join(getDataDir(), "catalogue.badger")
		}
	case catalogue.TypeSQLite, catalogue.TypePostgres:
		db := cfg.Database()
		db.ApplyDefaults()
		cfg.SQLite = db.SQLite
		cfg.Postgres = db.Postgres
	}
}

// applyRAODefaults fills the RAO component names, block size and weights.
// Enabled and EnterpriseEnabled stay nil; their accessors default to true.
func applyRAODefaults(cfg *RAOConfig) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = string(rao.AlgorithmLinear)
	}
	if cfg.CostHeuristic == "" {
		cfg.CostHeuristic = rao.DefaultCostHeuristic
	}
	if cfg.FilePositionEstimator == "" {
		cfg.FilePositionEstimator = rao.DefaultEstimator
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = bytesize.ByteSize(estimator.DefaultBlockSize)
	}
	if cfg.CostWeights.IsZero() {
		cfg.CostWeights = cost.DefaultWeights()
	}
}

// getDataDir returns the directory holding embedded databases, which is the
// configuration directory.
func getDataDir() string {
	if dir := os.Getenv("DITTOTAPE_DATA_DIR"); dir != "" {
		return dir
	}
	return getConfigDir()
}

// GetDefaultConfig returns a Config struct with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Catalogue: CatalogueConfig{
			Type: catalogue.TypeSQLite,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
