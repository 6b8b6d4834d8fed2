package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/marmos91/dittotape/internal/bytesize"
	"github.com/marmos91/dittotape/pkg/api"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/catalogue/badger"
	gormstore "github.com/marmos91/dittotape/pkg/catalogue/gorm"
	"github.com/marmos91/dittotape/pkg/rao/cost"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the DittoTape configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (DITTOTAPE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// RAO settings are read once when a tape is mounted. Changing the file does
// not affect a mount in progress.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API contains the planning API server configuration
	API api.APIConfig `mapstructure:"api" yaml:"api"`

	// Catalogue selects where media types and tapes are stored
	Catalogue CatalogueConfig `mapstructure:"catalogue" yaml:"catalogue"`

	// RAO configures the recommended access order of each mount
	RAO RAOConfig `mapstructure:"rao" yaml:"rao"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint"`

	// Insecure disables TLS towards the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,profile_type" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// CatalogueConfig selects and configures the catalogue backend.
type CatalogueConfig struct {
	// Type is one of memory, badger, sqlite, postgres
	// Default: sqlite
	Type catalogue.Type `mapstructure:"type" validate:"required,oneof=memory badger sqlite postgres" yaml:"type"`

	// Badger is used when Type is badger
	Badger badger.Config `mapstructure:"badger" yaml:"badger,omitempty"`

	// SQLite is used when Type is sqlite
	SQLite gormstore.SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite,omitempty"`

	// Postgres is used when Type is postgres
	Postgres gormstore.PostgresConfig `mapstructure:"postgres" yaml:"postgres,omitempty"`
}

// Database returns the gorm configuration for the sqlite and postgres types.
func (c *CatalogueConfig) Database() gormstore.Config {
	return gormstore.Config{
		Type:     gormstore.DatabaseType(c.Type),
		SQLite:   c.SQLite,
		Postgres: c.Postgres,
	}
}

// RAOConfig configures the recommended access order.
type RAOConfig struct {
	// Enabled turns RAO on. A disabled mount recalls files in batch order.
	// Default: true
	Enabled *bool `mapstructure:"enabled" yaml:"enabled"`

	// Algorithm is linear, random or sltf. Unknown names fall back to linear
	// with a warning when the tape is mounted.
	// Default: linear
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm"`

	// Options is the legacy key:value list, for example
	// "cost_heuristic_name:cta,filepositionestimator_name:interpolation".
	// Its entries override CostHeuristic and FilePositionEstimator.
	Options string `mapstructure:"options" validate:"rao_options" yaml:"options,omitempty"`

	// EnterpriseEnabled allows the drive to order files itself when it can.
	// Default: true
	EnterpriseEnabled *bool `mapstructure:"enterprise_enabled" yaml:"enterprise_enabled"`

	// CostHeuristic names the SLTF cost heuristic
	// Default: cta
	CostHeuristic string `mapstructure:"cost_heuristic" validate:"omitempty,oneof=cta" yaml:"cost_heuristic"`

	// FilePositionEstimator names the SLTF position estimator
	// Default: interpolation
	FilePositionEstimator string `mapstructure:"file_position_estimator" validate:"omitempty,oneof=interpolation" yaml:"file_position_estimator"`

	// BlockSize is the tape block size used to turn file sizes into blocks
	// Supports human-readable formats: "256000", "250Ki"
	// Default: 256000
	BlockSize bytesize.ByteSize `mapstructure:"block_size" yaml:"block_size"`

	// CostWeights tune the CTA cost heuristic
	CostWeights cost.Weights `mapstructure:"cost_weights" yaml:"cost_weights"`
}

// IsEnabled returns whether RAO is enabled. Defaults to true if not set.
func (c *RAOConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// IsEnterpriseEnabled returns whether native drive ordering is allowed.
// Defaults to true if not set.
func (c *RAOConfig) IsEnterpriseEnabled() bool {
	if c.EnterpriseEnabled == nil {
		return true
	}
	return *c.EnterpriseEnabled
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DITTOTAPE_*)
//  2. Configuration file
//  3. Default values
//
// An empty configPath uses the default location. A missing file yields the
// default configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and explains how to create one when the
// file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  dtape config init\n\n"+
				"Or specify a custom config file:\n"+
				"  dtape <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  dtape config init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := MarshalYAML(cfg)
	if err != nil {
		return err
	}

	// 0600: the file may hold the postgres password.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DITTOTAPE_RAO_ALGORITHM=sltf
	v.SetEnvPrefix("DITTOTAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for ByteSize and
// time.Duration.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and integers to bytesize.ByteSize, so
// config files can use sizes like "250Ki" or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/dittotape, ~/.config/dittotape, or
// the current directory when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittotape")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittotape")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
