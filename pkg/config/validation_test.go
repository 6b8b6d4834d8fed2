package config

import (
	"strings"
	"testing"

	"github.com/marmos91/dittotape/pkg/catalogue"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return GetDefaultConfig()
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig(t)); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Expected error for nil config")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidAPIPort(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := validConfig(t)
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for telemetry enabled without endpoint")
	}
	if !strings.Contains(err.Error(), "Endpoint") {
		t.Errorf("Expected error about telemetry endpoint, got: %v", err)
	}
}

func TestValidate_TelemetrySampleRate(t *testing.T) {
	cfg := validConfig(t)
	cfg.Telemetry.SampleRate = 1.5

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for sample rate out of range")
	}
}

func TestValidate_ProfileTypes(t *testing.T) {
	cfg := validConfig(t)
	cfg.Telemetry.Profiling.ProfileTypes = []string{"cpu", "heap_dump"}

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown profile type")
	}
}

func TestValidate_CatalogueType(t *testing.T) {
	cfg := validConfig(t)
	cfg.Catalogue.Type = catalogue.Type("mysql")

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown catalogue type")
	}
}

func TestValidate_PostgresRequiresHost(t *testing.T) {
	cfg := validConfig(t)
	cfg.Catalogue.Type = catalogue.TypePostgres
	cfg.Catalogue.Postgres.Database = "dittotape"
	cfg.Catalogue.Postgres.User = "dittotape"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for postgres without host")
	}
	if !strings.Contains(err.Error(), "host") {
		t.Errorf("Expected error about postgres host, got: %v", err)
	}
}

func TestValidate_BadgerRequiresPath(t *testing.T) {
	cfg := validConfig(t)
	cfg.Catalogue.Type = catalogue.TypeBadger
	cfg.Catalogue.Badger.Path = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for badger without path")
	}

	cfg.Catalogue.Badger.InMemory = true
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected in-memory badger to be valid, got: %v", err)
	}
}

func TestValidate_RAO(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RAOConfig)
		wantErr bool
	}{
		{"unknown algorithm falls back at mount", func(c *RAOConfig) { c.Algorithm = "fastest" }, false},
		{"legacy options", func(c *RAOConfig) { c.Options = "cost_heuristic_name:cta" }, false},
		{"malformed options", func(c *RAOConfig) { c.Options = "cost_heuristic_name" }, true},
		{"unknown option key", func(c *RAOConfig) { c.Options = "colour:blue" }, true},
		{"unknown cost heuristic", func(c *RAOConfig) { c.CostHeuristic = "greedy" }, true},
		{"unknown estimator", func(c *RAOConfig) { c.FilePositionEstimator = "linear" }, true},
		{"negative weight", func(c *RAOConfig) { c.CostWeights.StepBack = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg.RAO)

			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Fatal("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	for _, level := range []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"} {
		cfg := validConfig(t)
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}
}
