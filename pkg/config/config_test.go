package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/dittotape/internal/bytesize"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are escape sequences.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `
logging:
  level: "INFO"

catalogue:
  type: sqlite
  sqlite:
    path: "`+yamlSafePath(tmpDir)+`/catalogue.db"

rao:
  algorithm: sltf
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected API port 8080, got %d", cfg.API.Port)
	}
	if cfg.RAO.Algorithm != "sltf" {
		t.Errorf("Expected algorithm 'sltf', got %q", cfg.RAO.Algorithm)
	}
	if !cfg.RAO.IsEnabled() || !cfg.RAO.IsEnterpriseEnabled() {
		t.Error("Expected RAO and enterprise mode to default to enabled")
	}
	if cfg.RAO.BlockSize != 256000 {
		t.Errorf("Expected default block size 256000, got %d", cfg.RAO.BlockSize)
	}
}

func TestLoad_RAOSection(t *testing.T) {
	configPath := writeConfig(t, `
catalogue:
  type: memory

rao:
  enabled: false
  enterprise_enabled: false
  algorithm: random
  options: "cost_heuristic_name:cta"
  block_size: 250Ki
  cost_weights:
    distance: 0.5
    wrap_change: 1
    band_change: 2
    zone_change: 3
    direction_reversal: 4
    step_back: 5

shutdown_timeout: 5s
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Catalogue.Type != catalogue.TypeMemory {
		t.Errorf("Expected memory catalogue, got %q", cfg.Catalogue.Type)
	}
	if cfg.RAO.IsEnabled() {
		t.Error("Expected RAO to be disabled")
	}
	if cfg.RAO.IsEnterpriseEnabled() {
		t.Error("Expected enterprise mode to be disabled")
	}
	if cfg.RAO.BlockSize != bytesize.ByteSize(256000) {
		t.Errorf("Expected block size 250Ki, got %d", cfg.RAO.BlockSize)
	}
	if cfg.RAO.CostWeights.StepBack != 5 || cfg.RAO.CostWeights.Distance != 0.5 {
		t.Errorf("Unexpected cost weights: %+v", cfg.RAO.CostWeights)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown timeout 5s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults when config file is missing, got error: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.RAO.Algorithm != "linear" {
		t.Errorf("Expected default algorithm linear, got %q", cfg.RAO.Algorithm)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "logging:\n  level: [unterminated\n")

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	configPath := writeConfig(t, `
catalogue:
  type: memory
rao:
  options: "colour:blue"
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected validation error for unknown RAO option")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DITTOTAPE_LOGGING_LEVEL", "ERROR")
	t.Setenv("DITTOTAPE_RAO_ALGORITHM", "sltf")

	configPath := writeConfig(t, `
logging:
  level: "INFO"
catalogue:
  type: memory
rao:
  algorithm: linear
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.RAO.Algorithm != "sltf" {
		t.Errorf("Expected algorithm 'sltf' from env var, got %q", cfg.RAO.Algorithm)
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Catalogue.Type = catalogue.TypeMemory
	cfg.RAO.Algorithm = "sltf"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Saved config not found: %v", err)
	}
	if info.Mode().Perm() != 0600 && os.PathSeparator == '/' {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.RAO.Algorithm != "sltf" {
		t.Errorf("Expected algorithm to survive round trip, got %q", loaded.RAO.Algorithm)
	}
	if loaded.RAO.BlockSize != cfg.RAO.BlockSize {
		t.Errorf("Expected block size %d, got %d", cfg.RAO.BlockSize, loaded.RAO.BlockSize)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := GetDefaultConfigPath()
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected config.yaml, got %q", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != "dittotape" {
		t.Errorf("Expected directory name 'dittotape', got %q", filepath.Base(filepath.Dir(path)))
	}
	if DefaultConfigExists() {
		t.Error("Expected no config in a fresh XDG_CONFIG_HOME")
	}
}
