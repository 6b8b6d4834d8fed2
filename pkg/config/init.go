package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# DittoTape Configuration File
#
# Every value below can be overridden with an environment variable named
# after its path, for example DITTOTAPE_RAO_ALGORITHM=sltf.
#
# rao.algorithm: linear, random or sltf. Drives able to order files
# themselves are used instead when rao.enterprise_enabled is true.

`

// InitConfig writes a sample configuration to the default location and
// returns its path. An existing file is kept unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration to path.
func InitConfigToPath(path string, force bool) error {
	return WriteConfig(NewSampleConfig(), path, force)
}

// NewSampleConfig returns the default configuration with the optional
// switches spelled out.
func NewSampleConfig() *Config {
	cfg := GetDefaultConfig()
	enabled := true
	cfg.RAO.Enabled = &enabled
	cfg.RAO.EnterpriseEnabled = &enabled
	cfg.API.Enabled = &enabled
	return cfg
}

// WriteConfig writes cfg to path with the commented header.
func WriteConfig(cfg *Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	data, err := MarshalYAML(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalYAML renders cfg with two-space indentation.
func MarshalYAML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return buf.Bytes(), nil
}
