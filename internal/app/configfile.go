package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML rendition of Config. Every field is optional;
// values given on the command line take precedence.
type FileConfig struct {
	ResourcesPath   string `yaml:"resources_path"`
	DatabaseDSN     string `yaml:"database_dsn"`
	LogFormat       string `yaml:"log_format"`
	LogLevel        string `yaml:"log_level"`
	HealthcheckPort int    `yaml:"healthcheck_port"`
	Watch           bool   `yaml:"watch"`
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge fills the zero-valued fields of cfg from the file values.
func (f *FileConfig) Merge(cfg *Config) {
	if cfg.ResourcesPath == "" {
		cfg.ResourcesPath = f.ResourcesPath
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = f.DatabaseDSN
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = f.LogFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = f.LogLevel
	}
	if cfg.HealthcheckPort == 0 {
		cfg.HealthcheckPort = f.HealthcheckPort
	}
	if f.Watch {
		cfg.Watch = true
	}
}
