package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ResourcesPath points at a directory of .hcl resource definitions.
	ResourcesPath string

	// DatabaseDSN selects the postgres record store when non-empty; the
	// in-memory store is used otherwise.
	DatabaseDSN string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Watch reloads resource definitions when their files change.
	Watch bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ResourcesPath == "" {
		return nil, errors.New("ResourcesPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
