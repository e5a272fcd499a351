package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Archiver holds all configuration for cmd/archiver (spec.md §4.6).
// The capture port range is not configurable; it is fixed in
// internal/capture.
type Archiver struct {
	// WebSocket endpoint
	Port int `yaml:"port"`

	// Reference database (empty = built-in embedded fixtures, per
	// internal/reference.Load)
	ReferenceDir string `yaml:"reference_dir"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)

	// Live-capture retry (spec.md §5 "retried indefinitely with backoff")
	CaptureRetryDelay string `yaml:"capture_retry_delay"` // duration, e.g. "1s"
}

// DefaultArchiver returns Archiver config with sensible defaults.
func DefaultArchiver() Archiver {
	return Archiver{
		Port:              23300,
		ReferenceDir:      "",
		LogLevel:          "info",
		CaptureRetryDelay: "1s",
	}
}

// LoadArchiver loads archiver config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadArchiver(path string) (Archiver, error) {
	cfg := DefaultArchiver()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
