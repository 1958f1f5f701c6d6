package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Agent holds all configuration for the pk2agent process: where the PK2
// archive lives, where to extract it, and the network/metrics settings for
// the session engine.
type Agent struct {
	// PK2 archive
	ArchivePath string `yaml:"archive_path"`
	ExtractDir  string `yaml:"extract_dir"`
	ExtractOnStart bool `yaml:"extract_on_start"`

	// Session engine
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Metrics
	MetricsBindAddress string `yaml:"metrics_bind_address"`
	MetricsPort        int    `yaml:"metrics_port"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// DefaultAgent returns Agent config with sensible defaults.
func DefaultAgent() Agent {
	return Agent{
		ArchivePath:        "data/Media.pk2",
		ExtractDir:         "data/extracted",
		ExtractOnStart:     false,
		BindAddress:        "0.0.0.0",
		Port:               8080,
		MetricsBindAddress: "0.0.0.0",
		MetricsPort:        9090,
		LogLevel:           "info",
	}
}

// LoadAgent loads pk2agent config from a YAML file. If the file doesn't
// exist, returns defaults.
func LoadAgent(path string) (Agent, error) {
	cfg := DefaultAgent()

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
