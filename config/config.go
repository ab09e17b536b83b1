// Package config loads application settings from an optional YAML file,
// with .env and environment variables taking precedence.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings of the analytics application.
type Config struct {
	// DataDir contains the calls/agents/costs source tables.
	DataDir string `yaml:"data_dir"`
	// Environment selects log formatting (local = pretty, else JSON).
	Environment string `yaml:"environment"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Load reads the YAML config at path (skipped when path is empty or the
// file does not exist), then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // loads .env if present

	cfg := &Config{
		DataDir:  "data",
		LogLevel: "info",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}
