// Package config loads runtime configuration for the uplift HTTP server.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the settings for `uplift serve`.
type Config struct {
	ListenAddr  string `yaml:"listen_addr" env:"UPLIFT_LISTEN_ADDR" env-default:"127.0.0.1:8390"`
	DBPath      string `yaml:"db_path" env:"UPLIFT_DB_PATH" env-default:""`
	CatalogPath string `yaml:"catalog_path" env:"UPLIFT_CATALOG_PATH" env-default:""`
	LogLevel    string `yaml:"log_level" env:"UPLIFT_LOG_LEVEL" env-default:"info"`
	EnableWAL   bool   `yaml:"enable_wal" env:"UPLIFT_ENABLE_WAL" env-default:"true"`
	SyncMode    string `yaml:"sync_mode" env:"UPLIFT_SYNC_MODE" env-default:"FULL"`
}

// Validate checks field values that cleanenv cannot express.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The YAML file path comes from
// UPLIFT_CONFIG_PATH (fallback "./uplift.yaml"); a missing implicit file
// means ENV + defaults only.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("UPLIFT_CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./uplift.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
