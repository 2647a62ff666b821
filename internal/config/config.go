package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"namegen/internal/engine"
)

// DefaultPath is the YAML file read when NAMEGEN_CONFIG is unset.
const DefaultPath = "config.yaml"

// Config holds all configuration for the name server.
// Values come from an optional YAML file; environment variables always win.
type Config struct {
	Env      string `yaml:"env" env:"NAMEGEN_ENV" env-default:"local"`
	BindAddr string `yaml:"bind_addr" env:"NAMEGEN_BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"NAMEGEN_PORT" env-default:"8000"`

	// Source name table. The default expects the full dataset under ./data/;
	// config.example.yaml points at the bundled testdata sample instead.
	DataPath     string `yaml:"data_path" env:"NAMEGEN_DATA_PATH" env-default:"./data/firstnames.csv"`
	DataEncoding string `yaml:"data_encoding" env:"NAMEGEN_DATA_ENCODING" env-default:"utf-8"`

	// Logging. LogFile is optional; when set, logs are written there as well.
	LogLevel string `yaml:"log_level" env:"NAMEGEN_LOG_LEVEL" env-default:"info"`
	LogFile  string `yaml:"log_file" env:"NAMEGEN_LOG_FILE" env-default:""`

	// HTTP
	CORSOrigins     []string      `yaml:"cors_origins" env:"NAMEGEN_CORS_ORIGINS" env-separator:"," env-default:"*"`
	RateLimit       float64       `yaml:"rate_limit" env:"NAMEGEN_RATE_LIMIT" env-default:"0"` // requests/second per client, 0 disables
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"NAMEGEN_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Load reads path (if it exists) with environment variable overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	// The .env file is optional
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("NAMEGEN_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.New("data_path must not be empty")
	}
	if _, err := engine.EncodingByName(c.DataEncoding); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %v", c.ShutdownTimeout)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
