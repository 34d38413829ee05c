// Package config loads and validates the askdb configuration: the database
// connection, the Ollama endpoint and model, and the HTTP server settings.
// Values come from a YAML file with ${VAR} expansion; the CLI layers
// ASKDB_* environment variables and flags on top via viper.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level askdb configuration.
type Config struct {
	Database Database `yaml:"database"`
	Ollama   Ollama   `yaml:"ollama"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

// Database holds the connection settings for the target database.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
	Pool   Pool   `yaml:"pool"`
}

// Pool controls the connection pool. Durations are strings ("30m") so the
// YAML stays human-editable.
type Pool struct {
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
}

// Ollama holds the language-model endpoint settings.
type Ollama struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// Server controls the HTTP API server.
type Server struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimit       int      `yaml:"rate_limit_per_minute"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

// Logging controls log output.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns a Config pre-filled with local-development defaults.
// The database DSN and the model have no defaults: both are required.
func Default() *Config {
	return &Config{
		Database: Database{
			Driver: "postgres",
			Pool: Pool{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: "30m",
			},
		},
		Ollama: Ollama{
			BaseURL: "http://localhost:11434",
			Timeout: "90s",
		},
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigins:     []string{"*"},
			RateLimit:       60,
			ShutdownTimeout: "30s",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads a YAML configuration file over the defaults. Environment
// variables referenced as ${VAR_NAME} in the file are expanded before
// parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings without which the agent cannot start.
// A validation failure here is fatal at startup; it is never surfaced as
// a pipeline failure.
func (c *Config) Validate() error {
	if c.Database.Driver == "" {
		return fmt.Errorf("database.driver is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (set ASKDB_DATABASE_DSN or the config file)")
	}
	if c.Ollama.BaseURL == "" {
		return fmt.Errorf("ollama.base_url is required")
	}
	if c.Ollama.Model == "" {
		return fmt.Errorf("ollama.model is required (e.g. sqlcoder, mistral, codellama)")
	}
	return nil
}

// OllamaTimeout parses the Ollama request timeout, falling back to 90s.
func (c *Config) OllamaTimeout() time.Duration {
	return parseDuration(c.Ollama.Timeout, 90*time.Second)
}

// ShutdownTimeout parses the server drain timeout, falling back to 30s.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 30*time.Second)
}

// MaxLifetime parses the pool connection lifetime, falling back to 0
// (no limit).
func (p Pool) MaxLifetime() time.Duration {
	return parseDuration(p.ConnMaxLifetime, 0)
}

// MaxIdleTime parses the pool idle time, falling back to 0 (no limit).
func (p Pool) MaxIdleTime() time.Duration {
	return parseDuration(p.ConnMaxIdleTime, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
