// Package config loads application settings from a TOML file with
// environment variable overrides for secrets.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Email       EmailConfig       `toml:"email"`
	Interpreter InterpreterConfig `toml:"interpreter"`
	Recipes     RecipesConfig     `toml:"recipes"`
	Sweep       SweepConfig       `toml:"sweep"`
	Logging     LoggingConfig     `toml:"logging"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type EmailConfig struct {
	PostmarkToken string `toml:"postmark_token"`
	FromEmail     string `toml:"from_email"`
}

type InterpreterConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type RecipesConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type SweepConfig struct {
	IntervalHours int `toml:"interval_hours"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:      ServerConfig{Addr: ":8080"},
		Database:    DatabaseConfig{Path: "shelfsense.db"},
		Interpreter: InterpreterConfig{Model: "gpt-4o-mini", TimeoutSeconds: 30},
		Sweep:       SweepConfig{IntervalHours: 24},
		Logging:     LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the TOML file at path, falling back to defaults when the file
// does not exist. Secrets can always be supplied through the environment,
// which takes precedence over the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHELFSENSE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SHELFSENSE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("POSTMARK_SERVER_TOKEN"); v != "" {
		cfg.Email.PostmarkToken = v
	}
	if v := os.Getenv("POSTMARK_FROM_EMAIL"); v != "" {
		cfg.Email.FromEmail = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Interpreter.APIKey = v
	}
	if v := os.Getenv("SPOONACULAR_API_KEY"); v != "" {
		cfg.Recipes.APIKey = v
	}
}

func (c Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Sweep.IntervalHours <= 0 {
		return fmt.Errorf("sweep.interval_hours must be positive, got %d", c.Sweep.IntervalHours)
	}
	return nil
}
