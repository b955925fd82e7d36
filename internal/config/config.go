package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/qualitasnexus/nexctl/internal/errors"
)

// DefaultAPIURL is used when neither the config file nor the environment
// names a backend.
const DefaultAPIURL = "http://localhost:5030"

// DefaultTenant is the tenant used when none is configured or decoded
// from the session token.
const DefaultTenant = "root"

// Config represents the CLI configuration. Values are resolved in order:
// built-in defaults, then ~/.nexctl/config.yaml, then NEXCTL_* environment
// variables.
type Config struct {
	// Base URL of the identity backend
	APIURL string `yaml:"api_url" env:"API_URL"`

	// Default tenant header for unauthenticated calls (login)
	Tenant string `yaml:"tenant" env:"TENANT"`

	// Log level: "debug", "info", "warn", "error"
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Log format: "text", "json"
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	// Home is the directory holding config.yaml and session.json
	Home string `yaml:"-" env:"HOME"`
}

// Dir returns the nexctl home directory, creating the path string only
// (not the directory itself).
func Dir() string {
	if h := os.Getenv("NEXCTL_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nexctl"
	}
	return filepath.Join(home, ".nexctl")
}

// Load resolves the effective configuration.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:    DefaultAPIURL,
		Tenant:    DefaultTenant,
		LogLevel:  "info",
		LogFormat: "text",
	}

	dir := Dir()
	path := filepath.Join(dir, "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewConfigInvalidError(path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "NEXCTL_"}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "invalid environment configuration", err)
	}

	if cfg.Home == "" {
		cfg.Home = dir
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Tenant == "" {
		cfg.Tenant = DefaultTenant
	}

	return cfg, nil
}

// SessionPath returns the path of the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Home, "session.json")
}
