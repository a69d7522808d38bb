// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	Debug              bool          `mapstructure:"DEBUG"`
	Port               int           `mapstructure:"PORT"`
	GithubToken        string        `mapstructure:"GITHUB_TOKEN"`
	GithubUsername     string        `mapstructure:"GITHUB_USERNAME"`
	GithubAPIURL       string        `mapstructure:"GITHUB_API_URL"`
	GithubGraphQLURL   string        `mapstructure:"GITHUB_GRAPHQL_URL"`
	CacheTTL           time.Duration `mapstructure:"CACHE_TTL"`
	UpstreamTimeout    time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// GithubConfigured reports whether both the token and the username are set.
// Without them every upstream-backed route answers "not configured".
func (c *Config) GithubConfigured() bool {
	return c.GithubToken != "" && c.GithubUsername != ""
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadConfig reads configuration from the given viper instance, a .env file and environment variables.
// Pass nil to use the global viper instance.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEBUG", false)
	v.SetDefault("PORT", 5001)
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_USERNAME", "")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("GITHUB_GRAPHQL_URL", "")
	v.SetDefault("CACHE_TTL", "30m")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	// Validate
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.CacheTTL <= 0 {
		return nil, errors.New("CACHE_TTL must be a positive duration (e.g. 30m)")
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT must be a positive duration (e.g. 10s)")
	}

	return &cfg, nil
}
