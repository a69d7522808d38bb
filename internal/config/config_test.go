// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults without credentials", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GITHUB_USERNAME", "")

		cfg, err := LoadConfig(viper.New())

		require.NoError(t, err)
		assert.Equal(t, 5001, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
		assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
		assert.False(t, cfg.GithubConfigured())
		assert.Equal(t, ":5001", cfg.Addr())
	})

	t.Run("reads environment variables", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "secret")
		t.Setenv("GITHUB_USERNAME", "octocat")
		t.Setenv("PORT", "8080")
		t.Setenv("CACHE_TTL", "5m")
		t.Setenv("DEBUG", "true")

		cfg, err := LoadConfig(viper.New())

		require.NoError(t, err)
		assert.True(t, cfg.GithubConfigured())
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
		assert.Equal(t, "debug", cfg.LogLevel, "debug mode should force debug logging")
	})

	t.Run("token without username is not configured", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "secret")
		t.Setenv("GITHUB_USERNAME", "")

		cfg, err := LoadConfig(viper.New())

		require.NoError(t, err)
		assert.False(t, cfg.GithubConfigured())
	})

	t.Run("rejects an out of range port", func(t *testing.T) {
		t.Setenv("PORT", "70000")

		_, err := LoadConfig(viper.New())

		assert.Error(t, err)
	})

	t.Run("rejects a non-positive cache ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "0s")

		_, err := LoadConfig(viper.New())

		assert.Error(t, err)
	})
}
