package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:         defaultAddr,
		DatabaseURL:  "postgres://localhost/store",
		APIKeyPepper: "pepper",
		RateLimit:    RateLimitConfig{Requests: 10, Window: time.Minute},
		Health:       HealthConfig{Interval: time.Second},
	}
}

func TestApplyPlatformDefaults(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL": "postgres://platform/db",
		"PORT":         "9000",
	}
	getenv := func(k string) string { return env[k] }

	t.Run("Fills", func(t *testing.T) {
		cfg := Config{Addr: defaultAddr}
		cfg.applyPlatformDefaults(getenv)
		assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
		assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	})
	t.Run("ExplicitWins", func(t *testing.T) {
		cfg := Config{Addr: "127.0.0.1:7000", DatabaseURL: "postgres://explicit/db"}
		cfg.applyPlatformDefaults(getenv)
		assert.Equal(t, "postgres://explicit/db", cfg.DatabaseURL)
		assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	})
}

func TestConfigValidate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "Valid", mutate: func(*Config) {}},
		{name: "RateLimitDisabled", mutate: func(c *Config) { c.RateLimit = RateLimitConfig{} }},
		{name: "NoDatabase", mutate: func(c *Config) { c.DatabaseURL = "" }, errMsg: "database URL is required"},
		{name: "NoPepper", mutate: func(c *Config) { c.APIKeyPepper = "" }, errMsg: "pepper is required"},
		{name: "NegativeLimit", mutate: func(c *Config) { c.RateLimit.Requests = -1 }, errMsg: "invalid rate limit"},
		{name: "NoWindow", mutate: func(c *Config) { c.RateLimit.Window = 0 }, errMsg: "invalid rate limit"},
		{name: "NoInterval", mutate: func(c *Config) { c.Health.Interval = 0 }, errMsg: "invalid health interval"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}
