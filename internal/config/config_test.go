package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                       "development",
		JWTSecret:                 "secure-secret-at-least-32-chars-long",
		DBPassword:                "secure-password",
		DBSSLMode:                 "require",
		Port:                      "8080",
		RedisURL:                  "redis://localhost:6379",
		DBConnMaxLifetimeMinutes:  1,
		VoteDailyLimit:            50,
		UnansweredCacheTTLSeconds: 300,
		ReplyEditWindowMinutes:    15,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateEngineRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero vote limit", func(c *Config) { c.VoteDailyLimit = 0 }},
		{"zero cache ttl", func(c *Config) { c.UnansweredCacheTTLSeconds = 0 }},
		{"zero edit window", func(c *Config) { c.ReplyEditWindowMinutes = 0 }},
		{"negative conn lifetime", func(c *Config) { c.DBConnMaxLifetimeMinutes = -1 }},
		{"missing port", func(c *Config) { c.Port = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 50, c.VoteDailyLimit)
	assert.Equal(t, 300, c.UnansweredCacheTTLSeconds)
	assert.Equal(t, 15, c.ReplyEditWindowMinutes)
	assert.Equal(t, "reply_edit_history=on", c.FeatureFlags)
}
