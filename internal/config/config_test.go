package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Port:                 "8471",
		JWTSecret:            "secure-secret-at-least-32-chars-long!!",
		DBPassword:           "secure-password",
		DBSSLMode:            "require",
		Env:                  "development",
		MatchDefaultLimit:    20,
		MatchMaxLimit:        100,
		DefaultMaxDistanceKm: 50,
	}
}

func TestValidateProductionSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseConfig()
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

func TestValidateProductionSecrets(t *testing.T) {
	c := baseConfig()
	c.Env = "production"
	c.JWTSecret = "your-secret-key-change-in-production"
	assert.Error(t, c.Validate())

	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c.JWTSecret = "secure-secret-at-least-32-chars-long!!"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())
}

func TestValidateMatchingKnobs(t *testing.T) {
	c := baseConfig()
	c.MatchDefaultLimit = 0
	assert.Error(t, c.Validate())

	c = baseConfig()
	c.MatchMaxLimit = 10
	assert.Error(t, c.Validate())

	c = baseConfig()
	c.DefaultMaxDistanceKm = 0
	assert.Error(t, c.Validate())

	assert.NoError(t, baseConfig().Validate())
}

func TestValidateRequiredFields(t *testing.T) {
	c := baseConfig()
	c.Port = ""
	assert.Error(t, c.Validate())

	c = baseConfig()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())
}
