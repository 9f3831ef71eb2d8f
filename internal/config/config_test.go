package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fieldops")
	t.Setenv("AUTH0_DOMAIN", "fieldops.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.fieldops.app")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Outstanding.ValueFallback)
	assert.Equal(t, 15*time.Minute, cfg.Outstanding.RefreshInterval)
	assert.Equal(t, 6, cfg.Outstanding.ExportRatePerMinute)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OUTSTANDING_VALUE_FALLBACK", "false")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("S3_BUCKET", "fieldops-reports")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Outstanding.ValueFallback)
	assert.Equal(t, 5*time.Minute, cfg.Outstanding.RefreshInterval)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH0_DOMAIN", "fieldops.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.fieldops.app")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad duration", key: "REFRESH_INTERVAL", val: "soon"},
		{name: "interval too short", key: "REFRESH_INTERVAL", val: "10s"},
		{name: "bad bool", key: "OUTSTANDING_VALUE_FALLBACK", val: "maybe"},
		{name: "bad int", key: "EXPORT_RATE_PER_MINUTE", val: "lots"},
		{name: "zero rate", key: "EXPORT_RATE_PER_MINUTE", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
