package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 20, cfg.RateLimit.IngestRPS)
	assert.Equal(t, 40, cfg.RateLimit.IngestBurst)
	assert.True(t, cfg.Liveness.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Liveness.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Liveness.Timeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "farms")
	t.Setenv("INGEST_RATE_LIMIT", "5")
	t.Setenv("LIVENESS_ENABLED", "false")
	t.Setenv("LIVENESS_TIMEOUT", "45m")
	t.Setenv("CORS_ORIGINS", "http://a,http://b")

	cfg := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 5, cfg.RateLimit.IngestRPS)
	assert.Equal(t, 10, cfg.RateLimit.IngestBurst)
	assert.False(t, cfg.Liveness.Enabled)
	assert.Equal(t, 45*time.Minute, cfg.Liveness.Timeout)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORS.Origins)
	assert.Equal(t, "postgres://u:p@db:5432/farms?sslmode=disable", cfg.DB.URL())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("INGEST_RATE_LIMIT", "many")
	t.Setenv("LIVENESS_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 20, cfg.RateLimit.IngestRPS)
	assert.Equal(t, 5*time.Minute, cfg.Liveness.Interval)
}

func TestRateLimitDisabledAtZero(t *testing.T) {
	t.Setenv("INGEST_RATE_LIMIT", "0")

	cfg := Load()

	assert.False(t, cfg.RateLimit.Enabled())
	assert.True(t, RateLimitConfig{IngestRPS: 1, IngestBurst: 2}.Enabled())
}
