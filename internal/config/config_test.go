package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.HTTPPort)
	assert.Equal(t, "review_db", cfg.PostgresDB)
	assert.Equal(t, "http://localhost:8001", cfg.CatalogServiceURL)
	assert.Equal(t, 3*time.Second, cfg.CatalogTimeout())
	assert.Equal(t, 5*time.Minute, cfg.ReviewCacheTTL())
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, uint32(5), cfg.CBMinRequests)
	assert.Equal(t, 0.5, cfg.CBFailureRatio)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REVIEW_HTTP_PORT", "9090")
	t.Setenv("CATALOG_SERVICE_URL", "https://catalog.internal")
	t.Setenv("CATALOG_TIMEOUT_SECONDS", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ENABLED", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "https://catalog.internal", cfg.CatalogServiceURL)
	assert.Equal(t, 7*time.Second, cfg.CatalogTimeout())
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	setRequired(t)
	t.Setenv("REVIEW_HTTP_PORT", "0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_NonNumericPort(t *testing.T) {
	setRequired(t)
	t.Setenv("REVIEW_HTTP_PORT", "abc")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_InvalidCatalogURL(t *testing.T) {
	setRequired(t)

	for _, v := range []string{"catalog:8001", "ftp://catalog", "http://"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CATALOG_SERVICE_URL", v)

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "CATALOG_SERVICE_URL")
		})
	}
}

func TestLoad_InvalidCatalogTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("CATALOG_TIMEOUT_SECONDS", "-1")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_TIMEOUT_SECONDS")
}

func TestLoad_InvalidFailureRatio(t *testing.T) {
	setRequired(t)
	t.Setenv("CB_FAILURE_RATIO", "1.5")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CB_FAILURE_RATIO")
}

func TestLoad_InvalidCacheTTLOnlyWhenRedisEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("REVIEW_CACHE_TTL_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEW_CACHE_TTL_SECONDS")

	t.Setenv("REDIS_ENABLED", "false")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	setRequired(t)
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}
