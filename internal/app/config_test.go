package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "0123456789abcdef-secret")
	t.Setenv("CSRF_SECRET", "csrf")
	t.Setenv("API_BASE_URL", "https://api.vivionix.example")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "/api/token/refresh/", cfg.APIRefreshPath)
	assert.Equal(t, 10, cfg.ListPageSize)
	assert.Equal(t, "0 * * * *", cfg.StockScanCron)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.ServiceAccountConfigured())

	th := cfg.StockThresholds()
	assert.Equal(t, 30, th.ExpiryWarningDays)
	assert.Equal(t, 10, th.LowStock)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis().Addr)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_BASE_URL", "api.vivionix.example")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "API_BASE_URL")

	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "short")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "session secret")

	setRequiredEnv(t)
	t.Setenv("STOCK_LOW_THRESHOLD", "-1")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json", AppEnv: "production"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), `"service":"vivionix-admin"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&Config{AppEnv: "production"}, &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}
