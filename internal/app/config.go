package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/vivionix/vivionix-admin/internal/inventory/stock"
	"github.com/vivionix/vivionix-admin/internal/platform/cache"
)

// Config holds runtime configuration for the console, worker and CLI.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN is optional; without it the activity log and idempotency keys are disabled.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr          string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword      string        `envconfig:"REDIS_PASSWORD"`
	RedisDB            int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret      string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	APIBaseURL         string        `envconfig:"API_BASE_URL" required:"true"`
	APITimeout         time.Duration `envconfig:"API_TIMEOUT" default:"15s"`
	APILoginPath       string        `envconfig:"API_LOGIN_PATH" default:"/api/token/"`
	APIRefreshPath     string        `envconfig:"API_REFRESH_PATH" default:"/api/token/refresh/"`
	APIServiceUsername string        `envconfig:"API_SERVICE_USERNAME"`
	APIServicePassword string        `envconfig:"API_SERVICE_PASSWORD"`

	ListCacheTTL time.Duration `envconfig:"LIST_CACHE_TTL" default:"30s"`
	ListPageSize int           `envconfig:"LIST_PAGE_SIZE" default:"10"`

	StockExpiryWarningDays int    `envconfig:"STOCK_EXPIRY_WARNING_DAYS" default:"30"`
	StockLowThreshold      int    `envconfig:"STOCK_LOW_THRESHOLD" default:"10"`
	StockScanCron          string `envconfig:"STOCK_SCAN_CRON" default:"0 * * * *"`

	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	GotenbergURL string `envconfig:"GOTENBERG_URL"`
	CompanyName  string `envconfig:"COMPANY_NAME" default:"Vivionix"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < 16 {
		return errors.New("session secret must be at least 16 characters")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) url, got %q", c.APIBaseURL)
	}
	if c.SessionIdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.StockExpiryWarningDays < 0 || c.StockLowThreshold < 0 {
		return errors.New("stock thresholds must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// ServiceAccountConfigured reports whether the worker can sign in on its own.
func (c *Config) ServiceAccountConfigured() bool {
	return c.APIServiceUsername != "" && c.APIServicePassword != ""
}

// Redis returns the connection options shared by sessions, caches and jobs.
func (c *Config) Redis() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// StockThresholds returns the configured stock status thresholds.
func (c *Config) StockThresholds() stock.Thresholds {
	return stock.Thresholds{ExpiryWarningDays: c.StockExpiryWarningDays, LowStock: c.StockLowThreshold}
}
