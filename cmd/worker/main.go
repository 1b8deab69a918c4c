package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/app"
	jobmetrics "github.com/vivionix/vivionix-admin/internal/jobs"
	"github.com/vivionix/vivionix-admin/internal/observability"
	"github.com/vivionix/vivionix-admin/internal/platform/cache"
	"github.com/vivionix/vivionix-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))
	if !cfg.ServiceAccountConfigured() {
		logger.Error("API_SERVICE_USERNAME and API_SERVICE_PASSWORD are required by the worker")
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	api, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.APIBaseURL,
		LoginPath:   cfg.APILoginPath,
		RefreshPath: cfg.APIRefreshPath,
		Timeout:     cfg.APITimeout,
		Logger:      logger,
		Metrics:     apiclient.NewMetrics(metrics.Registerer()),
	})
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}

	scanJob := jobs.NewStockScanJob(api, cfg.APIServiceUsername, cfg.APIServicePassword, redisClient,
		cfg.StockThresholds(), logger, jobmetrics.NewMetrics(metrics.Registerer()))

	scanCron, err := jobs.StockScanCron(cfg.StockScanCron)
	if err != nil {
		logger.Error("build stock scan schedule", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.Redis().AsynqOpt(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStockScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{scanCron},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		r := chi.NewRouter()
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("worker started", slog.String("schedule", cfg.StockScanCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
