package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivionix/vivionix-admin/cmd/vivionix/cli"
	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/app"
	"github.com/vivionix/vivionix-admin/internal/auth"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/observability"
	"github.com/vivionix/vivionix-admin/internal/platform/cache"
	"github.com/vivionix/vivionix-admin/internal/platform/db"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
	"github.com/vivionix/vivionix-admin/jobs"
	"github.com/vivionix/vivionix-admin/report"
)

const sessionCookie = "vivionix_session"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	switch command {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "migrate":
		err = migrate(ctx, cfg, logger)
	case "jobs":
		os.Exit(runJobs(ctx, cfg, os.Args[2:]))
	default:
		err = fmt.Errorf("unknown command %q (want serve, migrate or jobs)", command)
	}
	if err != nil {
		logger.Error(command, slog.Any("error", err))
		os.Exit(1)
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	jobsCLI, err := cli.NewJobsCLI(cfg.Redis().AsynqOpt())
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer func() {
		_ = jobsCLI.Close()
	}()
	return jobsCLI.Command(ctx, cli.JobsOptions{Args: args})
}

func migrate(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	if cfg.PGDSN == "" {
		return errors.New("PG_DSN is not set")
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	applied, err := db.Migrate(ctx, pool)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", slog.Int("count", len(applied)), slog.Any("versions", applied))
	return nil
}

// openPostgres connects the optional audit database. Without PG_DSN the
// console runs with the activity log disabled.
func openPostgres(ctx context.Context, cfg *app.Config, logger *slog.Logger) *pgxpool.Pool {
	if cfg.PGDSN == "" {
		logger.Info("PG_DSN not set, activity log disabled")
		return nil
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Warn("connect postgres, activity log disabled", slog.Any("error", err))
		return nil
	}
	if _, err := db.Migrate(ctx, pool); err != nil {
		logger.Warn("migrate postgres, activity log disabled", slog.Any("error", err))
		pool.Close()
		return nil
	}
	return pool
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	pool := openPostgres(ctx, cfg, logger)
	if pool != nil {
		defer pool.Close()
	}
	activity := shared.NewActivityLog(pool, logger)
	idempotency := shared.NewIdempotencyStore(pool)

	metrics := observability.NewMetrics()
	api, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.APIBaseURL,
		LoginPath:   cfg.APILoginPath,
		RefreshPath: cfg.APIRefreshPath,
		IdleTimeout: cfg.SessionIdleTimeout,
		Timeout:     cfg.APITimeout,
		Logger:      logger,
		Metrics:     apiclient.NewMetrics(metrics.Registerer()),
	})
	if err != nil {
		return err
	}

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	templates.SetCompany(cfg.CompanyName)

	vault, err := shared.NewTokenVault(cfg.SessionSecret)
	if err != nil {
		return err
	}
	sessionManager := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	authService := auth.NewService(api, activity)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, vault)

	asynqOpt := cfg.Redis().AsynqOpt()
	jobClient, err := jobs.NewClient(asynqOpt)
	if err != nil {
		return err
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynqOpt)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	reports := report.NewHandler(report.NewDocuments(templates, report.NewClient(cfg.GotenbergURL, 0)), logger)
	modules := app.NewModules(app.ModuleParams{
		Deps: crud.Deps{
			Logger:      logger,
			Templates:   templates,
			Binder:      crud.NewBinder(),
			Activity:    activity,
			Idempotency: idempotency,
			PageSize:    cfg.ListPageSize,
		},
		API:          api,
		Redis:        redisClient,
		ListCacheTTL: cfg.ListCacheTTL,
		Thresholds:   cfg.StockThresholds(),
		Reports:      reports,
		Enqueuer:     jobClient,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Vault:          vault,
		AuthHandler:    authHandler,
		Guard:          auth.NewGuard(logger, cfg.SessionIdleTimeout, nil),
		Modules:        modules,
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
