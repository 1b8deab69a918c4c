package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/inventory/stock"
	jobmetrics "github.com/vivionix/vivionix-admin/internal/jobs"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

const stockScanLockTTL = 10 * time.Minute

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// StockScanJob signs in with the service account, summarises the stock
// collection and stores the result for the dashboard.
type StockScanJob struct {
	API        *apiclient.Client
	Username   string
	Password   string
	Redis      *redis.Client
	Alerts     *stock.AlertStore
	Thresholds stock.Thresholds
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	clock      func() time.Time
}

// NewStockScanJob wires dependencies for the scan handler.
func NewStockScanJob(api *apiclient.Client, username, password string, redisClient *redis.Client, thresholds stock.Thresholds, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockScanJob {
	return &StockScanJob{
		API:        api,
		Username:   username,
		Password:   password,
		Redis:      redisClient,
		Alerts:     stock.NewAlertStore(redisClient, 0),
		Thresholds: thresholds,
		Logger:     logger,
		Metrics:    metrics,
		clock:      time.Now,
	}
}

// Handle processes TaskStockScan tasks.
func (j *StockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.API == nil {
		return errors.New("stock scan: handler not configured")
	}
	var payload StockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	if j.Redis != nil {
		lock, err := shared.AcquireLock(ctx, j.Redis, shared.StockScanLockKey, stockScanLockTTL)
		if errors.Is(err, shared.ErrLockHeld) {
			j.logger().Info("stock scan already running, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("stock scan: acquire lock: %w", err)
		}
		defer func() {
			_ = lock.Release(context.WithoutCancel(ctx))
		}()
	}

	tracker := j.metrics().Track(TaskStockScan)
	summary, err := j.Run(ctx)
	if err := tracker.End(err); err != nil {
		j.logger().Error("stock scan failed", slog.String("trigger", payload.Trigger), slog.Any("error", err))
		if errors.Is(err, apiclient.ErrInvalidCredentials) {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}
	j.logger().Info("stock scan completed",
		slog.String("trigger", payload.Trigger),
		slog.Int("records", summary.Total),
		slog.Int("attention", summary.Attention()),
	)
	return nil
}

// Run performs one scan and stores the summary.
func (j *StockScanJob) Run(ctx context.Context) (stock.Summary, error) {
	tokens, err := j.API.Login(ctx, j.Username, j.Password)
	if err != nil {
		return stock.Summary{}, fmt.Errorf("stock scan: service login: %w", err)
	}
	ctx = apiclient.WithTokenStore(ctx, apiclient.NewMemoryTokenStore(tokens))

	var (
		records []stock.Record
		catalog []products.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = apiclient.NewResource[stock.Record](j.API, stock.APIPath).List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = apiclient.NewResource[products.Product](j.API, products.APIPath).List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return stock.Summary{}, fmt.Errorf("stock scan: load: %w", err)
	}

	names := make(map[int64]string, len(catalog))
	for _, p := range catalog {
		names[p.ID] = p.DisplayName()
	}
	now := j.now().UTC()
	summary := j.Thresholds.SummarizeRecords(records, shared.DateOf(now), names)
	summary.GeneratedAt = now

	j.metrics().SetStockAlerts(map[string]int{
		stock.StatusInStock:      summary.InStock,
		stock.StatusLowStock:     summary.LowStock,
		stock.StatusOutOfStock:   summary.OutOfStock,
		stock.StatusExpiringSoon: summary.ExpiringSoon,
		stock.StatusExpired:      summary.Expired,
	})
	if err := j.Alerts.Save(ctx, summary); err != nil {
		return summary, fmt.Errorf("stock scan: save summary: %w", err)
	}
	return summary, nil
}

func (j *StockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
