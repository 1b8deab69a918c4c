package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

// AlertSummaryKey holds the last stock scan result.
const AlertSummaryKey = "stock:alerts:summary"

const maxAlerts = 20

// Alert is one batch that needs attention.
type Alert struct {
	RecordID int64  `json:"record_id"`
	Product  string `json:"product"`
	Batch    string `json:"batch"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
	DaysLeft *int   `json:"days_left,omitempty"`
}

// Badge is the CSS modifier for the alert's status.
func (a Alert) Badge() string {
	return Badge(a.Status)
}

// Summary counts records per derived status.
type Summary struct {
	Total        int       `json:"total"`
	InStock      int       `json:"in_stock"`
	LowStock     int       `json:"low_stock"`
	OutOfStock   int       `json:"out_of_stock"`
	ExpiringSoon int       `json:"expiring_soon"`
	Expired      int       `json:"expired"`
	Alerts       []Alert   `json:"alerts,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Attention counts records that are not plainly in stock.
func (s Summary) Attention() int {
	return s.LowStock + s.OutOfStock + s.ExpiringSoon + s.Expired
}

// Count returns the count for a status.
func (s Summary) Count(status string) int {
	switch status {
	case StatusInStock:
		return s.InStock
	case StatusLowStock:
		return s.LowStock
	case StatusOutOfStock:
		return s.OutOfStock
	case StatusExpiringSoon:
		return s.ExpiringSoon
	case StatusExpired:
		return s.Expired
	default:
		return 0
	}
}

var severity = map[string]int{StatusExpired: 0, StatusOutOfStock: 1, StatusExpiringSoon: 2, StatusLowStock: 3}

// Summarize counts annotated records and keeps the most severe alerts.
func Summarize(rows []Annotated) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		switch row.Status {
		case StatusInStock:
			s.InStock++
			continue
		case StatusLowStock:
			s.LowStock++
		case StatusOutOfStock:
			s.OutOfStock++
		case StatusExpiringSoon:
			s.ExpiringSoon++
		case StatusExpired:
			s.Expired++
		}
		s.Alerts = append(s.Alerts, Alert{
			RecordID: row.ID,
			Product:  row.Product,
			Batch:    row.BatchNumber,
			Quantity: row.Quantity,
			Status:   row.Status,
			DaysLeft: row.DaysLeft,
		})
	}
	sort.SliceStable(s.Alerts, func(i, j int) bool {
		return severity[s.Alerts[i].Status] < severity[s.Alerts[j].Status]
	})
	if len(s.Alerts) > maxAlerts {
		s.Alerts = s.Alerts[:maxAlerts]
	}
	return s
}

// SummarizeRecords annotates and summarises in one step.
func (t Thresholds) SummarizeRecords(records []Record, today shared.Date, names map[int64]string) Summary {
	return Summarize(t.Annotate(records, today, names))
}

// AlertStore keeps the last scan summary in Redis.
type AlertStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAlertStore builds a store. A nil client disables it.
func NewAlertStore(client *redis.Client, ttl time.Duration) *AlertStore {
	if client == nil {
		return nil
	}
	return &AlertStore{client: client, ttl: ttl}
}

// Save replaces the stored summary.
func (s *AlertStore) Save(ctx context.Context, summary Summary) error {
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("stock: encode summary: %w", err)
	}
	return s.client.Set(ctx, AlertSummaryKey, payload, s.ttl).Err()
}

// Load returns the stored summary and whether one exists.
func (s *AlertStore) Load(ctx context.Context) (Summary, bool, error) {
	if s == nil {
		return Summary{}, false, nil
	}
	payload, err := s.client.Get(ctx, AlertSummaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, err
	}
	var summary Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return Summary{}, false, fmt.Errorf("stock: decode summary: %w", err)
	}
	return summary, true, nil
}
