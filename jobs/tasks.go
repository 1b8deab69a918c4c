package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockScan recomputes the stock alert summary.
	TaskStockScan = "stock:scan"
	// stockScanManualID is shared by every console and CLI scan.
	stockScanManualID = "stock:scan:manual"
)

// Trigger values recorded on a stock scan.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerCLI      = "cli"
)

// StockScanPayload describes who asked for a scan.
type StockScanPayload struct {
	Trigger     string    `json:"trigger"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewStockScanTask constructs an Asynq task.
func NewStockScanTask(payload StockScanPayload) (*asynq.Task, error) {
	if payload.Trigger == "" {
		payload.Trigger = TriggerSchedule
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockScan, data, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}
