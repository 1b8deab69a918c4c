// Package stock shows inventory batches with their derived expiry and
// low-stock status, and keeps the alert summary written by the stock scan.
package stock

import (
	"github.com/vivionix/vivionix-admin/internal/shared"
)

// Derived statuses, in precedence order.
const (
	StatusExpired      = "expired"
	StatusOutOfStock   = "out_of_stock"
	StatusExpiringSoon = "expiring_soon"
	StatusLowStock     = "low_stock"
	StatusInStock      = "in_stock"
)

// Statuses lists the derived statuses in precedence order.
var Statuses = []string{StatusExpired, StatusOutOfStock, StatusExpiringSoon, StatusLowStock, StatusInStock}

// Defaults for Thresholds.
const (
	DefaultExpiryWarningDays = 30
	DefaultLowStockThreshold = 10
)

// Record mirrors /api/stock/: one batch of a product at a location.
type Record struct {
	ID             int64        `json:"id,omitempty" form:"-"`
	Product        int64        `json:"product" form:"product" validate:"required,gt=0"`
	BatchNumber    string       `json:"batch_number" form:"batch_number" validate:"required,max=50"`
	Quantity       int          `json:"quantity" form:"quantity" validate:"gte=0"`
	ReorderLevel   int          `json:"reorder_level" form:"reorder_level" validate:"gte=0"`
	ManufacturedOn *shared.Date `json:"manufactured_on" form:"manufactured_on"`
	ExpiryDate     *shared.Date `json:"expiry_date" form:"expiry_date"`
	Location       string       `json:"location" form:"location" validate:"max=100"`
}

// RecordID implements crud.Record.
func (r Record) RecordID() int64 { return r.ID }

// Thresholds configure the derived status.
type Thresholds struct {
	ExpiryWarningDays int
	LowStock          int
}

// DefaultThresholds returns the stock defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{ExpiryWarningDays: DefaultExpiryWarningDays, LowStock: DefaultLowStockThreshold}
}

func (t Thresholds) normalized() Thresholds {
	if t.ExpiryWarningDays < 0 {
		t.ExpiryWarningDays = 0
	}
	if t.LowStock < 0 {
		t.LowStock = 0
	}
	return t
}

// DaysUntilExpiry is the whole number of calendar days from today to expiry,
// negative once expired. It is nil without an expiry date.
func DaysUntilExpiry(expiry *shared.Date, today shared.Date) *int {
	if expiry == nil || expiry.IsZero() {
		return nil
	}
	from := shared.DateOf(today.UTC())
	to := shared.DateOf(expiry.UTC())
	days := int(to.Sub(from.Time).Hours() / 24)
	return &days
}

// LowStockLevel is the record's reorder level when set, otherwise the default.
func (t Thresholds) LowStockLevel(r Record) int {
	if r.ReorderLevel > 0 {
		return r.ReorderLevel
	}
	return t.normalized().LowStock
}

// Status derives the stock status of r on today.
func (t Thresholds) Status(r Record, today shared.Date) string {
	t = t.normalized()
	days := DaysUntilExpiry(r.ExpiryDate, today)
	switch {
	case days != nil && *days < 0:
		return StatusExpired
	case r.Quantity <= 0:
		return StatusOutOfStock
	case days != nil && *days <= t.ExpiryWarningDays:
		return StatusExpiringSoon
	case r.Quantity <= t.LowStockLevel(r):
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Annotated is a record with its derived values.
type Annotated struct {
	Record
	Product  string `json:"product_name"`
	Status   string `json:"status"`
	DaysLeft *int   `json:"days_until_expiry"`
}

// Annotate derives status and days left for every record. names maps product ids to labels.
func (t Thresholds) Annotate(records []Record, today shared.Date, names map[int64]string) []Annotated {
	out := make([]Annotated, 0, len(records))
	for _, r := range records {
		out = append(out, Annotated{
			Record:   r,
			Product:  names[r.Product],
			Status:   t.Status(r, today),
			DaysLeft: DaysUntilExpiry(r.ExpiryDate, today),
		})
	}
	return out
}
