// Package products manages the catalogue of medical and laboratory supplies.
package products

import "github.com/shopspring/decimal"

// Statuses of a catalogue item.
const (
	StatusActive       = "active"
	StatusDiscontinued = "discontinued"
)

// GSTRates are the slabs a product may carry, in percent.
var GSTRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// Product mirrors /api/products/.
type Product struct {
	ID           int64           `json:"id,omitempty" form:"-"`
	SKU          string          `json:"sku" form:"sku" validate:"required,max=40"`
	Name         string          `json:"name" form:"name" validate:"required,max=200"`
	Category     string          `json:"category" form:"category" validate:"required,oneof=consumable instrument reagent equipment pharmaceutical"`
	Vendor       int64           `json:"vendor,omitempty" form:"vendor"`
	HSNCode      string          `json:"hsn_code" form:"hsn_code" validate:"omitempty,numeric,min=4,max=8"`
	Unit         string          `json:"unit" form:"unit" validate:"required,max=20"`
	BasePrice    decimal.Decimal `json:"base_price" form:"base_price" validate:"gt=0"`
	GSTRate      decimal.Decimal `json:"gst_rate" form:"gst_rate" validate:"gte=0,lte=28"`
	ReorderLevel int             `json:"reorder_level" form:"reorder_level" validate:"gte=0"`
	Description  string          `json:"description" form:"description" validate:"max=5000"`
	Status       string          `json:"status" form:"status" validate:"required,oneof=active discontinued"`
}

// RecordID implements crud.Record.
func (p Product) RecordID() int64 { return p.ID }

// DisplayName combines SKU and name for selects.
func (p Product) DisplayName() string {
	if p.SKU == "" {
		return p.Name
	}
	return p.SKU + " · " + p.Name
}

// ValidGSTRate reports whether rate is one of GSTRates.
func ValidGSTRate(rate decimal.Decimal) bool {
	for _, r := range GSTRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}
