// Package pricing manages customer specific product prices and resolves the
// price that applies to an order line.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

// CustomerPrice mirrors /api/customer-product-prices/.
type CustomerPrice struct {
	ID              int64           `json:"id,omitempty" form:"-"`
	Customer        int64           `json:"customer" form:"customer" validate:"required,gt=0"`
	Product         int64           `json:"product" form:"product" validate:"required,gt=0"`
	Price           decimal.Decimal `json:"price" form:"price" validate:"gt=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" form:"discount_percent" validate:"gte=0,lte=100"`
	ValidFrom       shared.Date     `json:"valid_from" form:"valid_from" validate:"required"`
	ValidTo         *shared.Date    `json:"valid_to" form:"valid_to"`
	Notes           string          `json:"notes" form:"notes" validate:"max=500"`
}

// RecordID implements crud.Record.
func (p CustomerPrice) RecordID() int64 { return p.ID }

// Covers reports whether on falls inside [ValidFrom, ValidTo]. A nil ValidTo is open ended.
func (p CustomerPrice) Covers(on shared.Date) bool {
	if on.Before(p.ValidFrom.Time) {
		return false
	}
	return p.ValidTo == nil || !on.After(p.ValidTo.Time)
}

// Effective applies the discount to the agreed price, rounded to paise.
func (p CustomerPrice) Effective() decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(p.DiscountPercent.Div(decimal.NewFromInt(100)))
	return p.Price.Mul(factor).Round(2)
}

// Window renders the validity period for tables.
func (p CustomerPrice) Window() string {
	if p.ValidTo == nil {
		return p.ValidFrom.String() + " onwards"
	}
	return p.ValidFrom.String() + " to " + p.ValidTo.String()
}
