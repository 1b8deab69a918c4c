// Package orders manages customer orders and their line items.
package orders

import (
	"github.com/shopspring/decimal"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

// Order statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusDispatched = "dispatched"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []string{StatusPending, StatusConfirmed, StatusDispatched, StatusDelivered, StatusCancelled}

var transitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered},
}

// Order mirrors /api/orders/.
type Order struct {
	ID           int64        `json:"id,omitempty" form:"-"`
	OrderNumber  string       `json:"order_number" form:"order_number" validate:"required,max=30"`
	Customer     int64        `json:"customer" form:"customer" validate:"required,gt=0"`
	OrderDate    shared.Date  `json:"order_date" form:"order_date" validate:"required"`
	DeliveryDate *shared.Date `json:"expected_delivery_date" form:"expected_delivery_date"`
	Status       string       `json:"status" form:"status" validate:"required,oneof=pending confirmed dispatched delivered cancelled"`
	Notes        string       `json:"notes" form:"notes" validate:"max=1000"`
}

// RecordID implements crud.Record.
func (o Order) RecordID() int64 { return o.ID }

// Editable reports whether line items may still change.
func (o Order) Editable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// NextStatuses returns the statuses an order may move to.
func (o Order) NextStatuses() []string {
	return transitions[o.Status]
}

// CanMoveTo reports whether status is a valid next step.
func (o Order) CanMoveTo(status string) bool {
	for _, s := range transitions[o.Status] {
		if s == status {
			return true
		}
	}
	return false
}

// Item mirrors /api/order-items/.
type Item struct {
	ID              int64           `json:"id,omitempty" form:"-"`
	Order           int64           `json:"order" form:"order" validate:"required,gt=0"`
	Product         int64           `json:"product" form:"product" validate:"required,gt=0"`
	Quantity        int             `json:"quantity" form:"quantity" validate:"required,gt=0,lte=100000"`
	UnitPrice       decimal.Decimal `json:"unit_price" form:"unit_price" validate:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" form:"discount_percent" validate:"gte=0,lte=100"`
	GSTRate         decimal.Decimal `json:"gst_rate" form:"gst_rate" validate:"gte=0,lte=28"`
}

// RecordID implements crud.Record.
func (i Item) RecordID() int64 { return i.ID }

var hundred = decimal.NewFromInt(100)

// Amount is quantity × unit price less the discount, rounded half-up to paise.
func (i Item) Amount() decimal.Decimal {
	gross := i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return gross.Mul(decimal.NewFromInt(1).Sub(i.DiscountPercent.Div(hundred))).Round(2)
}

// Tax is the GST on Amount, rounded half-up to paise.
func (i Item) Tax() decimal.Decimal {
	return i.Amount().Mul(i.GSTRate).Div(hundred).Round(2)
}

// Total is Amount plus Tax.
func (i Item) Total() decimal.Decimal {
	return i.Amount().Add(i.Tax())
}

// Totals aggregates order lines.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Units    int
}

// Sum totals the lines. Each line is rounded before summing so the figures
// agree with the printed invoice.
func Sum(items []Item) Totals {
	t := Totals{Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	for _, item := range items {
		t.Subtotal = t.Subtotal.Add(item.Amount())
		t.Tax = t.Tax.Add(item.Tax())
		t.Units += item.Quantity
	}
	t.Total = t.Subtotal.Add(t.Tax)
	return t
}

// ItemsOf keeps the items belonging to orderID.
func ItemsOf(items []Item, orderID int64) []Item {
	out := make([]Item, 0)
	for _, item := range items {
		if item.Order == orderID {
			out = append(out, item)
		}
	}
	return out
}
