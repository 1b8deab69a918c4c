package invoices

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/sales/orders"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAmountDueNeverNegative(t *testing.T) {
	assert.Equal(t, "40.00", Invoice{Total: d("100"), AmountPaid: d("60")}.AmountDue().StringFixed(2))
	assert.True(t, Invoice{Total: d("100"), AmountPaid: d("120")}.AmountDue().IsZero())
}

func TestOverdue(t *testing.T) {
	today := shared.NewDate(2026, time.March, 10)
	open := Invoice{Total: d("500"), AmountPaid: d("100"), Status: StatusPartiallyPaid, DueDate: shared.NewDate(2026, time.March, 9)}

	tests := []struct {
		name string
		inv  func() Invoice
		want bool
	}{
		{"late with balance", func() Invoice { return open }, true},
		{"due today", func() Invoice { i := open; i.DueDate = today; return i }, false},
		{"fully paid", func() Invoice { i := open; i.AmountPaid = d("500"); return i }, false},
		{"cancelled", func() Invoice { i := open; i.Status = StatusCancelled; return i }, false},
		{"no due date", func() Invoice { i := open; i.DueDate = shared.Date{}; return i }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.inv()
			assert.Equal(t, tt.want, inv.Overdue(today))
			if tt.want {
				assert.Equal(t, StatusOverdue, inv.DisplayStatus(today))
			} else {
				assert.Equal(t, inv.Status, inv.DisplayStatus(today))
			}
		})
	}
}

func TestPaymentStatus(t *testing.T) {
	assert.Equal(t, StatusUnpaid, Invoice{Total: d("10"), AmountPaid: decimal.Zero}.PaymentStatus())
	assert.Equal(t, StatusPartiallyPaid, Invoice{Total: d("10"), AmountPaid: d("4")}.PaymentStatus())
	assert.Equal(t, StatusPaid, Invoice{Total: d("10"), AmountPaid: d("10")}.PaymentStatus())
	assert.Equal(t, StatusCancelled, Invoice{Total: d("10"), AmountPaid: d("10"), Status: StatusCancelled}.PaymentStatus())
}

func TestFromOrder(t *testing.T) {
	order := orders.Order{ID: 4, OrderNumber: "SO-0004", Customer: 7}
	items := []orders.Item{
		{Order: 4, Quantity: 2, UnitPrice: d("100"), GSTRate: d("5")},
		{Order: 4, Quantity: 1, UnitPrice: d("50"), DiscountPercent: d("10"), GSTRate: d("12")},
	}
	on := shared.NewDate(2026, time.March, 2)

	inv := FromOrder(order, items, customers.Customer{ID: 7, PaymentTermsDays: 15}, on)
	assert.Equal(t, "INV-0004", inv.InvoiceNumber)
	assert.Equal(t, int64(4), inv.Order)
	assert.Equal(t, int64(7), inv.Customer)
	assert.Equal(t, "245.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "15.40", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "260.40", inv.Total.StringFixed(2))
	assert.Equal(t, "2026-03-17", inv.DueDate.String())
	assert.Equal(t, StatusUnpaid, inv.Status)

	noTerms := FromOrder(orders.Order{ID: 5, OrderNumber: "5"}, nil, customers.Customer{}, on)
	assert.Equal(t, "INV-5", noTerms.InvoiceNumber)
	assert.Equal(t, on.AddDays(customers.DefaultPaymentTermsDays), noTerms.DueDate)
}
