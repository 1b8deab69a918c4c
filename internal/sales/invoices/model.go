// Package invoices manages tax invoices raised against orders.
package invoices

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/sales/orders"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

// Invoice statuses. StatusOverdue is derived and never sent to the API.
const (
	StatusUnpaid        = "unpaid"
	StatusPartiallyPaid = "partially_paid"
	StatusPaid          = "paid"
	StatusCancelled     = "cancelled"
	StatusOverdue       = "overdue"
)

// Invoice mirrors /api/invoices/.
type Invoice struct {
	ID            int64           `json:"id,omitempty" form:"-"`
	InvoiceNumber string          `json:"invoice_number" form:"invoice_number" validate:"required,max=30"`
	Order         int64           `json:"order" form:"order" validate:"required,gt=0"`
	Customer      int64           `json:"customer" form:"customer" validate:"required,gt=0"`
	InvoiceDate   shared.Date     `json:"invoice_date" form:"invoice_date" validate:"required"`
	DueDate       shared.Date     `json:"due_date" form:"due_date" validate:"required"`
	Subtotal      decimal.Decimal `json:"subtotal" form:"subtotal" validate:"gte=0"`
	TaxAmount     decimal.Decimal `json:"tax_amount" form:"tax_amount" validate:"gte=0"`
	Total         decimal.Decimal `json:"total_amount" form:"total_amount" validate:"gte=0"`
	AmountPaid    decimal.Decimal `json:"amount_paid" form:"amount_paid" validate:"gte=0"`
	Status        string          `json:"status" form:"status" validate:"required,oneof=unpaid partially_paid paid cancelled"`
	Notes         string          `json:"notes" form:"notes" validate:"max=1000"`
}

// RecordID implements crud.Record.
func (i Invoice) RecordID() int64 { return i.ID }

// AmountDue is the unpaid balance, never negative.
func (i Invoice) AmountDue() decimal.Decimal {
	due := i.Total.Sub(i.AmountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// Overdue reports an open balance past the due date.
func (i Invoice) Overdue(today shared.Date) bool {
	if i.Status == StatusCancelled || i.DueDate.IsZero() {
		return false
	}
	return i.DueDate.Before(today.Time) && i.AmountDue().IsPositive()
}

// DisplayStatus is Status, or overdue when the balance is late.
func (i Invoice) DisplayStatus(today shared.Date) string {
	if i.Overdue(today) {
		return StatusOverdue
	}
	return i.Status
}

// PaymentStatus derives the status from the amount paid. Cancelled invoices stay cancelled.
func (i Invoice) PaymentStatus() string {
	switch {
	case i.Status == StatusCancelled:
		return StatusCancelled
	case i.AmountPaid.IsZero():
		return StatusUnpaid
	case i.AmountDue().IsZero():
		return StatusPaid
	default:
		return StatusPartiallyPaid
	}
}

// FromOrder drafts an invoice for an order dated on, due after the
// customer's payment terms.
func FromOrder(order orders.Order, items []orders.Item, customer customers.Customer, on shared.Date) Invoice {
	totals := orders.Sum(items)
	return Invoice{
		InvoiceNumber: invoiceNumber(order.OrderNumber),
		Order:         order.ID,
		Customer:      order.Customer,
		InvoiceDate:   on,
		DueDate:       on.AddDays(customer.Terms()),
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.Tax,
		Total:         totals.Total,
		AmountPaid:    decimal.Zero,
		Status:        StatusUnpaid,
	}
}

func invoiceNumber(orderNumber string) string {
	if rest, ok := strings.CutPrefix(orderNumber, "SO-"); ok {
		return "INV-" + rest
	}
	return "INV-" + orderNumber
}
