package invoices

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/sales/orders"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
	"github.com/vivionix/vivionix-admin/report"
)

// APIPath is the collection endpoint.
const APIPath = "/api/invoices/"

// Handler owns the invoice entity, invoicing from an order and the PDF export.
type Handler struct {
	deps     crud.Deps
	invoices crud.Store[Invoice]
	orders   orders.Stores
	reports  *report.Handler
	now      func() time.Time
}

// NewHandler wires the invoice pages.
func NewHandler(deps crud.Deps, invoiceStore crud.Store[Invoice], orderStores orders.Stores, reports *report.Handler) *Handler {
	return &Handler{deps: deps, invoices: invoiceStore, orders: orderStores, reports: reports, now: time.Now}
}

func (h *Handler) today() shared.Date {
	return shared.DateOf(h.now().UTC())
}

func invoicePath(id int64) string {
	return "/invoices/" + strconv.FormatInt(id, 10)
}

var statusChoices = []crud.Option{
	{Value: StatusUnpaid, Label: "Unpaid"},
	{Value: StatusPartiallyPaid, Label: "Partially paid"},
	{Value: StatusPaid, Label: "Paid"},
	{Value: StatusCancelled, Label: "Cancelled"},
}

func statusBadge(status string) string {
	switch status {
	case StatusOverdue, StatusCancelled:
		return "danger"
	case StatusPartiallyPaid:
		return "warning"
	case StatusPaid:
		return "active"
	default:
		return "info"
	}
}

// Entity describes invoices for the console.
func (h *Handler) Entity() *crud.Entity[Invoice] {
	return &crud.Entity[Invoice]{
		Key:      "invoices",
		Singular: "Invoice",
		Plural:   "Invoices",
		BasePath: "/invoices",
		Store:    h.invoices,
		Columns: []crud.Column[Invoice]{
			{Label: "Invoice no.", Value: func(i Invoice) string { return i.InvoiceNumber }},
			{Label: "Customer", Value: func(i Invoice) string { return strconv.FormatInt(i.Customer, 10) }, Lookup: "customers"},
			{Label: "Date", Value: func(i Invoice) string { return view.FormatDate(i.InvoiceDate) }},
			{Label: "Due", Value: func(i Invoice) string { return view.FormatDate(i.DueDate) }},
			{Label: "Total", Value: func(i Invoice) string { return view.FormatMoney(i.Total) }},
			{Label: "Balance", Value: func(i Invoice) string { return view.FormatMoney(i.AmountDue()) }},
			{Label: "Status", Value: func(i Invoice) string { return view.Title(i.DisplayStatus(h.today())) }, Badge: func(i Invoice) string {
				return statusBadge(i.DisplayStatus(h.today()))
			}},
		},
		Fields: []crud.Field{
			{Name: "invoice_number", Label: "Invoice number", Required: true},
			{Name: "order", Label: "Order", Kind: crud.KindSelect, Required: true, Lookup: "orders"},
			{Name: "customer", Label: "Customer", Kind: crud.KindSelect, Required: true, Lookup: "customers"},
			{Name: "invoice_date", Label: "Invoice date", Kind: crud.KindDate, Required: true},
			{Name: "due_date", Label: "Due date", Kind: crud.KindDate, Required: true},
			{Name: "subtotal", Label: "Subtotal (INR)", Kind: crud.KindNumber, Step: "0.01"},
			{Name: "tax_amount", Label: "GST (INR)", Kind: crud.KindNumber, Step: "0.01"},
			{Name: "total_amount", Label: "Total (INR)", Kind: crud.KindNumber, Step: "0.01", Help: "Leave blank to add subtotal and GST."},
			{Name: "amount_paid", Label: "Amount paid (INR)", Kind: crud.KindNumber, Step: "0.01"},
			{Name: "status", Label: "Status", Kind: crud.KindSelect, Required: true, Choices: statusChoices, Help: "Recomputed from the amount paid unless cancelled."},
			{Name: "notes", Label: "Notes", Kind: crud.KindTextarea},
		},
		Lookups: map[string]crud.Lookup{
			"orders":    crud.Options(h.orders.Orders, func(o orders.Order) string { return o.OrderNumber }),
			"customers": crud.Options(h.orders.Customers, func(c customers.Customer) string { return c.Name }),
		},
		Search: func(i Invoice) []string {
			return []string{i.InvoiceNumber, i.Notes}
		},
		Status:   func(i Invoice) string { return i.DisplayStatus(h.today()) },
		Statuses: []string{StatusUnpaid, StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled},
		Label:    func(i Invoice) string { return i.InvoiceNumber },
		New: func() Invoice {
			today := h.today()
			return Invoice{InvoiceDate: today, DueDate: today.AddDays(customers.DefaultPaymentTermsDays), Status: StatusUnpaid}
		},
		Prepare: func(_ context.Context, i *Invoice) error {
			i.InvoiceNumber = strings.ToUpper(strings.TrimSpace(i.InvoiceNumber))
			i.Notes = view.Sanitize(i.Notes)
			i.Subtotal = i.Subtotal.Round(2)
			i.TaxAmount = i.TaxAmount.Round(2)
			i.AmountPaid = i.AmountPaid.Round(2)
			if i.Total.IsZero() {
				i.Total = i.Subtotal.Add(i.TaxAmount)
			}
			i.Total = i.Total.Round(2)
			if i.Status != "" {
				i.Status = i.PaymentStatus()
			}
			return nil
		},
		Check: func(i Invoice) map[string]string {
			errs := make(map[string]string)
			if !i.DueDate.IsZero() && !i.InvoiceDate.IsZero() && i.DueDate.Before(i.InvoiceDate.Time) {
				errs["due_date"] = "Must not be before the invoice date."
			}
			if !i.Total.Equal(i.Subtotal.Add(i.TaxAmount)) {
				errs["total_amount"] = "Must equal subtotal plus GST."
			}
			if i.AmountPaid.GreaterThan(i.Total) {
				errs["amount_paid"] = "Cannot exceed the invoice total."
			}
			return errs
		},
		Links: func(i Invoice) []crud.Link {
			return []crud.Link{
				{Label: "PDF", URL: invoicePath(i.ID) + "/pdf"},
				{Label: "Order", URL: "/orders/" + strconv.FormatInt(i.Order, 10)},
			}
		},
		Routes: h.routes,
	}
}

func (h *Handler) routes(r chi.Router) {
	r.Post("/from-order/{order}", h.fromOrder)
	r.Get("/{id}/pdf", h.pdf)
}

func (h *Handler) fromOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := crud.IDParam(r, "order")
	if !ok {
		h.deps.Redirect(w, r, "/orders", shared.FlashError, "That order no longer exists.")
		return
	}
	back := "/orders/" + strconv.FormatInt(orderID, 10)
	ctx := r.Context()
	src, err := orders.LoadSource(ctx, h.orders, orderID)
	if err != nil {
		h.deps.Fail(w, r, err, back)
		return
	}
	if src.Order.Status == orders.StatusCancelled {
		h.deps.Redirect(w, r, back, shared.FlashError, "A cancelled order cannot be invoiced.")
		return
	}
	if len(src.Items) == 0 {
		h.deps.Redirect(w, r, back, shared.FlashWarning, "Add at least one line before invoicing.")
		return
	}
	existing, err := h.invoices.List(ctx)
	if err != nil {
		h.deps.Fail(w, r, err, back)
		return
	}
	for _, inv := range existing {
		if inv.Order == orderID && inv.Status != StatusCancelled {
			h.deps.Redirect(w, r, invoicePath(inv.ID), shared.FlashInfo, fmt.Sprintf("Order %s is already invoiced as %s.", src.Order.OrderNumber, inv.InvoiceNumber))
			return
		}
	}
	draft := FromOrder(src.Order, src.Items, src.Customer, h.today())
	created, err := h.invoices.Create(ctx, draft)
	if err != nil {
		h.deps.Fail(w, r, err, back)
		return
	}
	h.deps.Record(r, "create", "invoices", created.ID, map[string]any{"label": created.InvoiceNumber, "order": orderID})
	h.deps.Redirect(w, r, invoicePath(created.ID), shared.FlashSuccess, fmt.Sprintf("Invoice %s raised for %s.", created.InvoiceNumber, view.FormatMoney(created.Total)))
}

// Document assembles the printable invoice.
func (h *Handler) Document(ctx context.Context, inv Invoice) (report.InvoiceDocument, error) {
	src, err := orders.LoadSource(ctx, h.orders, inv.Order)
	if err != nil {
		return report.InvoiceDocument{}, err
	}
	return report.InvoiceDocument{
		Number:      inv.InvoiceNumber,
		Date:        inv.InvoiceDate,
		DueDate:     inv.DueDate,
		OrderNumber: src.Order.OrderNumber,
		Customer:    src.Party(),
		Lines:       src.Lines(),
		Subtotal:    inv.Subtotal,
		Tax:         inv.TaxAmount,
		Total:       inv.Total,
		Paid:        inv.AmountPaid,
		AmountDue:   inv.AmountDue(),
		Status:      inv.DisplayStatus(h.today()),
		Notes:       inv.Notes,
	}, nil
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, ok := crud.IDParam(r, "id")
	if !ok {
		h.deps.RenderError(w, r, http.StatusNotFound, "The invoice you asked for does not exist.", "/invoices")
		return
	}
	ctx := r.Context()
	inv, err := h.invoices.Get(ctx, id)
	if err != nil {
		h.deps.Fail(w, r, err, "/invoices")
		return
	}
	doc, err := h.Document(ctx, inv)
	if err != nil {
		h.deps.Fail(w, r, err, invoicePath(id))
		return
	}
	docs := h.reports.Documents()
	h.reports.Serve(w, r, doc.Number+".pdf",
		func(w io.Writer) error { return docs.InvoiceHTML(w, doc) },
		func(ctx context.Context) ([]byte, error) { return docs.InvoicePDF(ctx, doc) },
	)
}
