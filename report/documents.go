package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// Party is the billed or consignee party on a document.
type Party struct {
	Name    string
	Address string
	City    string
	State   string
	Pincode string
	GSTIN   string
	Phone   string
}

// Line is one product row on a document.
type Line struct {
	Description string
	SKU         string
	HSN         string
	Unit        string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	GSTRate     decimal.Decimal
	Amount      decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// InvoiceDocument is the data of documents/invoice.html.
type InvoiceDocument struct {
	Number      string
	Date        shared.Date
	DueDate     shared.Date
	OrderNumber string
	Customer    Party
	Lines       []Line
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	Paid        decimal.Decimal
	AmountDue   decimal.Decimal
	Status      string
	Notes       string
}

// ChallanDocument is the data of documents/challan.html.
type ChallanDocument struct {
	Number      string
	Date        shared.Date
	OrderNumber string
	Customer    Party
	Transporter string
	VehicleNo   string
	Lines       []Line
	Units       int
	Remarks     string
}

// Documents renders invoices and challans from the embedded templates.
type Documents struct {
	engine *view.Engine
	client *Client
}

// NewDocuments builds the renderer. A nil client leaves PDF export disabled
// while HTML rendering keeps working.
func NewDocuments(engine *view.Engine, client *Client) *Documents {
	return &Documents{engine: engine, client: client}
}

// PDFEnabled reports whether a Gotenberg client is configured.
func (d *Documents) PDFEnabled() bool {
	return d != nil && d.client != nil
}

// InvoiceHTML writes the printable invoice.
func (d *Documents) InvoiceHTML(w io.Writer, doc InvoiceDocument) error {
	return d.engine.Execute(w, "documents/invoice.html", view.TemplateData{Title: "Tax invoice " + doc.Number, Data: doc})
}

// ChallanHTML writes the printable delivery challan.
func (d *Documents) ChallanHTML(w io.Writer, doc ChallanDocument) error {
	return d.engine.Execute(w, "documents/challan.html", view.TemplateData{Title: "Delivery challan " + doc.Number, Data: doc})
}

// InvoicePDF renders the invoice through Gotenberg.
func (d *Documents) InvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	return d.pdf(ctx, func(w io.Writer) error { return d.InvoiceHTML(w, doc) })
}

// ChallanPDF renders the challan through Gotenberg.
func (d *Documents) ChallanPDF(ctx context.Context, doc ChallanDocument) ([]byte, error) {
	return d.pdf(ctx, func(w io.Writer) error { return d.ChallanHTML(w, doc) })
}

func (d *Documents) pdf(ctx context.Context, render func(io.Writer) error) ([]byte, error) {
	if !d.PDFEnabled() {
		return nil, ErrNotConfigured
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, fmt.Errorf("report: render html: %w", err)
	}
	return d.client.RenderHTML(ctx, buf.String())
}
