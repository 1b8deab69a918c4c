package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

type gotenberg struct {
	server *httptest.Server
	fail   bool
	html   string
	fields map[string]string
}

func newGotenberg(t *testing.T) *gotenberg {
	t.Helper()
	g := &gotenberg{fields: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if g.fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"up"}`))
	})
	mux.HandleFunc("/forms/chromium/convert/html", func(w http.ResponseWriter, r *http.Request) {
		if g.fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("chromium crashed"))
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("files")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(file)
		g.html = string(body)
		for key := range a4 {
			g.fields[key] = r.FormValue(key)
		}
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	})
	g.server = httptest.NewServer(mux)
	t.Cleanup(g.server.Close)
	return g
}

func sampleInvoice() InvoiceDocument {
	return InvoiceDocument{
		Number:      "INV-0042",
		Date:        shared.NewDate(2026, time.March, 2),
		DueDate:     shared.NewDate(2026, time.April, 1),
		OrderNumber: "SO-0042",
		Customer:    Party{Name: "Sahyadri Hospital", City: "Pune", State: "Maharashtra"},
		Lines: []Line{{
			Description: "Nitrile gloves",
			SKU:         "GLV-NIT-M",
			Unit:        "box",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(100),
			Amount:      decimal.NewFromInt(200),
			Tax:         decimal.NewFromInt(24),
			Total:       decimal.NewFromInt(224),
		}},
		Subtotal:  decimal.NewFromInt(200),
		Tax:       decimal.NewFromInt(24),
		Total:     decimal.NewFromInt(224),
		Paid:      decimal.Zero,
		AmountDue: decimal.NewFromInt(224),
		Status:    "unpaid",
	}
}

func newDocuments(t *testing.T, client *Client) *Documents {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	return NewDocuments(engine, client)
}

func serveInvoice(h *Handler, target string) *httptest.ResponseRecorder {
	doc := sampleInvoice()
	docs := h.Documents()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, target, nil), doc.Number+".pdf",
		func(w io.Writer) error { return docs.InvoiceHTML(w, doc) },
		func(ctx context.Context) ([]byte, error) { return docs.InvoicePDF(ctx, doc) },
	)
	return rec
}

func TestNewClientWithoutURLIsNil(t *testing.T) {
	assert.Nil(t, NewClient("  ", time.Second))
	assert.False(t, NewDocuments(nil, nil).PDFEnabled())

	var c *Client
	require.ErrorIs(t, c.Ping(context.Background()), ErrNotConfigured)
	_, err := c.RenderHTML(context.Background(), "<html></html>")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestServeStreamsPDF(t *testing.T) {
	g := newGotenberg(t)
	h := NewHandler(newDocuments(t, NewClient(g.server.URL+"/", time.Second)), nil)

	rec := serveInvoice(h, "/invoices/42/pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="INV-0042.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7 fake", rec.Body.String())

	assert.Contains(t, g.html, "INV-0042")
	assert.Contains(t, g.html, "Sahyadri Hospital")
	assert.Contains(t, g.html, "Nitrile gloves")
	assert.Equal(t, "8.27", g.fields["paperWidth"])
	assert.Equal(t, "true", g.fields["printBackground"])
}

func TestServeFallsBackToHTML(t *testing.T) {
	h := NewHandler(newDocuments(t, nil), nil)
	rec := serveInvoice(h, "/invoices/42/pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "INV-0042")

	g := newGotenberg(t)
	h = NewHandler(newDocuments(t, NewClient(g.server.URL, time.Second)), nil)
	rec = serveInvoice(h, "/invoices/42/pdf?format=html")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, g.html, "gotenberg not called for html previews")
}

func TestServeReportsGotenbergFailure(t *testing.T) {
	g := newGotenberg(t)
	g.fail = true
	h := NewHandler(newDocuments(t, NewClient(g.server.URL, time.Second)), nil)
	rec := serveInvoice(h, "/invoices/42/pdf")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "The PDF service is unavailable."))
}

func TestPing(t *testing.T) {
	g := newGotenberg(t)
	h := NewHandler(newDocuments(t, NewClient(g.server.URL, time.Second)), nil)

	rec := httptest.NewRecorder()
	h.ping(rec, httptest.NewRequest(http.MethodGet, "/reports/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	g.fail = true
	rec = httptest.NewRecorder()
	h.ping(rec, httptest.NewRequest(http.MethodGet, "/reports/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(newDocuments(t, nil), nil).ping(rec, httptest.NewRequest(http.MethodGet, "/reports/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
