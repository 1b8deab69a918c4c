package view

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err, "Templates should parse without error")
	for _, name := range []string{"pages/login.html", "pages/home.html", "pages/entity_list.html", "pages/entity_form.html", "pages/entity_show.html", "pages/stock.html", "pages/order_show.html", "pages/activity.html", "pages/error.html", "documents/invoice.html", "documents/challan.html"} {
		assert.True(t, engine.Has(name), name)
	}
}

func TestRenderLoginIncludesFlashAndCSRF(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{
		Title:     "Sign in",
		CSRFToken: "tok-123",
		Flashes:   []shared.FlashMessage{{Kind: shared.FlashWarning, Message: "Your session has timed out"}},
		Data:      map[string]any{"Username": "asha", "Next": "/stock", "Errors": map[string]string{}},
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, `name="csrf_token" value="tok-123"`)
	assert.Contains(t, body, "Your session has timed out")
	assert.Contains(t, body, "<form")
}

func TestExecuteUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, engine.Execute(&buf, "pages/missing.html", TemplateData{}))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "05 Mar 2026", FormatDate(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)))
	var nilTime *time.Time
	assert.Equal(t, "", FormatDate(nilTime))

	money := FormatMoney(decimal.RequireFromString("123456.789"))
	assert.Contains(t, money, "INR")
	assert.Contains(t, money, "456.79")
	assert.Equal(t, "Expiring soon", Title("expiring_soon"))
}

func TestMarkdownIsSanitised(t *testing.T) {
	html := string(Markdown("**Sterile** pack\n\n<script>alert(1)</script>"))
	assert.Contains(t, html, "<strong>Sterile</strong>")
	assert.NotContains(t, html, "<script>")
	assert.Equal(t, "Gloves", Sanitize("<b>Gloves</b>"))
	assert.Equal(t, "Johnson & Johnson", Sanitize("Johnson & Johnson"))
}
