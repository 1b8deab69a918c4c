package products

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/crud"
)

func TestSummaryRendersSanitisedFirstParagraph(t *testing.T) {
	html := string(summary(Product{Description: "**Sterile** nitrile gloves <script>alert(1)</script>\n\nSecond paragraph"}))
	assert.Contains(t, html, "<strong>Sterile</strong>")
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "Second paragraph")
}

func TestCheckRejectsUnknownGSTSlab(t *testing.T) {
	entity := NewEntity(nil, nil)
	p := entity.New()
	p.GSTRate = decimal.NewFromInt(7)
	assert.Contains(t, entity.Check(p), "gst_rate")

	p.GSTRate = decimal.NewFromInt(18)
	assert.Empty(t, entity.Check(p))
}

func TestPrepareAndValidate(t *testing.T) {
	entity := NewEntity(nil, nil)
	p := Product{SKU: " gl-100 ", Name: "Gloves", Category: "consumable", Unit: "box", BasePrice: decimal.RequireFromString("349.999"), GSTRate: decimal.NewFromInt(12), Status: StatusActive}
	require.NoError(t, entity.Prepare(context.Background(), &p))
	assert.Equal(t, "GL-100", p.SKU)
	assert.Equal(t, "350.00", p.BasePrice.StringFixed(2))
	assert.Empty(t, crud.NewBinder().Validate(p))
	assert.True(t, strings.HasPrefix(p.DisplayName(), "GL-100"))

	errs := crud.NewBinder().Validate(Product{HSNCode: "12ab"})
	assert.Contains(t, errs, "sku")
	assert.Contains(t, errs, "base_price")
	assert.Contains(t, errs, "hsn_code")
}
