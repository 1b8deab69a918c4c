package products

import (
	"context"
	"html/template"
	"strconv"
	"strings"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendors"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/products/"

var categoryChoices = []crud.Option{
	{Value: "consumable", Label: "Consumable"},
	{Value: "instrument", Label: "Instrument"},
	{Value: "reagent", Label: "Reagent"},
	{Value: "equipment", Label: "Equipment"},
	{Value: "pharmaceutical", Label: "Pharmaceutical"},
}

func gstChoices() []crud.Option {
	out := make([]crud.Option, 0, len(GSTRates))
	for _, r := range GSTRates {
		out = append(out, crud.Option{Value: r.String(), Label: r.String() + "%"})
	}
	return out
}

// NewEntity describes the product catalogue.
func NewEntity(store crud.Store[Product], vendorStore crud.Store[vendors.Vendor]) *crud.Entity[Product] {
	return &crud.Entity[Product]{
		Key:      "products",
		Singular: "Product",
		Plural:   "Products",
		BasePath: "/products",
		Store:    store,
		Columns: []crud.Column[Product]{
			{Label: "SKU", Value: func(p Product) string { return p.SKU }},
			{Label: "Name", Value: func(p Product) string { return p.Name }},
			{Label: "Category", Value: func(p Product) string { return view.Title(p.Category) }},
			{Label: "Vendor", Value: func(p Product) string { return strconv.FormatInt(p.Vendor, 10) }, Lookup: "vendors"},
			{Label: "Base price", Value: func(p Product) string { return view.FormatMoney(p.BasePrice) }},
			{Label: "GST", Value: func(p Product) string { return p.GSTRate.String() + "%" }},
			{Label: "Summary", HTML: summary},
			{Label: "Status", Value: func(p Product) string { return view.Title(p.Status) }, Badge: func(p Product) string {
				if p.Status == StatusDiscontinued {
					return "muted"
				}
				return p.Status
			}},
		},
		Fields: []crud.Field{
			{Name: "sku", Label: "SKU", Required: true},
			{Name: "name", Label: "Name", Required: true},
			{Name: "category", Label: "Category", Kind: crud.KindSelect, Required: true, Choices: categoryChoices},
			{Name: "vendor", Label: "Vendor", Kind: crud.KindSelect, Lookup: "vendors"},
			{Name: "hsn_code", Label: "HSN code", Help: "4 to 8 digits"},
			{Name: "unit", Label: "Unit", Required: true, Help: "e.g. box of 100, piece, litre"},
			{Name: "base_price", Label: "Base price (INR)", Kind: crud.KindNumber, Required: true, Step: "0.01"},
			{Name: "gst_rate", Label: "GST rate", Kind: crud.KindSelect, Required: true, Choices: gstChoices()},
			{Name: "reorder_level", Label: "Reorder level", Kind: crud.KindNumber, Step: "1", Help: "Stock at or below this quantity is flagged as low."},
			{Name: "description", Label: "Description", Kind: crud.KindMarkdown, Help: "Markdown is supported."},
			{Name: "status", Label: "Status", Kind: crud.KindSelect, Required: true, Choices: []crud.Option{
				{Value: StatusActive, Label: "Active"},
				{Value: StatusDiscontinued, Label: "Discontinued"},
			}},
		},
		Lookups: map[string]crud.Lookup{
			"vendors": crud.Options(vendorStore, func(v vendors.Vendor) string { return v.Name }),
		},
		Search: func(p Product) []string {
			return []string{p.SKU, p.Name, p.Category, p.HSNCode, p.Description}
		},
		Status:   func(p Product) string { return p.Status },
		Statuses: []string{StatusActive, StatusDiscontinued},
		Label:    Product.DisplayName,
		New:      func() Product { return Product{Status: StatusActive, Category: "consumable", Unit: "piece", GSTRate: GSTRates[2]} },
		Prepare: func(_ context.Context, p *Product) error {
			p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
			p.Name = view.Sanitize(p.Name)
			p.HSNCode = strings.TrimSpace(p.HSNCode)
			p.Unit = view.Sanitize(p.Unit)
			// Markdown source is stored as typed; rendering sanitises it.
			p.Description = strings.TrimSpace(p.Description)
			p.BasePrice = p.BasePrice.Round(2)
			return nil
		},
		Check: func(p Product) map[string]string {
			if !ValidGSTRate(p.GSTRate) {
				return map[string]string{"gst_rate": "Choose a GST slab of 0, 5, 12, 18 or 28%."}
			}
			return nil
		},
	}
}

// summary renders the first paragraph of the description.
func summary(p Product) template.HTML {
	first, _, _ := strings.Cut(strings.TrimSpace(p.Description), "\n\n")
	return view.Markdown(first)
}
