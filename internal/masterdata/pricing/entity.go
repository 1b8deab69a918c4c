package pricing

import (
	"context"
	"strconv"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/customer-product-prices/"

// NewEntity describes customer prices. Customer and product stores feed the selects.
func NewEntity(store crud.Store[CustomerPrice], customerStore crud.Store[customers.Customer], productStore crud.Store[products.Product]) *crud.Entity[CustomerPrice] {
	return &crud.Entity[CustomerPrice]{
		Key:      "pricing",
		Singular: "Customer price",
		Plural:   "Customer pricing",
		BasePath: "/pricing",
		Store:    store,
		Columns: []crud.Column[CustomerPrice]{
			{Label: "Customer", Value: func(p CustomerPrice) string { return strconv.FormatInt(p.Customer, 10) }, Lookup: "customers"},
			{Label: "Product", Value: func(p CustomerPrice) string { return strconv.FormatInt(p.Product, 10) }, Lookup: "products"},
			{Label: "Price", Value: func(p CustomerPrice) string { return view.FormatMoney(p.Price) }},
			{Label: "Discount", Value: func(p CustomerPrice) string { return p.DiscountPercent.String() + "%" }},
			{Label: "Effective", Value: func(p CustomerPrice) string { return view.FormatMoney(p.Effective()) }},
			{Label: "Valid", Value: CustomerPrice.Window},
		},
		Fields: []crud.Field{
			{Name: "customer", Label: "Customer", Kind: crud.KindSelect, Required: true, Lookup: "customers"},
			{Name: "product", Label: "Product", Kind: crud.KindSelect, Required: true, Lookup: "products"},
			{Name: "price", Label: "Agreed price (INR)", Kind: crud.KindNumber, Required: true, Step: "0.01"},
			{Name: "discount_percent", Label: "Discount (%)", Kind: crud.KindNumber, Step: "0.01"},
			{Name: "valid_from", Label: "Valid from", Kind: crud.KindDate, Required: true},
			{Name: "valid_to", Label: "Valid to", Kind: crud.KindDate, Help: "Leave blank for an open ended price."},
			{Name: "notes", Label: "Notes", Kind: crud.KindTextarea},
		},
		Lookups: map[string]crud.Lookup{
			"customers": crud.Options(customerStore, func(c customers.Customer) string { return c.Name }),
			"products":  crud.Options(productStore, products.Product.DisplayName),
		},
		Search: func(p CustomerPrice) []string { return []string{p.Notes} },
		Label: func(p CustomerPrice) string {
			return "Price #" + strconv.FormatInt(p.ID, 10)
		},
		Prepare: func(_ context.Context, p *CustomerPrice) error {
			p.Price = p.Price.Round(2)
			p.Notes = view.Sanitize(p.Notes)
			return nil
		},
		Check: func(p CustomerPrice) map[string]string {
			if p.ValidTo != nil && !p.ValidFrom.IsZero() && p.ValidTo.Before(p.ValidFrom.Time) {
				return map[string]string{"valid_to": "Must not be before the start date."}
			}
			return nil
		},
	}
}
