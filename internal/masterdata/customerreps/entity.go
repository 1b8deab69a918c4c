package customerreps

import (
	"context"
	"strconv"
	"strings"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/customer-representatives/"

// NewEntity describes customer representatives. The customer store feeds the
// customer select and the customer name column.
func NewEntity(store crud.Store[Representative], customerStore crud.Store[customers.Customer]) *crud.Entity[Representative] {
	return &crud.Entity[Representative]{
		Key:      "customer-representatives",
		Singular: "Customer representative",
		Plural:   "Customer representatives",
		BasePath: "/customer-representatives",
		Store:    store,
		Columns: []crud.Column[Representative]{
			{Label: "Name", Value: func(r Representative) string { return r.Name }},
			{Label: "Customer", Value: func(r Representative) string { return strconv.FormatInt(r.Customer, 10) }, Lookup: "customers"},
			{Label: "Designation", Value: func(r Representative) string { return r.Designation }},
			{Label: "Email", Value: func(r Representative) string { return r.Email }},
			{Label: "Phone", Value: func(r Representative) string { return r.Phone }},
			{Label: "Primary", Value: primaryLabel, Badge: primaryBadge},
		},
		Fields: []crud.Field{
			{Name: "customer", Label: "Customer", Kind: crud.KindSelect, Required: true, Lookup: "customers"},
			{Name: "name", Label: "Name", Required: true},
			{Name: "designation", Label: "Designation"},
			{Name: "department", Label: "Department"},
			{Name: "email", Label: "Email", Kind: crud.KindEmail},
			{Name: "phone", Label: "Phone", Kind: crud.KindTel, Required: true},
			{Name: "is_primary", Label: "Primary contact", Kind: crud.KindCheckbox},
		},
		Lookups: map[string]crud.Lookup{
			"customers": crud.Options(customerStore, func(c customers.Customer) string { return c.Name }),
		},
		Search: func(r Representative) []string {
			return []string{r.Name, r.Designation, r.Department, r.Email, r.Phone}
		},
		Label: func(r Representative) string { return r.Name },
		Prepare: func(_ context.Context, r *Representative) error {
			r.Name = view.Sanitize(r.Name)
			r.Designation = view.Sanitize(r.Designation)
			r.Department = view.Sanitize(r.Department)
			r.Email = strings.ToLower(strings.TrimSpace(r.Email))
			r.Phone = strings.ReplaceAll(strings.TrimSpace(r.Phone), " ", "")
			return nil
		},
	}
}

func primaryLabel(r Representative) string {
	if r.IsPrimary {
		return "Primary"
	}
	return ""
}

func primaryBadge(r Representative) string {
	if r.IsPrimary {
		return "info"
	}
	return ""
}
