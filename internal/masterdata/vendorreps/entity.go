package vendorreps

import (
	"context"
	"strconv"
	"strings"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendors"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/vendor-representatives/"

// NewEntity describes vendor representatives.
func NewEntity(store crud.Store[Representative], vendorStore crud.Store[vendors.Vendor]) *crud.Entity[Representative] {
	return &crud.Entity[Representative]{
		Key:      "vendor-representatives",
		Singular: "Vendor representative",
		Plural:   "Vendor representatives",
		BasePath: "/vendor-representatives",
		Store:    store,
		Columns: []crud.Column[Representative]{
			{Label: "Name", Value: func(r Representative) string { return r.Name }},
			{Label: "Vendor", Value: func(r Representative) string { return strconv.FormatInt(r.Vendor, 10) }, Lookup: "vendors"},
			{Label: "Role", Value: func(r Representative) string { return r.Role }},
			{Label: "Territory", Value: func(r Representative) string { return r.Territory }},
			{Label: "Phone", Value: func(r Representative) string { return r.Phone }},
			{Label: "Email", Value: func(r Representative) string { return r.Email }},
		},
		Fields: []crud.Field{
			{Name: "vendor", Label: "Vendor", Kind: crud.KindSelect, Required: true, Lookup: "vendors"},
			{Name: "name", Label: "Name", Required: true},
			{Name: "role", Label: "Role"},
			{Name: "territory", Label: "Territory"},
			{Name: "email", Label: "Email", Kind: crud.KindEmail},
			{Name: "phone", Label: "Phone", Kind: crud.KindTel, Required: true},
		},
		Lookups: map[string]crud.Lookup{
			"vendors": crud.Options(vendorStore, func(v vendors.Vendor) string { return v.Name }),
		},
		Search: func(r Representative) []string {
			return []string{r.Name, r.Role, r.Territory, r.Email, r.Phone}
		},
		Label: func(r Representative) string { return r.Name },
		Prepare: func(_ context.Context, r *Representative) error {
			r.Name = view.Sanitize(r.Name)
			r.Role = view.Sanitize(r.Role)
			r.Territory = view.Sanitize(r.Territory)
			r.Email = strings.ToLower(strings.TrimSpace(r.Email))
			r.Phone = strings.ReplaceAll(strings.TrimSpace(r.Phone), " ", "")
			return nil
		},
	}
}
