package vendors

import (
	"context"
	"strings"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/gst"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/vendors/"

// NewEntity describes vendors for the console.
func NewEntity(store crud.Store[Vendor]) *crud.Entity[Vendor] {
	return &crud.Entity[Vendor]{
		Key:      "vendors",
		Singular: "Vendor",
		Plural:   "Vendors",
		BasePath: "/vendors",
		Store:    store,
		Columns: []crud.Column[Vendor]{
			{Label: "Name", Value: func(v Vendor) string { return v.Name }},
			{Label: "Drug licence", Value: func(v Vendor) string { return v.DrugLicenseNo }},
			{Label: "GSTIN", Value: func(v Vendor) string { return v.GSTIN }},
			{Label: "City", Value: func(v Vendor) string { return v.City }},
			{Label: "Email", Value: func(v Vendor) string { return v.ContactEmail }},
			{Label: "Status", Value: func(v Vendor) string { return view.Title(v.Status) }, Badge: statusBadge},
		},
		Fields: []crud.Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "drug_license_no", Label: "Drug licence no.", Required: true, Help: "Wholesale licence, e.g. MH-MZ1-123456"},
			{Name: "gstin", Label: "GSTIN"},
			{Name: "contact_email", Label: "Contact email", Kind: crud.KindEmail},
			{Name: "phone", Label: "Phone", Kind: crud.KindTel},
			{Name: "address", Label: "Address", Kind: crud.KindTextarea},
			{Name: "city", Label: "City", Required: true},
			{Name: "state", Label: "State", Required: true},
			{Name: "payment_terms_days", Label: "Payment terms (days)", Kind: crud.KindNumber, Step: "1"},
			{Name: "status", Label: "Status", Kind: crud.KindSelect, Required: true, Choices: []crud.Option{
				{Value: StatusActive, Label: "Active"},
				{Value: StatusInactive, Label: "Inactive"},
				{Value: StatusBlocked, Label: "Blocked"},
			}},
		},
		Search: func(v Vendor) []string {
			return []string{v.Name, v.DrugLicenseNo, v.GSTIN, v.ContactEmail, v.Phone, v.City, v.State}
		},
		Status:   func(v Vendor) string { return v.Status },
		Statuses: []string{StatusActive, StatusInactive, StatusBlocked},
		Label:    func(v Vendor) string { return v.Name },
		New:      func() Vendor { return Vendor{Status: StatusActive} },
		Prepare: func(_ context.Context, v *Vendor) error {
			v.Name = view.Sanitize(v.Name)
			v.ContactEmail = strings.ToLower(strings.TrimSpace(v.ContactEmail))
			v.Phone = strings.ReplaceAll(strings.TrimSpace(v.Phone), " ", "")
			v.GSTIN = gst.Normalize(v.GSTIN)
			v.DrugLicenseNo = strings.ToUpper(strings.TrimSpace(v.DrugLicenseNo))
			v.Address = view.Sanitize(v.Address)
			v.City = view.Sanitize(v.City)
			v.State = view.Sanitize(v.State)
			return nil
		},
		Check: func(v Vendor) map[string]string {
			if msg := gst.Check(v.GSTIN); msg != "" {
				return map[string]string{"gstin": msg}
			}
			return nil
		},
	}
}

func statusBadge(v Vendor) string {
	if v.Status == StatusBlocked {
		return "danger"
	}
	return v.Status
}
