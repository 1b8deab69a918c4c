package customers

import (
	"context"
	"strings"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/gst"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/customers/"

var typeChoices = []crud.Option{
	{Value: "hospital", Label: "Hospital"},
	{Value: "laboratory", Label: "Laboratory"},
	{Value: "pharmacy", Label: "Pharmacy"},
	{Value: "clinic", Label: "Clinic"},
	{Value: "distributor", Label: "Distributor"},
}

// NewEntity describes customers for the console.
func NewEntity(store crud.Store[Customer]) *crud.Entity[Customer] {
	return &crud.Entity[Customer]{
		Key:      "customers",
		Singular: "Customer",
		Plural:   "Customers",
		BasePath: "/customers",
		Store:    store,
		Columns: []crud.Column[Customer]{
			{Label: "Name", Value: func(c Customer) string { return c.Name }},
			{Label: "Type", Value: func(c Customer) string { return view.Title(c.CustomerType) }},
			{Label: "City", Value: func(c Customer) string { return c.City }},
			{Label: "GSTIN", Value: func(c Customer) string { return c.GSTIN }},
			{Label: "Phone", Value: func(c Customer) string { return c.Phone }},
			{Label: "Credit limit", Value: func(c Customer) string { return view.FormatMoney(c.CreditLimit) }},
			{Label: "Status", Value: func(c Customer) string { return view.Title(c.Status) }, Badge: func(c Customer) string { return c.Status }},
		},
		Fields: []crud.Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "customer_type", Label: "Type", Kind: crud.KindSelect, Required: true, Choices: typeChoices},
			{Name: "email", Label: "Email", Kind: crud.KindEmail},
			{Name: "phone", Label: "Phone", Kind: crud.KindTel},
			{Name: "gstin", Label: "GSTIN"},
			{Name: "drug_license_no", Label: "Drug licence no."},
			{Name: "address", Label: "Address", Kind: crud.KindTextarea},
			{Name: "city", Label: "City", Required: true},
			{Name: "state", Label: "State", Required: true},
			{Name: "pincode", Label: "PIN code"},
			{Name: "credit_limit", Label: "Credit limit (INR)", Kind: crud.KindNumber, Step: "0.01"},
			{Name: "payment_terms_days", Label: "Payment terms (days)", Kind: crud.KindNumber, Step: "1"},
			{Name: "status", Label: "Status", Kind: crud.KindSelect, Required: true, Choices: []crud.Option{
				{Value: StatusActive, Label: "Active"},
				{Value: StatusInactive, Label: "Inactive"},
			}},
		},
		Search: func(c Customer) []string {
			return []string{c.Name, c.CustomerType, c.Email, c.Phone, c.GSTIN, c.City, c.State, c.DrugLicenseNo}
		},
		Status:   func(c Customer) string { return c.Status },
		Statuses: []string{StatusActive, StatusInactive},
		Label:    func(c Customer) string { return c.Name },
		New: func() Customer {
			return Customer{Status: StatusActive, CustomerType: "hospital", PaymentTermsDays: DefaultPaymentTermsDays}
		},
		Prepare: func(_ context.Context, c *Customer) error {
			c.Name = view.Sanitize(c.Name)
			c.Email = strings.ToLower(strings.TrimSpace(c.Email))
			c.Phone = strings.ReplaceAll(strings.TrimSpace(c.Phone), " ", "")
			c.GSTIN = gst.Normalize(c.GSTIN)
			c.DrugLicenseNo = strings.ToUpper(strings.TrimSpace(c.DrugLicenseNo))
			c.Address = view.Sanitize(c.Address)
			c.City = view.Sanitize(c.City)
			c.State = view.Sanitize(c.State)
			return nil
		},
		Check: func(c Customer) map[string]string {
			if msg := gst.Check(c.GSTIN); msg != "" {
				return map[string]string{"gstin": msg}
			}
			return nil
		},
	}
}
