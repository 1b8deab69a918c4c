// Package customers manages hospitals, labs and pharmacies buying from Vivionix.
package customers

import "github.com/shopspring/decimal"

// Statuses of a customer account.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultPaymentTermsDays applies when a customer has no terms configured.
const DefaultPaymentTermsDays = 30

// Customer mirrors /api/customers/.
type Customer struct {
	ID               int64           `json:"id,omitempty" form:"-"`
	Name             string          `json:"name" form:"name" validate:"required,max=200"`
	CustomerType     string          `json:"customer_type" form:"customer_type" validate:"required,oneof=hospital laboratory pharmacy clinic distributor"`
	Email            string          `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Phone            string          `json:"phone" form:"phone" validate:"omitempty,e164"`
	GSTIN            string          `json:"gstin" form:"gstin" validate:"omitempty,len=15"`
	DrugLicenseNo    string          `json:"drug_license_no" form:"drug_license_no" validate:"max=50"`
	Address          string          `json:"address" form:"address" validate:"max=500"`
	City             string          `json:"city" form:"city" validate:"required,max=100"`
	State            string          `json:"state" form:"state" validate:"required,max=100"`
	Pincode          string          `json:"pincode" form:"pincode" validate:"omitempty,len=6,numeric"`
	CreditLimit      decimal.Decimal `json:"credit_limit" form:"credit_limit" validate:"gte=0"`
	PaymentTermsDays int             `json:"payment_terms_days" form:"payment_terms_days" validate:"gte=0,lte=365"`
	Status           string          `json:"status" form:"status" validate:"required,oneof=active inactive"`
}

// RecordID implements crud.Record.
func (c Customer) RecordID() int64 { return c.ID }

// Terms returns the payment terms in days, falling back to the default.
func (c Customer) Terms() int {
	if c.PaymentTermsDays > 0 {
		return c.PaymentTermsDays
	}
	return DefaultPaymentTermsDays
}
