// Package vendors manages manufacturers and suppliers.
package vendors

// Statuses of a vendor account.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
)

// Vendor mirrors /api/vendors/.
type Vendor struct {
	ID               int64  `json:"id,omitempty" form:"-"`
	Name             string `json:"name" form:"name" validate:"required,max=200"`
	ContactEmail     string `json:"contact_email" form:"contact_email" validate:"omitempty,email,max=254"`
	Phone            string `json:"phone" form:"phone" validate:"omitempty,e164"`
	GSTIN            string `json:"gstin" form:"gstin" validate:"omitempty,len=15"`
	DrugLicenseNo    string `json:"drug_license_no" form:"drug_license_no" validate:"required,max=50"`
	Address          string `json:"address" form:"address" validate:"max=500"`
	City             string `json:"city" form:"city" validate:"required,max=100"`
	State            string `json:"state" form:"state" validate:"required,max=100"`
	PaymentTermsDays int    `json:"payment_terms_days" form:"payment_terms_days" validate:"gte=0,lte=365"`
	Status           string `json:"status" form:"status" validate:"required,oneof=active inactive blocked"`
}

// RecordID implements crud.Record.
func (v Vendor) RecordID() int64 { return v.ID }
