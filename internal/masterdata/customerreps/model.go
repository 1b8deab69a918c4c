// Package customerreps manages contact persons at customer sites.
package customerreps

// Representative mirrors /api/customer-representatives/.
type Representative struct {
	ID          int64  `json:"id,omitempty" form:"-"`
	Customer    int64  `json:"customer" form:"customer" validate:"required,gt=0"`
	Name        string `json:"name" form:"name" validate:"required,max=150"`
	Designation string `json:"designation" form:"designation" validate:"max=100"`
	Department  string `json:"department" form:"department" validate:"max=100"`
	Email       string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Phone       string `json:"phone" form:"phone" validate:"required,e164"`
	IsPrimary   bool   `json:"is_primary" form:"is_primary"`
}

// RecordID implements crud.Record.
func (r Representative) RecordID() int64 { return r.ID }
