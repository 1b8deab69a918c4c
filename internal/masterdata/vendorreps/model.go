// Package vendorreps manages sales contacts at vendors.
package vendorreps

// Representative mirrors /api/vendor-representatives/.
type Representative struct {
	ID        int64  `json:"id,omitempty" form:"-"`
	Vendor    int64  `json:"vendor" form:"vendor" validate:"required,gt=0"`
	Name      string `json:"name" form:"name" validate:"required,max=150"`
	Role      string `json:"role" form:"role" validate:"max=100"`
	Email     string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Phone     string `json:"phone" form:"phone" validate:"required,e164"`
	Territory string `json:"territory" form:"territory" validate:"max=100"`
}

// RecordID implements crud.Record.
func (r Representative) RecordID() int64 { return r.ID }
