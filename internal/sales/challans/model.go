// Package challans manages delivery challans that accompany dispatched goods.
package challans

import "github.com/vivionix/vivionix-admin/internal/shared"

// Challan statuses.
const (
	StatusDraft      = "draft"
	StatusDispatched = "dispatched"
	StatusDelivered  = "delivered"
	StatusReturned   = "returned"
)

// Statuses lists every challan status.
var Statuses = []string{StatusDraft, StatusDispatched, StatusDelivered, StatusReturned}

// Challan mirrors /api/delivery-challans/.
type Challan struct {
	ID            int64        `json:"id,omitempty" form:"-"`
	ChallanNumber string       `json:"challan_number" form:"challan_number" validate:"required,max=30"`
	Order         int64        `json:"order" form:"order" validate:"required,gt=0"`
	ChallanDate   shared.Date  `json:"challan_date" form:"challan_date" validate:"required"`
	Transporter   string       `json:"transporter" form:"transporter" validate:"max=150"`
	VehicleNumber string       `json:"vehicle_number" form:"vehicle_number" validate:"max=20"`
	DeliveredOn   *shared.Date `json:"delivered_on" form:"delivered_on"`
	Status        string       `json:"status" form:"status" validate:"required,oneof=draft dispatched delivered returned"`
	Remarks       string       `json:"remarks" form:"remarks" validate:"max=1000"`
}

// RecordID implements crud.Record.
func (c Challan) RecordID() int64 { return c.ID }
