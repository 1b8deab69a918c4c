// Package employees manages staff records.
package employees

import "github.com/vivionix/vivionix-admin/internal/shared"

// Statuses of an employee record.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Employee mirrors /api/employees/.
type Employee struct {
	ID            int64       `json:"id,omitempty" form:"-"`
	EmployeeCode  string      `json:"employee_code" form:"employee_code" validate:"required,max=20"`
	FirstName     string      `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName      string      `json:"last_name" form:"last_name" validate:"max=100"`
	Email         string      `json:"email" form:"email" validate:"required,email,max=254"`
	Phone         string      `json:"phone" form:"phone" validate:"omitempty,e164"`
	Designation   string      `json:"designation" form:"designation" validate:"max=100"`
	Department    string      `json:"department" form:"department" validate:"max=100"`
	DateOfJoining shared.Date `json:"date_of_joining" form:"date_of_joining" validate:"required"`
	Status        string      `json:"status" form:"status" validate:"required,oneof=active inactive"`
}

// RecordID implements crud.Record.
func (e Employee) RecordID() int64 { return e.ID }

// FullName joins first and last name.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
