package employees

import (
	"context"
	"strings"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/employees/"

// NewEntity describes employees for the console.
func NewEntity(store crud.Store[Employee]) *crud.Entity[Employee] {
	return &crud.Entity[Employee]{
		Key:      "employees",
		Singular: "Employee",
		Plural:   "Employees",
		BasePath: "/employees",
		Store:    store,
		Columns: []crud.Column[Employee]{
			{Label: "Code", Value: func(e Employee) string { return e.EmployeeCode }},
			{Label: "Name", Value: Employee.FullName},
			{Label: "Email", Value: func(e Employee) string { return e.Email }},
			{Label: "Designation", Value: func(e Employee) string { return e.Designation }},
			{Label: "Department", Value: func(e Employee) string { return e.Department }},
			{Label: "Joined", Value: func(e Employee) string { return view.FormatDate(e.DateOfJoining) }},
			{Label: "Status", Value: func(e Employee) string { return view.Title(e.Status) }, Badge: func(e Employee) string { return e.Status }},
		},
		Fields: []crud.Field{
			{Name: "employee_code", Label: "Employee code", Required: true},
			{Name: "first_name", Label: "First name", Required: true},
			{Name: "last_name", Label: "Last name"},
			{Name: "email", Label: "Email", Kind: crud.KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: crud.KindTel, Help: "International format, e.g. +919876543210"},
			{Name: "designation", Label: "Designation"},
			{Name: "department", Label: "Department"},
			{Name: "date_of_joining", Label: "Date of joining", Kind: crud.KindDate, Required: true},
			{Name: "status", Label: "Status", Kind: crud.KindSelect, Required: true, Choices: []crud.Option{
				{Value: StatusActive, Label: "Active"},
				{Value: StatusInactive, Label: "Inactive"},
			}},
		},
		Search: func(e Employee) []string {
			return []string{e.EmployeeCode, e.FullName(), e.Email, e.Phone, e.Designation, e.Department}
		},
		Status:   func(e Employee) string { return e.Status },
		Statuses: []string{StatusActive, StatusInactive},
		Label:    Employee.FullName,
		New:      func() Employee { return Employee{Status: StatusActive} },
		Prepare: func(_ context.Context, e *Employee) error {
			e.EmployeeCode = strings.ToUpper(strings.TrimSpace(e.EmployeeCode))
			e.FirstName = view.Sanitize(e.FirstName)
			e.LastName = view.Sanitize(e.LastName)
			e.Email = strings.ToLower(strings.TrimSpace(e.Email))
			e.Phone = strings.ReplaceAll(strings.TrimSpace(e.Phone), " ", "")
			e.Designation = view.Sanitize(e.Designation)
			e.Department = view.Sanitize(e.Department)
			return nil
		},
	}
}
