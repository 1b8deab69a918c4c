package main

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vivionix/vivionix-admin/internal/inventory/stock"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/employees"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendors"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type productFixture struct {
	SKU          string `yaml:"sku"`
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	Vendor       string `yaml:"vendor"`
	HSNCode      string `yaml:"hsn_code"`
	Unit         string `yaml:"unit"`
	BasePrice    string `yaml:"base_price"`
	GSTRate      string `yaml:"gst_rate"`
	ReorderLevel int    `yaml:"reorder_level"`
}

type customerFixture struct {
	Name             string `yaml:"name"`
	CustomerType     string `yaml:"customer_type"`
	Email            string `yaml:"email"`
	GSTIN            string `yaml:"gstin"`
	City             string `yaml:"city"`
	State            string `yaml:"state"`
	Pincode          string `yaml:"pincode"`
	CreditLimit      string `yaml:"credit_limit"`
	PaymentTermsDays int    `yaml:"payment_terms_days"`
}

type employeeFixture struct {
	EmployeeCode  string `yaml:"employee_code"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	Email         string `yaml:"email"`
	Designation   string `yaml:"designation"`
	Department    string `yaml:"department"`
	DateOfJoining string `yaml:"date_of_joining"`
}

type stockFixture struct {
	Product       string `yaml:"product"`
	BatchNumber   string `yaml:"batch_number"`
	Quantity      int    `yaml:"quantity"`
	ExpiresInDays int    `yaml:"expires_in_days"`
	Location      string `yaml:"location"`
}

type vendorFixture struct {
	Name             string `yaml:"name"`
	ContactEmail     string `yaml:"contact_email"`
	Phone            string `yaml:"phone"`
	GSTIN            string `yaml:"gstin"`
	DrugLicenseNo    string `yaml:"drug_license_no"`
	City             string `yaml:"city"`
	State            string `yaml:"state"`
	PaymentTermsDays int    `yaml:"payment_terms_days"`
}

// Fixtures is the demo data set.
type Fixtures struct {
	Vendors   []vendorFixture   `yaml:"vendors"`
	Products  []productFixture  `yaml:"products"`
	Customers []customerFixture `yaml:"customers"`
	Employees []employeeFixture `yaml:"employees"`
	Stock     []stockFixture    `yaml:"stock"`
}

func parseFixtures(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}

func (v vendorFixture) record() vendors.Vendor {
	return vendors.Vendor{
		Name:             v.Name,
		ContactEmail:     v.ContactEmail,
		Phone:            v.Phone,
		GSTIN:            v.GSTIN,
		DrugLicenseNo:    v.DrugLicenseNo,
		City:             v.City,
		State:            v.State,
		PaymentTermsDays: v.PaymentTermsDays,
		Status:           vendors.StatusActive,
	}
}

func (p productFixture) record(vendorIDs map[string]int64) (products.Product, error) {
	price, err := decimal.NewFromString(p.BasePrice)
	if err != nil {
		return products.Product{}, fmt.Errorf("product %s: base_price: %w", p.SKU, err)
	}
	rate, err := decimal.NewFromString(p.GSTRate)
	if err != nil {
		return products.Product{}, fmt.Errorf("product %s: gst_rate: %w", p.SKU, err)
	}
	vendorID, ok := vendorIDs[p.Vendor]
	if p.Vendor != "" && !ok {
		return products.Product{}, fmt.Errorf("product %s: unknown vendor %q", p.SKU, p.Vendor)
	}
	return products.Product{
		SKU:          p.SKU,
		Name:         p.Name,
		Category:     p.Category,
		Vendor:       vendorID,
		HSNCode:      p.HSNCode,
		Unit:         p.Unit,
		BasePrice:    price,
		GSTRate:      rate,
		ReorderLevel: p.ReorderLevel,
		Status:       products.StatusActive,
	}, nil
}

func (c customerFixture) record() (customers.Customer, error) {
	limit := decimal.Zero
	if c.CreditLimit != "" {
		var err error
		if limit, err = decimal.NewFromString(c.CreditLimit); err != nil {
			return customers.Customer{}, fmt.Errorf("customer %s: credit_limit: %w", c.Name, err)
		}
	}
	return customers.Customer{
		Name:             c.Name,
		CustomerType:     c.CustomerType,
		Email:            c.Email,
		GSTIN:            c.GSTIN,
		City:             c.City,
		State:            c.State,
		Pincode:          c.Pincode,
		CreditLimit:      limit,
		PaymentTermsDays: c.PaymentTermsDays,
		Status:           customers.StatusActive,
	}, nil
}

func (e employeeFixture) record() (employees.Employee, error) {
	joined, err := shared.ParseDate(e.DateOfJoining)
	if err != nil {
		return employees.Employee{}, fmt.Errorf("employee %s: date_of_joining: %w", e.EmployeeCode, err)
	}
	return employees.Employee{
		EmployeeCode:  e.EmployeeCode,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Email:         e.Email,
		Designation:   e.Designation,
		Department:    e.Department,
		DateOfJoining: joined,
		Status:        "active",
	}, nil
}

func (s stockFixture) record(productIDs map[string]int64, today shared.Date) (stock.Record, error) {
	productID, ok := productIDs[s.Product]
	if !ok {
		return stock.Record{}, fmt.Errorf("stock %s: unknown product %q", s.BatchNumber, s.Product)
	}
	expiry := today.AddDays(s.ExpiresInDays)
	manufactured := expiry.AddDays(-730)
	return stock.Record{
		Product:        productID,
		BatchNumber:    s.BatchNumber,
		Quantity:       s.Quantity,
		ManufacturedOn: &manufactured,
		ExpiryDate:     &expiry,
		Location:       s.Location,
	}, nil
}
