package challans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/crud/crudtest"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/sales/orders"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
	"github.com/vivionix/vivionix-admin/report"
)

func newHandler(t *testing.T, challans ...Challan) (*Handler, http.Handler) {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	stores := orders.Stores{
		Orders: crudtest.NewMemStore(func(o *orders.Order, id int64) { o.ID = id },
			orders.Order{ID: 4, OrderNumber: "SO-4", Customer: 7, Status: orders.StatusDispatched}),
		Items: crudtest.NewMemStore(func(i *orders.Item, id int64) { i.ID = id },
			orders.Item{ID: 1, Order: 4, Product: 3, Quantity: 5, UnitPrice: decimal.NewFromInt(40)},
			orders.Item{ID: 2, Order: 4, Product: 3, Quantity: 2, UnitPrice: decimal.NewFromInt(40)},
		),
		Customers: crudtest.NewMemStore(func(c *customers.Customer, id int64) { c.ID = id },
			customers.Customer{ID: 7, Name: "Ruby Clinic", City: "Nashik", State: "Maharashtra"}),
		Products: crudtest.NewMemStore(func(p *products.Product, id int64) { p.ID = id },
			products.Product{ID: 3, SKU: "SYR-05", Name: "Syringe 5ml", Unit: "pack"}),
	}
	deps := crud.Deps{Templates: templates}
	h := NewHandler(deps,
		crudtest.NewMemStore(func(c *Challan, id int64) { c.ID = id }, challans...),
		stores,
		report.NewHandler(report.NewDocuments(templates, nil), nil))
	h.now = func() time.Time { return time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Use(crudtest.WithSession(crudtest.Session(t, "meera")))
	crud.Mount(r, deps, h.Entity())
	return h, r
}

func TestNewChallanDefaults(t *testing.T) {
	h, _ := newHandler(t)
	c := h.Entity().New()
	assert.Equal(t, "DC-20260302-0930", c.ChallanNumber)
	assert.Equal(t, "2026-03-02", c.ChallanDate.String())
	assert.Equal(t, StatusDraft, c.Status)
}

func TestPrepareNormalisesVehicleNumber(t *testing.T) {
	h, _ := newHandler(t)
	e := h.Entity()
	c := Challan{ChallanNumber: " dc-9 ", VehicleNumber: "mh-12 ab 1234", Transporter: "<b>Blue Dart</b>"}
	require.NoError(t, e.Prepare(context.Background(), &c))
	assert.Equal(t, "DC-9", c.ChallanNumber)
	assert.Equal(t, "MH12AB1234", c.VehicleNumber)
	assert.Equal(t, "Blue Dart", c.Transporter)
	assert.Empty(t, e.Check(Challan{VehicleNumber: c.VehicleNumber, ChallanDate: shared.NewDate(2026, time.March, 2), Status: StatusDispatched}))
}

func TestCheck(t *testing.T) {
	h, _ := newHandler(t)
	check := h.Entity().Check
	issued := shared.NewDate(2026, time.March, 2)
	before := issued.AddDays(-1)

	errs := check(Challan{ChallanDate: issued, VehicleNumber: "12345", Status: StatusDispatched})
	assert.Contains(t, errs, "vehicle_number")

	errs = check(Challan{ChallanDate: issued, Status: StatusDelivered})
	assert.Equal(t, "Required once the challan is delivered.", errs["delivered_on"])

	errs = check(Challan{ChallanDate: issued, Status: StatusDelivered, DeliveredOn: &before})
	assert.Equal(t, "Must not be before the challan date.", errs["delivered_on"])

	after := issued.AddDays(2)
	assert.Empty(t, check(Challan{ChallanDate: issued, Status: StatusDelivered, DeliveredOn: &after}))
}

func TestDocumentCountsUnits(t *testing.T) {
	h, _ := newHandler(t)
	doc, err := h.Document(context.Background(), Challan{ChallanNumber: "DC-1", Order: 4, Transporter: "Blue Dart", VehicleNumber: "MH12AB1234"})
	require.NoError(t, err)
	assert.Equal(t, 7, doc.Units)
	assert.Equal(t, "SO-4", doc.OrderNumber)
	assert.Equal(t, "Ruby Clinic", doc.Customer.Name)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "Syringe 5ml", doc.Lines[0].Description)
}

func TestPDFRoute(t *testing.T) {
	_, router := newHandler(t, Challan{ID: 2, ChallanNumber: "DC-2", Order: 4, ChallanDate: shared.NewDate(2026, time.March, 2), Transporter: "Blue Dart", Status: StatusDispatched})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/challans/2/pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DC-2")
	assert.Contains(t, rec.Body.String(), "Blue Dart")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/challans/99/pdf", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
