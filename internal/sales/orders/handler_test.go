package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/crud/crudtest"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/pricing"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

type fixedResolver struct {
	calls int
}

func (f *fixedResolver) Price(_ context.Context, customerID, productID int64, on shared.Date) (pricing.Quote, error) {
	f.calls++
	return pricing.Quote{UnitPrice: d("45.50"), GSTRate: d("12"), Source: pricing.SourceContract}, nil
}

type fixture struct {
	router   http.Handler
	sess     *shared.Session
	orders   *crudtest.MemStore[Order]
	items    *crudtest.MemStore[Item]
	resolver *fixedResolver
}

func newFixture(t *testing.T, status string) *fixture {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	f := &fixture{
		sess: crudtest.Session(t, "ravi"),
		orders: crudtest.NewMemStore(func(o *Order, id int64) { o.ID = id }, Order{
			ID: 4, OrderNumber: "SO-4", Customer: 7, OrderDate: shared.NewDate(2026, time.March, 2), Status: status,
		}),
		items: crudtest.NewMemStore(func(i *Item, id int64) { i.ID = id },
			Item{ID: 1, Order: 4, Product: 3, Quantity: 2, UnitPrice: d("100"), GSTRate: d("5")},
			Item{ID: 2, Order: 5, Product: 3, Quantity: 1, UnitPrice: d("100")},
		),
		resolver: &fixedResolver{},
	}
	stores := Stores{
		Orders:    f.orders,
		Items:     f.items,
		Customers: crudtest.NewMemStore(func(c *customers.Customer, id int64) { c.ID = id }, customers.Customer{ID: 7, Name: "City Hospital"}),
		Products:  crudtest.NewMemStore(func(p *products.Product, id int64) { p.ID = id }, products.Product{ID: 3, SKU: "GL-1", Name: "Gloves"}),
	}
	deps := crud.Deps{Templates: templates}
	h := NewHandler(deps, stores, f.resolver)
	r := chi.NewRouter()
	r.Use(crudtest.WithSession(f.sess))
	crud.Mount(r, deps, h.Orders())
	crud.Mount(r, deps, h.Items())
	f.router = r
	return f
}

func (f *fixture) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestOrderPageShowsLinesAndTotals(t *testing.T) {
	f := newFixture(t, StatusPending)
	rec := f.get("/orders/4")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "City Hospital")
	assert.Contains(t, body, "GL-1 · Gloves")
	assert.Contains(t, body, "210.00", "200 plus 5% GST")
}

func TestAddItemDefaultsPriceFromResolver(t *testing.T) {
	f := newFixture(t, StatusPending)
	rec := f.post("/orders/4/items", url.Values{"product": {"3"}, "quantity": {"4"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders/4", rec.Header().Get("Location"))

	created, ok := f.items.Item(3)
	require.True(t, ok)
	assert.Equal(t, int64(4), created.Order)
	assert.Equal(t, "45.50", created.UnitPrice.StringFixed(2))
	assert.True(t, decimal.NewFromInt(12).Equal(created.GSTRate))
	assert.Equal(t, 1, f.resolver.calls)

	flashes := f.sess.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashSuccess, flashes[0].Kind)
}

func TestAddItemKeepsExplicitPrice(t *testing.T) {
	f := newFixture(t, StatusPending)
	f.post("/orders/4/items", url.Values{"product": {"3"}, "quantity": {"1"}, "unit_price": {"12.00"}, "gst_rate": {"18"}})
	created, ok := f.items.Item(3)
	require.True(t, ok)
	assert.Equal(t, "12.00", created.UnitPrice.StringFixed(2))
	assert.Equal(t, 0, f.resolver.calls)
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	f := newFixture(t, StatusPending)
	rec := f.post("/orders/4/items", url.Values{"product": {"3"}, "quantity": {"0"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 2, f.items.Len())
	flashes := f.sess.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashError, flashes[0].Kind)
	assert.Contains(t, flashes[0].Message, "Quantity")
}

func TestLinesFrozenAfterDispatch(t *testing.T) {
	f := newFixture(t, StatusDispatched)
	f.post("/orders/4/items", url.Values{"product": {"3"}, "quantity": {"1"}})
	f.post("/orders/4/items/1/delete", nil)
	assert.Equal(t, 2, f.items.Len())
}

func TestRemoveItemChecksOwnership(t *testing.T) {
	f := newFixture(t, StatusConfirmed)
	f.post("/orders/4/items/2/delete", nil)
	assert.Equal(t, 2, f.items.Len(), "line 2 belongs to order 5")

	f.post("/orders/4/items/1/delete", nil)
	_, ok := f.items.Item(1)
	assert.False(t, ok)
}

func TestChangeStatusFollowsLifecycle(t *testing.T) {
	f := newFixture(t, StatusPending)
	f.post("/orders/4/status", url.Values{"status": {StatusDelivered}})
	order, _ := f.orders.Item(4)
	assert.Equal(t, StatusPending, order.Status)

	f.post("/orders/4/status", url.Values{"status": {StatusConfirmed}})
	order, _ = f.orders.Item(4)
	assert.Equal(t, StatusConfirmed, order.Status)
}

func TestItemEntityPrepareResolvesPrice(t *testing.T) {
	f := newFixture(t, StatusPending)
	rec := f.post("/order-items", url.Values{"order": {"4"}, "product": {"3"}, "quantity": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	created, ok := f.items.Item(3)
	require.True(t, ok)
	assert.Equal(t, "45.50", created.UnitPrice.StringFixed(2))

	rec = f.post("/order-items", url.Values{"order": {"99"}, "product": {"3"}, "quantity": {"2"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func orderForm(status string) url.Values {
	return url.Values{"order_number": {"SO-4"}, "customer": {"7"}, "order_date": {"2026-03-02"}, "status": {status}}
}

func TestEditFormFollowsLifecycle(t *testing.T) {
	f := newFixture(t, StatusPending)
	rec := f.post("/orders/4/edit", orderForm(StatusDelivered))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot become Delivered")
	order, _ := f.orders.Item(4)
	assert.Equal(t, StatusPending, order.Status)

	rec = f.post("/orders/4/edit", orderForm(StatusConfirmed))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	order, _ = f.orders.Item(4)
	assert.Equal(t, StatusConfirmed, order.Status)
}

func TestEditFormKeepsStatusOnFrozenOrder(t *testing.T) {
	f := newFixture(t, StatusDelivered)
	form := orderForm(StatusDelivered)
	form.Set("notes", "signed by ward sister")
	rec := f.post("/orders/4/edit", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	order, _ := f.orders.Item(4)
	assert.Equal(t, "signed by ward sister", order.Notes)
}

func TestItemRoutesRespectFrozenOrders(t *testing.T) {
	f := newFixture(t, StatusDelivered)

	rec := f.post("/order-items", url.Values{"order": {"4"}, "product": {"3"}, "quantity": {"2"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 2, f.items.Len())

	rec = f.post("/order-items/1/edit", url.Values{"order": {"4"}, "product": {"3"}, "quantity": {"9"}, "unit_price": {"100"}, "gst_rate": {"5"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	line, _ := f.items.Item(1)
	assert.Equal(t, 2, line.Quantity)

	rec = f.post("/order-items/1/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := f.items.Item(1)
	assert.True(t, ok)
	flashes := f.sess.PopFlashes()
	require.NotEmpty(t, flashes)
	assert.Equal(t, shared.FlashWarning, flashes[len(flashes)-1].Kind)
}

func TestItemRoutesOpenWhilePending(t *testing.T) {
	f := newFixture(t, StatusPending)
	rec := f.post("/order-items/1/edit", url.Values{"order": {"4"}, "product": {"3"}, "quantity": {"9"}, "unit_price": {"100"}, "gst_rate": {"5"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	line, _ := f.items.Item(1)
	assert.Equal(t, 9, line.Quantity)

	f.post("/order-items/1/delete", nil)
	_, ok := f.items.Item(1)
	assert.False(t, ok)
}

func TestExplicitZeroGSTIsKept(t *testing.T) {
	f := newFixture(t, StatusPending)
	f.post("/orders/4/items", url.Values{"product": {"3"}, "quantity": {"1"}, "gst_rate": {"0"}})
	created, ok := f.items.Item(3)
	require.True(t, ok)
	assert.True(t, created.GSTRate.IsZero())
	assert.Equal(t, "45.50", created.UnitPrice.StringFixed(2), "blank price still resolved")

	rec := f.post("/order-items", url.Values{"order": {"4"}, "product": {"3"}, "quantity": {"1"}, "unit_price": {"0"}, "gst_rate": {"0"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	free, ok := f.items.Item(4)
	require.True(t, ok)
	assert.True(t, free.UnitPrice.IsZero())
	assert.True(t, free.GSTRate.IsZero())
	assert.Equal(t, 1, f.resolver.calls)
}
