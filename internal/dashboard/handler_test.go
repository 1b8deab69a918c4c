package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/crud/crudtest"
	"github.com/vivionix/vivionix-admin/internal/inventory/stock"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/view"
)

func newDeps(t *testing.T) crud.Deps {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	return crud.Deps{Templates: templates}
}

func customerStore() *crudtest.MemStore[customers.Customer] {
	return crudtest.NewMemStore(func(c *customers.Customer, id int64) { c.ID = id },
		customers.Customer{ID: 1, Name: "City Hospital", Status: "active"},
		customers.Customer{ID: 2, Name: "Metro Labs", Status: "inactive"},
		customers.Customer{ID: 3, Name: "Care Pharmacy", Status: "active"},
	)
}

func TestHomeCountsTilesAndKeepsFailuresLocal(t *testing.T) {
	broken := customerStore()
	broken.Err = errors.New("upstream 500")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	alerts := stock.NewAlertStore(client, 0)
	require.NoError(t, alerts.Save(context.Background(), stock.Summary{Total: 9, Expired: 2, LowStock: 1, GeneratedAt: time.Now()}))

	h := NewHandler(newDeps(t), []Tile{
		{Label: "Customers", URL: "/customers", Count: CountOf[customers.Customer](customerStore())},
		{Label: "Active customers", URL: "/customers?status=active", Count: CountWhere[customers.Customer](customerStore(), func(c customers.Customer) bool { return c.Status == "active" })},
		{Label: "Vendors", URL: "/vendors", Count: CountOf[customers.Customer](broken)},
	}, alerts)

	v, loggedOut := h.load(context.Background())
	require.NoError(t, loggedOut)
	require.Len(t, v.Tiles, 3)
	assert.Equal(t, 3, v.Tiles[0].Count)
	assert.Equal(t, 2, v.Tiles[1].Count)
	assert.True(t, v.Tiles[2].Failed)
	require.NotNil(t, v.Alerts)
	assert.Equal(t, 3, v.Alerts.Attention())

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Active customers")
	assert.Contains(t, body, "unavailable")
}

func TestHomeRedirectsWhenSessionEnded(t *testing.T) {
	expired := customerStore()
	expired.Err = apiclient.ErrSessionExpired
	h := NewHandler(newDeps(t), []Tile{{Label: "Customers", URL: "/customers", Count: CountOf[customers.Customer](expired)}}, nil)

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}
