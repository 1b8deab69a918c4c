package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

type recordingAPI struct {
	mu     sync.Mutex
	nextID int64
	posted map[string][]map[string]any
	seeded map[string][]map[string]any
}

func (a *recordingAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		items := a.seeded[r.URL.Path]
		if items == nil {
			items = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(items)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var rec map[string]any
		_ = json.Unmarshal(body, &rec)
		a.nextID++
		rec["id"] = a.nextID
		a.posted[r.URL.Path] = append(a.posted[r.URL.Path], rec)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newSeederForTest(t *testing.T, api *recordingAPI) (*seeder, context.Context) {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL})
	require.NoError(t, err)
	ctx := apiclient.WithTokenStore(context.Background(), apiclient.NewMemoryTokenStore(apiclient.Tokens{Access: "a", LastActivity: time.Now()}))
	return newSeeder(client, slog.New(slog.NewTextHandler(io.Discard, nil))), ctx
}

func TestEmbeddedFixturesParse(t *testing.T) {
	f, err := parseFixtures(defaultFixtures)
	require.NoError(t, err)
	assert.Len(t, f.Vendors, 2)
	assert.Len(t, f.Products, 3)
	assert.NotEmpty(t, f.Customers)
	assert.NotEmpty(t, f.Stock)
}

func TestRunSeedsInDependencyOrder(t *testing.T) {
	api := &recordingAPI{posted: map[string][]map[string]any{}}
	s, ctx := newSeederForTest(t, api)
	f, err := parseFixtures(defaultFixtures)
	require.NoError(t, err)

	today := shared.NewDate(2026, 3, 10)
	counts, err := s.Run(ctx, f, today)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"vendors": 2, "products": 3, "customers": 2, "employees": 1, "stock": 4}, counts)

	vendorIDs := map[string]float64{}
	for _, v := range api.posted["/api/vendors/"] {
		vendorIDs[v["name"].(string)] = v["id"].(float64)
	}
	for _, p := range api.posted["/api/products/"] {
		if p["sku"] == "RGT-CBC" {
			assert.Equal(t, vendorIDs["LabCore Diagnostics"], p["vendor"])
		}
	}
	expired := api.posted["/api/stock/"][3]
	assert.Equal(t, "CBC-2305", expired["batch_number"])
	assert.Equal(t, "2026-02-28", expired["expiry_date"])
}

func TestRunReusesExistingVendorsAndProducts(t *testing.T) {
	api := &recordingAPI{
		nextID: 100,
		posted: map[string][]map[string]any{},
		seeded: map[string][]map[string]any{
			"/api/vendors/":  {{"id": 7, "name": "LabCore Diagnostics"}},
			"/api/products/": {{"id": 9, "sku": "RGT-CBC", "name": "CBC reagent kit"}},
		},
	}
	s, ctx := newSeederForTest(t, api)
	f, err := parseFixtures(defaultFixtures)
	require.NoError(t, err)

	counts, err := s.Run(ctx, f, shared.NewDate(2026, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, counts["vendors"])
	assert.Equal(t, 2, counts["products"])
	for _, rec := range api.posted["/api/stock/"] {
		if strings.HasPrefix(rec["batch_number"].(string), "CBC-") {
			assert.Equal(t, float64(9), rec["product"])
		}
	}
}

func TestRunRejectsInvalidFixture(t *testing.T) {
	api := &recordingAPI{posted: map[string][]map[string]any{}}
	s, ctx := newSeederForTest(t, api)
	f := Fixtures{Vendors: []vendorFixture{{Name: "No licence", City: "Pune", State: "Maharashtra"}}}

	_, err := s.Run(ctx, f, shared.NewDate(2026, 3, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drug_license_no")
	assert.Empty(t, api.posted)
}

func TestStockFixtureNeedsKnownProduct(t *testing.T) {
	_, err := stockFixture{Product: "NOPE", BatchNumber: "B1"}.record(map[string]int64{}, shared.NewDate(2026, 3, 10))
	require.ErrorContains(t, err, "unknown product")
}
