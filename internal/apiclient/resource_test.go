package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceListFollowsPaginatedEnvelope(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"count":3,"next":"` + server.URL + `/api/products/?page=2","results":[{"id":1,"name":"Syringe 5ml"},{"id":2,"name":"Cotton roll"}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"count":3,"next":null,"results":[{"id":3,"name":"Glucometer strips"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL, time.Now())
	ctx := WithTokenStore(context.Background(), NewMemoryTokenStore(Tokens{Access: "a", Refresh: "r", LastActivity: time.Now()}))
	products := NewResource[product](client, "/api/products/")

	items, err := products.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Glucometer strips", items[2].Name)
}

func TestResourceListAcceptsDataEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":7,"name":"Pipette tips"}]}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL, time.Now())
	ctx := WithTokenStore(context.Background(), NewMemoryTokenStore(Tokens{Access: "a", LastActivity: time.Now()}))
	items, err := NewResource[product](client, "/api/products/").List(ctx)
	require.NoError(t, err)
	require.Equal(t, []product{{ID: 7, Name: "Pipette tips"}}, items)
}

func TestResourceItemRoutes(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost, http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			var p product
			_ = json.Unmarshal(body, &p)
			if p.ID == 0 {
				p.ID = 11
			}
			_ = json.NewEncoder(w).Encode(p)
		default:
			_, _ = w.Write([]byte(`{"id":11,"name":"Face mask"}`))
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL, time.Now())
	ctx := WithTokenStore(context.Background(), NewMemoryTokenStore(Tokens{Access: "a", LastActivity: time.Now()}))
	res := NewResource[product](client, "/api/products/")

	created, err := res.Create(ctx, product{Name: "Face mask"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)

	got, err := res.Get(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "Face mask", got.Name)

	_, err = res.Update(ctx, 11, product{ID: 11, Name: "Face mask N95"})
	require.NoError(t, err)
	require.NoError(t, res.Delete(ctx, 11))

	assert.Equal(t, []string{
		"POST /api/products/",
		"GET /api/products/11/",
		"PUT /api/products/11/",
		"DELETE /api/products/11/",
	}, seen)
}
