package activity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

type fakeSource struct {
	entries []shared.ActivityEntry
	total   int
	err     error
	filter  shared.ActivityFilter
}

func (f *fakeSource) Enabled() bool { return true }

func (f *fakeSource) List(_ context.Context, filter shared.ActivityFilter) ([]shared.ActivityEntry, int, error) {
	f.filter = filter
	return f.entries, f.total, f.err
}

func serve(t *testing.T, source Source, target string) *httptest.ResponseRecorder {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/activity", NewHandler(crud.Deps{Templates: templates}, source).MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestActivityListsEntriesWithFilters(t *testing.T) {
	source := &fakeSource{
		total: 60,
		entries: []shared.ActivityEntry{
			{ID: 9, Actor: "ravi", Action: "update", Entity: "orders", EntityID: "4", Meta: map[string]any{"label": "SO-4"}, At: time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)},
			{ID: 8, Actor: "ravi", Action: "delete", Entity: "orders", EntityID: "3"},
		},
	}
	rec := serve(t, source, "/activity?entity=orders&page=2")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, shared.ActivityFilter{Entity: "orders", Limit: perPage, Offset: perPage}, source.filter)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/orders/4"`)
	assert.NotContains(t, body, `href="/orders/3"`)
	assert.Contains(t, body, "label=SO-4")
	assert.Contains(t, body, "Page 2 of 3")
	assert.Contains(t, body, "/activity?entity=orders&amp;page=3")
}

func TestActivityDisabledWithoutDatabase(t *testing.T) {
	var log *shared.ActivityLog
	rec := serve(t, log, "/activity")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "activity log is disabled")
}

func TestActivityListFailure(t *testing.T) {
	rec := serve(t, &fakeSource{err: errors.New("pg down")}, "/activity")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
