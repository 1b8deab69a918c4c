// Package dashboard renders the home page: record counts per resource and the
// last stock alert summary.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/auth"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/inventory/stock"
)

const maxConcurrentTiles = 4

// Tile is one counter on the home page.
type Tile struct {
	Label string
	URL   string
	Count func(ctx context.Context) (int, error)
}

// CountOf counts every record of store.
func CountOf[T any](store crud.Store[T]) func(context.Context) (int, error) {
	return CountWhere(store, nil)
}

// CountWhere counts the records of store matching keep. A nil keep counts all.
func CountWhere[T any](store crud.Store[T], keep func(T) bool) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		items, err := store.List(ctx)
		if err != nil {
			return 0, err
		}
		if keep == nil {
			return len(items), nil
		}
		n := 0
		for _, item := range items {
			if keep(item) {
				n++
			}
		}
		return n, nil
	}
}

// TileView is a rendered tile. Failed is set when its count could not be loaded.
type TileView struct {
	Label  string
	URL    string
	Count  int
	Failed bool
}

// View is the data of pages/home.html.
type View struct {
	Tiles  []TileView
	Alerts *stock.Summary
	Today  time.Time
}

// Handler serves the dashboard.
type Handler struct {
	deps   crud.Deps
	tiles  []Tile
	alerts *stock.AlertStore
	now    func() time.Time
}

// NewHandler builds the dashboard. alerts may be nil.
func NewHandler(deps crud.Deps, tiles []Tile, alerts *stock.AlertStore) *Handler {
	return &Handler{deps: deps, tiles: tiles, alerts: alerts, now: time.Now}
}

// Home renders the dashboard.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	view, loggedOut := h.load(r.Context())
	if loggedOut != nil && auth.HandleLoggedOut(w, r, loggedOut) {
		return
	}
	h.deps.Render(w, r, http.StatusOK, "pages/home.html", "Dashboard", view)
}

// load fetches every tile concurrently. A failing tile is marked and logged;
// it never blanks the page. The first logged-out error is returned so the
// caller can send the user to the login page.
func (h *Handler) load(ctx context.Context) (View, error) {
	view := View{Tiles: make([]TileView, len(h.tiles)), Today: h.now()}
	var (
		mu        sync.Mutex
		loggedOut error
	)
	var g errgroup.Group
	g.SetLimit(maxConcurrentTiles)
	for i, tile := range h.tiles {
		view.Tiles[i] = TileView{Label: tile.Label, URL: tile.URL}
		g.Go(func() error {
			n, err := tile.Count(ctx)
			if err != nil {
				h.deps.Log().Warn("dashboard tile", slog.String("tile", tile.Label), slog.Any("error", err))
				view.Tiles[i].Failed = true
				mu.Lock()
				if loggedOut == nil && apiclient.IsLoggedOut(err) {
					loggedOut = err
				}
				mu.Unlock()
				return nil
			}
			view.Tiles[i].Count = n
			return nil
		})
	}
	g.Go(func() error {
		summary, ok, err := h.alerts.Load(ctx)
		if err != nil {
			h.deps.Log().Warn("dashboard stock alerts", slog.Any("error", err))
			return nil
		}
		if ok {
			view.Alerts = &summary
		}
		return nil
	})
	_ = g.Wait()
	return view, loggedOut
}
