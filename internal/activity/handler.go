// Package activity shows the audit trail of changes made through the console.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

const perPage = 25

// Source reads activity entries. *shared.ActivityLog satisfies it.
type Source interface {
	Enabled() bool
	List(ctx context.Context, filter shared.ActivityFilter) ([]shared.ActivityEntry, int, error)
}

// Handler serves /activity.
type Handler struct {
	deps   crud.Deps
	source Source
}

// NewHandler builds the activity page.
func NewHandler(deps crud.Deps, source Source) *Handler {
	return &Handler{deps: deps, source: source}
}

// MountRoutes registers the page.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

// Row is one rendered entry.
type Row struct {
	shared.ActivityEntry
	URL  string
	Meta string
}

// View is the data of pages/activity.html.
type View struct {
	Enabled    bool
	Rows       []Row
	Entity     string
	Actor      string
	Pagination shared.Pagination
	PrevURL    string
	NextURL    string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	data := View{
		Enabled: h.source != nil && h.source.Enabled(),
		Entity:  strings.TrimSpace(q.Get("entity")),
		Actor:   strings.TrimSpace(q.Get("actor")),
	}
	data.Pagination = shared.NewPagination(page, perPage, 0)
	if data.Enabled {
		entries, total, err := h.source.List(r.Context(), shared.ActivityFilter{
			Entity: data.Entity,
			Actor:  data.Actor,
			Limit:  perPage,
			Offset: data.Pagination.Offset(),
		})
		if err != nil {
			h.deps.Log().Error("list activity", slog.Any("error", err))
			h.deps.RenderError(w, r, http.StatusInternalServerError, "The activity log could not be loaded.", "/")
			return
		}
		data.Pagination = shared.NewPagination(page, perPage, total)
		for _, e := range entries {
			data.Rows = append(data.Rows, Row{ActivityEntry: e, URL: recordURL(e), Meta: formatMeta(e.Meta)})
		}
	}
	p := data.Pagination
	if p.Page > 1 {
		data.PrevURL = pageURL(data, p.Page-1)
	}
	if p.Page < p.TotalPages {
		data.NextURL = pageURL(data, p.Page+1)
	}
	h.deps.Render(w, r, http.StatusOK, "pages/activity.html", "Activity log", data)
}

func pageURL(v View, page int) string {
	q := url.Values{}
	if v.Entity != "" {
		q.Set("entity", v.Entity)
	}
	if v.Actor != "" {
		q.Set("actor", v.Actor)
	}
	q.Set("page", strconv.Itoa(page))
	return "/activity?" + q.Encode()
}

// recordURL links to the record unless it was deleted. Audit entity keys
// equal the console base paths.
func recordURL(e shared.ActivityEntry) string {
	if e.EntityID == "" || e.Action == "delete" || e.Entity == "" {
		return ""
	}
	return "/" + e.Entity + "/" + e.EntityID
}

func formatMeta(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fmt.Sprint(meta[k]))
	}
	return strings.Join(parts, ", ")
}
