package stock

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/platform/httpx"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// APIPath is the collection endpoint.
const APIPath = "/api/stock/"

// Enqueuer schedules an asynchronous stock scan.
type Enqueuer interface {
	EnqueueStockScan(ctx context.Context) (string, error)
}

// Handler owns the stock entity.
type Handler struct {
	deps       crud.Deps
	store      crud.Store[Record]
	products   crud.Store[products.Product]
	thresholds Thresholds
	alerts     *AlertStore
	enqueuer   Enqueuer
	now        func() time.Time
}

// NewHandler wires the stock pages. alerts and enqueuer may be nil.
func NewHandler(deps crud.Deps, store crud.Store[Record], productStore crud.Store[products.Product], thresholds Thresholds, alerts *AlertStore, enqueuer Enqueuer) *Handler {
	return &Handler{
		deps:       deps,
		store:      store,
		products:   productStore,
		thresholds: thresholds.normalized(),
		alerts:     alerts,
		enqueuer:   enqueuer,
		now:        time.Now,
	}
}

func (h *Handler) today() shared.Date {
	return shared.DateOf(h.now().UTC())
}

// ListView is the extra data of pages/stock.html.
type ListView struct {
	Summary    Summary
	LastScan   *Summary
	Thresholds Thresholds
	CanRescan  bool
}

// Badge maps a derived status to a CSS modifier.
func Badge(status string) string {
	switch status {
	case StatusExpired, StatusOutOfStock:
		return "danger"
	case StatusExpiringSoon, StatusLowStock:
		return "warning"
	default:
		return "active"
	}
}

func daysLeft(days *int) string {
	switch {
	case days == nil:
		return "-"
	case *days < 0:
		return "expired " + strconv.Itoa(-*days) + "d ago"
	default:
		return strconv.Itoa(*days) + "d"
	}
}

// Entity describes stock records for the console.
func (h *Handler) Entity() *crud.Entity[Record] {
	status := func(r Record) string { return h.thresholds.Status(r, h.today()) }
	return &crud.Entity[Record]{
		Key:      "stock",
		Singular: "Stock record",
		Plural:   "Stock",
		BasePath: "/stock",
		Store:    h.store,
		Columns: []crud.Column[Record]{
			{Label: "Product", Value: func(r Record) string { return strconv.FormatInt(r.Product, 10) }, Lookup: "products"},
			{Label: "Batch", Value: func(r Record) string { return r.BatchNumber }},
			{Label: "Qty", Value: func(r Record) string { return strconv.Itoa(r.Quantity) }},
			{Label: "Expiry", Value: func(r Record) string { return view.FormatDate(r.ExpiryDate) }},
			{Label: "Days left", Value: func(r Record) string { return daysLeft(DaysUntilExpiry(r.ExpiryDate, h.today())) }},
			{Label: "Location", Value: func(r Record) string { return r.Location }},
			{Label: "Status", Value: func(r Record) string { return view.Title(status(r)) }, Badge: func(r Record) string { return Badge(status(r)) }},
		},
		Fields: []crud.Field{
			{Name: "product", Label: "Product", Kind: crud.KindSelect, Required: true, Lookup: "products"},
			{Name: "batch_number", Label: "Batch number", Required: true},
			{Name: "quantity", Label: "Quantity", Kind: crud.KindNumber, Required: true},
			{Name: "reorder_level", Label: "Reorder level", Kind: crud.KindNumber, Help: "Leave 0 to use the default threshold."},
			{Name: "manufactured_on", Label: "Manufactured on", Kind: crud.KindDate},
			{Name: "expiry_date", Label: "Expiry date", Kind: crud.KindDate},
			{Name: "location", Label: "Location"},
		},
		Lookups: map[string]crud.Lookup{
			"products": crud.Options(h.products, products.Product.DisplayName),
		},
		Search:   func(r Record) []string { return []string{r.BatchNumber, r.Location} },
		Status:   status,
		Statuses: Statuses,
		Label:    func(r Record) string { return "Batch " + r.BatchNumber },
		New:      func() Record { return Record{} },
		Prepare: func(_ context.Context, r *Record) error {
			r.BatchNumber = strings.ToUpper(strings.TrimSpace(r.BatchNumber))
			r.Location = view.Sanitize(r.Location)
			return nil
		},
		Check: func(r Record) map[string]string {
			errs := make(map[string]string)
			if r.ManufacturedOn != nil && r.ExpiryDate != nil && r.ExpiryDate.Before(r.ManufacturedOn.Time) {
				errs["expiry_date"] = "Must be after the manufacturing date."
			}
			return errs
		},
		ListTemplate: "pages/stock.html",
		ListExtra:    h.listExtra,
		Routes: func(r chi.Router) {
			r.Get("/export.json", h.export)
			r.Post("/rescan", h.rescan)
		},
	}
}

func (h *Handler) listExtra(ctx context.Context, items []Record) (any, error) {
	data := ListView{
		Summary:    h.thresholds.SummarizeRecords(items, h.today(), nil),
		Thresholds: h.thresholds,
		CanRescan:  h.enqueuer != nil,
	}
	data.Summary.Alerts = nil
	data.Summary.GeneratedAt = h.now()
	last, ok, err := h.alerts.Load(ctx)
	if err != nil {
		h.deps.Log().Warn("load stock alert summary", slog.Any("error", err))
	} else if ok {
		data.LastScan = &last
	}
	return data, nil
}

func (h *Handler) productNames(ctx context.Context) (map[int64]string, error) {
	list, err := h.products.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(list))
	for _, p := range list {
		names[p.ID] = p.DisplayName()
	}
	return names, nil
}

// Export is the body of /stock/export.json.
type Export struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Summary     Summary     `json:"summary"`
	Records     []Annotated `json:"records"`
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.store.List(ctx)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	names, err := h.productNames(ctx)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows := h.thresholds.Annotate(items, h.today(), names)
	summary := Summarize(rows)
	summary.GeneratedAt = h.now().UTC()
	body := Export{GeneratedAt: summary.GeneratedAt, Summary: summary, Records: rows}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="stock-`+h.today().String()+`.json"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		h.deps.Log().Error("encode stock export", slog.Any("error", err))
	}
}

func (h *Handler) rescan(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		h.deps.Redirect(w, r, "/stock", shared.FlashWarning, "Background jobs are not configured.")
		return
	}
	id, err := h.enqueuer.EnqueueStockScan(r.Context())
	if err != nil {
		h.deps.Log().Error("enqueue stock scan", slog.Any("error", err))
		h.deps.Redirect(w, r, "/stock", shared.FlashError, "Could not queue the stock scan.")
		return
	}
	h.deps.Record(r, "rescan", "stock", 0, map[string]any{"task_id": id})
	h.deps.Redirect(w, r, "/stock", shared.FlashSuccess, "Stock scan queued.")
}
