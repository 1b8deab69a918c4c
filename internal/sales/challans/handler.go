package challans

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/sales/orders"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
	"github.com/vivionix/vivionix-admin/report"
)

// APIPath is the collection endpoint.
const APIPath = "/api/delivery-challans/"

// Indian registration plates, e.g. MH12AB1234.
var vehiclePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{1,2}[A-Z]{0,3}[0-9]{4}$`)

// Handler owns the challan entity and its PDF export.
type Handler struct {
	deps     crud.Deps
	challans crud.Store[Challan]
	orders   orders.Stores
	reports  *report.Handler
	now      func() time.Time
}

// NewHandler wires the challan pages.
func NewHandler(deps crud.Deps, challanStore crud.Store[Challan], orderStores orders.Stores, reports *report.Handler) *Handler {
	return &Handler{deps: deps, challans: challanStore, orders: orderStores, reports: reports, now: time.Now}
}

func statusBadge(c Challan) string {
	switch c.Status {
	case StatusDelivered:
		return "active"
	case StatusReturned:
		return "danger"
	case StatusDraft:
		return "muted"
	default:
		return "info"
	}
}

// Entity describes delivery challans for the console.
func (h *Handler) Entity() *crud.Entity[Challan] {
	choices := make([]crud.Option, 0, len(Statuses))
	for _, s := range Statuses {
		choices = append(choices, crud.Option{Value: s, Label: view.Title(s)})
	}
	return &crud.Entity[Challan]{
		Key:      "challans",
		Singular: "Delivery challan",
		Plural:   "Delivery challans",
		BasePath: "/challans",
		Store:    h.challans,
		Columns: []crud.Column[Challan]{
			{Label: "Challan no.", Value: func(c Challan) string { return c.ChallanNumber }},
			{Label: "Order", Value: func(c Challan) string { return strconv.FormatInt(c.Order, 10) }, Lookup: "orders"},
			{Label: "Date", Value: func(c Challan) string { return view.FormatDate(c.ChallanDate) }},
			{Label: "Transporter", Value: func(c Challan) string { return c.Transporter }},
			{Label: "Vehicle", Value: func(c Challan) string { return c.VehicleNumber }},
			{Label: "Status", Value: func(c Challan) string { return view.Title(c.Status) }, Badge: statusBadge},
		},
		Fields: []crud.Field{
			{Name: "challan_number", Label: "Challan number", Required: true},
			{Name: "order", Label: "Order", Kind: crud.KindSelect, Required: true, Lookup: "orders"},
			{Name: "challan_date", Label: "Challan date", Kind: crud.KindDate, Required: true},
			{Name: "transporter", Label: "Transporter"},
			{Name: "vehicle_number", Label: "Vehicle number", Help: "e.g. MH12AB1234"},
			{Name: "delivered_on", Label: "Delivered on", Kind: crud.KindDate},
			{Name: "status", Label: "Status", Kind: crud.KindSelect, Required: true, Choices: choices},
			{Name: "remarks", Label: "Remarks", Kind: crud.KindTextarea},
		},
		Lookups: map[string]crud.Lookup{
			"orders": crud.Options(h.orders.Orders, func(o orders.Order) string { return o.OrderNumber }),
		},
		Search: func(c Challan) []string {
			return []string{c.ChallanNumber, c.Transporter, c.VehicleNumber, c.Remarks}
		},
		Status:   func(c Challan) string { return c.Status },
		Statuses: Statuses,
		Label:    func(c Challan) string { return c.ChallanNumber },
		New: func() Challan {
			now := h.now().UTC()
			return Challan{ChallanNumber: "DC-" + now.Format("20060102-1504"), ChallanDate: shared.DateOf(now), Status: StatusDraft}
		},
		Prepare: func(_ context.Context, c *Challan) error {
			c.ChallanNumber = strings.ToUpper(strings.TrimSpace(c.ChallanNumber))
			c.Transporter = view.Sanitize(c.Transporter)
			c.VehicleNumber = strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(c.VehicleNumber))
			c.Remarks = view.Sanitize(c.Remarks)
			return nil
		},
		Check: func(c Challan) map[string]string {
			errs := make(map[string]string)
			if c.VehicleNumber != "" && !vehiclePattern.MatchString(c.VehicleNumber) {
				errs["vehicle_number"] = "Enter a registration number like MH12AB1234."
			}
			if c.Status == StatusDelivered && c.DeliveredOn == nil {
				errs["delivered_on"] = "Required once the challan is delivered."
			}
			if c.DeliveredOn != nil && c.DeliveredOn.Before(c.ChallanDate.Time) {
				errs["delivered_on"] = "Must not be before the challan date."
			}
			return errs
		},
		Links: func(c Challan) []crud.Link {
			return []crud.Link{{Label: "PDF", URL: "/challans/" + strconv.FormatInt(c.ID, 10) + "/pdf"}}
		},
		Routes: func(r chi.Router) {
			r.Get("/{id}/pdf", h.pdf)
		},
	}
}

// Document assembles the printable challan.
func (h *Handler) Document(ctx context.Context, c Challan) (report.ChallanDocument, error) {
	src, err := orders.LoadSource(ctx, h.orders, c.Order)
	if err != nil {
		return report.ChallanDocument{}, err
	}
	return report.ChallanDocument{
		Number:      c.ChallanNumber,
		Date:        c.ChallanDate,
		OrderNumber: src.Order.OrderNumber,
		Customer:    src.Party(),
		Transporter: c.Transporter,
		VehicleNo:   c.VehicleNumber,
		Lines:       src.Lines(),
		Units:       src.Totals().Units,
		Remarks:     c.Remarks,
	}, nil
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, ok := crud.IDParam(r, "id")
	if !ok {
		h.deps.RenderError(w, r, http.StatusNotFound, "The challan you asked for does not exist.", "/challans")
		return
	}
	ctx := r.Context()
	c, err := h.challans.Get(ctx, id)
	if err != nil {
		h.deps.Fail(w, r, err, "/challans")
		return
	}
	doc, err := h.Document(ctx, c)
	if err != nil {
		h.deps.Fail(w, r, err, "/challans")
		return
	}
	docs := h.reports.Documents()
	h.reports.Serve(w, r, doc.Number+".pdf",
		func(w io.Writer) error { return docs.ChallanHTML(w, doc) },
		func(ctx context.Context) ([]byte, error) { return docs.ChallanPDF(ctx, doc) },
	)
}
