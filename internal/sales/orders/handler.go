package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/pricing"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// PriceResolver defaults the unit price of a new line.
type PriceResolver interface {
	Price(ctx context.Context, customerID, productID int64, on shared.Date) (pricing.Quote, error)
}

// Stores groups the collections the order pages read.
type Stores struct {
	Orders    crud.Store[Order]
	Items     crud.Store[Item]
	Customers crud.Store[customers.Customer]
	Products  crud.Store[products.Product]
}

// Handler owns the order and order item entities plus the line item and
// status actions on the order page.
type Handler struct {
	deps     crud.Deps
	stores   Stores
	resolver PriceResolver
	now      func() time.Time
}

// NewHandler wires the order pages.
func NewHandler(deps crud.Deps, stores Stores, resolver PriceResolver) *Handler {
	return &Handler{deps: deps, stores: stores, resolver: resolver, now: time.Now}
}

// LineView is an order line with its product resolved.
type LineView struct {
	Item
	Product string
}

// Detail is the extra data of pages/order_show.html.
type Detail struct {
	Order    Order
	Customer string
	Lines    []LineView
	Totals   Totals
	Next     []string
	Editable bool
	Products []crud.Option
}

func (h *Handler) detail(ctx context.Context, order Order) (any, error) {
	var (
		items       []Item
		customer    string
		productOpts []crud.Option
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := h.stores.Items.List(gctx)
		items = ItemsOf(all, order.ID)
		return err
	})
	g.Go(func() error {
		c, err := h.stores.Customers.Get(gctx, order.Customer)
		if errors.Is(err, apiclient.ErrNotFound) {
			customer = "#" + strconv.FormatInt(order.Customer, 10)
			return nil
		}
		customer = c.Name
		return err
	})
	g.Go(func() error {
		opts, err := crud.Options(h.stores.Products, products.Product.DisplayName)(gctx)
		productOpts = opts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(productOpts))
	for _, o := range productOpts {
		names[o.Value] = o.Label
	}
	lines := make([]LineView, 0, len(items))
	for _, item := range items {
		name, ok := names[strconv.FormatInt(item.Product, 10)]
		if !ok {
			name = "#" + strconv.FormatInt(item.Product, 10)
		}
		lines = append(lines, LineView{Item: item, Product: name})
	}
	return Detail{
		Order:    order,
		Customer: customer,
		Lines:    lines,
		Totals:   Sum(items),
		Next:     order.NextStatuses(),
		Editable: order.Editable(),
		Products: productOpts,
	}, nil
}

func (h *Handler) routes(r chi.Router) {
	r.Post("/{id}/items", h.addItem)
	r.Post("/{id}/items/{item}/delete", h.removeItem)
	r.Post("/{id}/status", h.changeStatus)
}

func orderPath(id int64) string {
	return "/orders/" + strconv.FormatInt(id, 10)
}

func (h *Handler) loadOrder(w http.ResponseWriter, r *http.Request) (Order, bool) {
	id, ok := crud.IDParam(r, "id")
	if !ok {
		h.deps.Redirect(w, r, "/orders", shared.FlashError, "That order no longer exists.")
		return Order{}, false
	}
	order, err := h.stores.Orders.Get(r.Context(), id)
	if err != nil {
		h.deps.Fail(w, r, err, "/orders")
		return Order{}, false
	}
	return order, true
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	back := orderPath(order.ID)
	if !order.Editable() {
		h.deps.Redirect(w, r, back, shared.FlashWarning, msgLocked)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.deps.Redirect(w, r, back, shared.FlashError, "The form could not be read.")
		return
	}
	var item Item
	errs := make(map[string]string)
	for field, msg := range h.deps.Binder.Decode(&item, r.PostForm) {
		errs[field] = msg
	}
	item.Order = order.ID
	if len(errs) == 0 && item.Product > 0 {
		if err := h.applyPrice(r.Context(), order, &item, postedPrices(r.PostForm)); err != nil {
			if apiclient.IsLoggedOut(err) {
				h.deps.Fail(w, r, err, back)
				return
			}
			errs["product"] = apiclient.UserSafeMessage(err)
		}
	}
	for field, msg := range h.deps.Binder.Validate(item) {
		if _, exists := errs[field]; !exists {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		h.deps.Redirect(w, r, back, shared.FlashError, firstError(errs))
		return
	}
	created, err := h.stores.Items.Create(r.Context(), item)
	if err != nil {
		if errors.Is(err, apiclient.ErrValidation) {
			h.deps.Redirect(w, r, back, shared.FlashError, apiclient.UserSafeMessage(err))
			return
		}
		h.deps.Fail(w, r, err, back)
		return
	}
	h.deps.Record(r, "create", "order-items", created.ID, map[string]any{"order": order.ID, "product": created.Product, "quantity": created.Quantity})
	h.deps.Redirect(w, r, back, shared.FlashSuccess, "Line added to order "+order.OrderNumber+".")
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	back := orderPath(order.ID)
	itemID, ok := crud.IDParam(r, "item")
	if !ok {
		h.deps.Redirect(w, r, back, shared.FlashError, "That line no longer exists.")
		return
	}
	if !order.Editable() {
		h.deps.Redirect(w, r, back, shared.FlashWarning, msgLocked)
		return
	}
	item, err := h.stores.Items.Get(r.Context(), itemID)
	if err != nil {
		h.deps.Fail(w, r, err, back)
		return
	}
	if item.Order != order.ID {
		h.deps.Redirect(w, r, back, shared.FlashError, "That line belongs to another order.")
		return
	}
	if err := h.stores.Items.Delete(r.Context(), itemID); err != nil {
		h.deps.Fail(w, r, err, back)
		return
	}
	h.deps.Record(r, "delete", "order-items", itemID, map[string]any{"order": order.ID})
	h.deps.Redirect(w, r, back, shared.FlashSuccess, "Line removed.")
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	back := orderPath(order.ID)
	next := r.PostFormValue("status")
	if !order.CanMoveTo(next) {
		h.deps.Redirect(w, r, back, shared.FlashError, fmt.Sprintf("An order that is %s cannot become %s.", view.Title(order.Status), next))
		return
	}
	previous := order.Status
	order.Status = next
	if _, err := h.stores.Orders.Update(r.Context(), order.ID, order); err != nil {
		h.deps.Fail(w, r, err, back)
		return
	}
	h.deps.Record(r, "status", "orders", order.ID, map[string]any{"from": previous, "to": next})
	h.deps.Redirect(w, r, back, shared.FlashSuccess, fmt.Sprintf("Order %s marked %s.", order.OrderNumber, view.Title(next)))
}

// applyPrice fills the unit price from the customer's pricing and the GST
// rate from the product unless the user entered them. An entered zero is kept.
func (h *Handler) applyPrice(ctx context.Context, order Order, item *Item, entered priceInputs) error {
	if entered.unitPrice && entered.gstRate {
		return nil
	}
	quote, err := h.resolver.Price(ctx, order.Customer, item.Product, order.OrderDate)
	if err != nil {
		return err
	}
	if !entered.unitPrice {
		item.UnitPrice = quote.UnitPrice
	}
	if !entered.gstRate {
		item.GSTRate = quote.GSTRate
	}
	return nil
}

type priceInputs struct {
	unitPrice bool
	gstRate   bool
}

func postedPrices(values url.Values) priceInputs {
	return priceInputs{
		unitPrice: strings.TrimSpace(values.Get("unit_price")) != "",
		gstRate:   strings.TrimSpace(values.Get("gst_rate")) != "",
	}
}

func firstError(errs map[string]string) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	field := fields[0]
	if field == "general" {
		return errs[field]
	}
	return view.Title(field) + ": " + errs[field]
}
