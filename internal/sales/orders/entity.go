package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/internal/view"
)

// API collection endpoints.
const (
	APIPath     = "/api/orders/"
	ItemAPIPath = "/api/order-items/"
)

var errUnknownOrder = errors.New("the selected order does not exist")

const msgLocked = "Lines can only change while the order is pending or confirmed."

var errLineLocked = errors.New(msgLocked)

func statusChoices() []crud.Option {
	out := make([]crud.Option, 0, len(Statuses))
	for _, s := range Statuses {
		out = append(out, crud.Option{Value: s, Label: view.Title(s)})
	}
	return out
}

// StatusBadge maps an order status onto a badge style.
func StatusBadge(status string) string {
	switch status {
	case StatusCancelled:
		return "danger"
	case StatusDelivered:
		return "active"
	case StatusPending:
		return "warning"
	default:
		return "info"
	}
}

func customerLookup(store crud.Store[customers.Customer]) crud.Lookup {
	return crud.Options(store, func(c customers.Customer) string { return c.Name })
}

// Orders describes the order entity. Its detail page lists the lines.
func (h *Handler) Orders() *crud.Entity[Order] {
	return &crud.Entity[Order]{
		Key:      "orders",
		Singular: "Order",
		Plural:   "Orders",
		BasePath: "/orders",
		Store:    h.stores.Orders,
		Columns: []crud.Column[Order]{
			{Label: "Order no.", Value: func(o Order) string { return o.OrderNumber }},
			{Label: "Customer", Value: func(o Order) string { return strconv.FormatInt(o.Customer, 10) }, Lookup: "customers"},
			{Label: "Date", Value: func(o Order) string { return view.FormatDate(o.OrderDate) }},
			{Label: "Expected delivery", Value: func(o Order) string { return view.FormatDate(o.DeliveryDate) }},
			{Label: "Status", Value: func(o Order) string { return view.Title(o.Status) }, Badge: func(o Order) string { return StatusBadge(o.Status) }},
		},
		Fields: []crud.Field{
			{Name: "order_number", Label: "Order number", Required: true},
			{Name: "customer", Label: "Customer", Kind: crud.KindSelect, Required: true, Lookup: "customers"},
			{Name: "order_date", Label: "Order date", Kind: crud.KindDate, Required: true},
			{Name: "expected_delivery_date", Label: "Expected delivery", Kind: crud.KindDate},
			{Name: "status", Label: "Status", Kind: crud.KindSelect, Required: true, Choices: statusChoices()},
			{Name: "notes", Label: "Notes", Kind: crud.KindTextarea},
		},
		Lookups: map[string]crud.Lookup{"customers": customerLookup(h.stores.Customers)},
		Search: func(o Order) []string {
			return []string{o.OrderNumber, o.Notes}
		},
		Status:   func(o Order) string { return o.Status },
		Statuses: Statuses,
		Label:    func(o Order) string { return o.OrderNumber },
		New: func() Order {
			now := h.now().UTC()
			return Order{
				OrderNumber: "SO-" + now.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:4]),
				OrderDate:   shared.DateOf(now),
				Status:      StatusPending,
			}
		},
		Prepare: func(_ context.Context, o *Order) error {
			o.OrderNumber = strings.ToUpper(strings.TrimSpace(o.OrderNumber))
			o.Notes = view.Sanitize(o.Notes)
			return nil
		},
		Check: func(o Order) map[string]string {
			if o.DeliveryDate != nil && !o.OrderDate.IsZero() && o.DeliveryDate.Before(o.OrderDate.Time) {
				return map[string]string{"expected_delivery_date": "Must not be before the order date."}
			}
			return nil
		},
		CheckUpdate: func(_ context.Context, current, next Order) (map[string]string, error) {
			if next.Status == current.Status || current.CanMoveTo(next.Status) {
				return nil, nil
			}
			return map[string]string{
				"status": fmt.Sprintf("An order that is %s cannot become %s.", view.Title(current.Status), view.Title(next.Status)),
			}, nil
		},
		ShowTemplate: "pages/order_show.html",
		Detail:       h.detail,
		Links: func(o Order) []crud.Link {
			return []crud.Link{{Label: "Add line", URL: "/order-items/new?order=" + strconv.FormatInt(o.ID, 10)}}
		},
		Routes: h.routes,
	}
}

// Items describes order lines as a standalone entity.
func (h *Handler) Items() *crud.Entity[Item] {
	return &crud.Entity[Item]{
		Key:      "order-items",
		Singular: "Order item",
		Plural:   "Order items",
		BasePath: "/order-items",
		Store:    h.stores.Items,
		Columns: []crud.Column[Item]{
			{Label: "Order", Value: func(i Item) string { return strconv.FormatInt(i.Order, 10) }, Lookup: "orders"},
			{Label: "Product", Value: func(i Item) string { return strconv.FormatInt(i.Product, 10) }, Lookup: "products"},
			{Label: "Qty", Value: func(i Item) string { return strconv.Itoa(i.Quantity) }},
			{Label: "Unit price", Value: func(i Item) string { return view.FormatMoney(i.UnitPrice) }},
			{Label: "Discount", Value: func(i Item) string { return i.DiscountPercent.String() + "%" }},
			{Label: "GST", Value: func(i Item) string { return i.GSTRate.String() + "%" }},
			{Label: "Line total", Value: func(i Item) string { return view.FormatMoney(i.Total()) }},
		},
		Fields: []crud.Field{
			{Name: "order", Label: "Order", Kind: crud.KindSelect, Required: true, Lookup: "orders"},
			{Name: "product", Label: "Product", Kind: crud.KindSelect, Required: true, Lookup: "products"},
			{Name: "quantity", Label: "Quantity", Kind: crud.KindNumber, Required: true, Step: "1"},
			{Name: "unit_price", Label: "Unit price (INR)", Kind: crud.KindNumber, Step: "0.01", Help: "Leave blank to use the customer's agreed price."},
			{Name: "discount_percent", Label: "Discount (%)", Kind: crud.KindNumber, Step: "0.01"},
			{Name: "gst_rate", Label: "GST rate (%)", Kind: crud.KindNumber, Step: "1", Help: "Leave blank to use the product's rate."},
		},
		Lookups: map[string]crud.Lookup{
			"orders":   crud.Options(h.stores.Orders, func(o Order) string { return o.OrderNumber }),
			"products": crud.Options(h.stores.Products, products.Product.DisplayName),
		},
		Label: func(i Item) string { return "Line #" + strconv.FormatInt(i.ID, 10) },
		Prepare: func(ctx context.Context, i *Item) error {
			if i.Order <= 0 || i.Product <= 0 {
				return nil
			}
			order, err := h.stores.Orders.Get(ctx, i.Order)
			if err != nil {
				if errors.Is(err, apiclient.ErrNotFound) {
					return errUnknownOrder
				}
				return err
			}
			if !order.Editable() {
				return errLineLocked
			}
			return h.applyPrice(ctx, order, i, priceInputs{
				unitPrice: crud.Submitted(ctx, "unit_price"),
				gstRate:   crud.Submitted(ctx, "gst_rate"),
			})
		},
		CheckUpdate: func(ctx context.Context, current, _ Item) (map[string]string, error) {
			locked, err := h.lineLocked(ctx, current)
			if err != nil || !locked {
				return nil, err
			}
			return map[string]string{"general": msgLocked}, nil
		},
		CheckDelete: func(ctx context.Context, current Item) (string, error) {
			locked, err := h.lineLocked(ctx, current)
			if err != nil || !locked {
				return "", err
			}
			return msgLocked, nil
		},
		Links: func(i Item) []crud.Link {
			return []crud.Link{{Label: "Order", URL: orderPath(i.Order)}}
		},
	}
}

// lineLocked reports whether the order holding item no longer accepts line
// changes. A line whose order is gone is not locked.
func (h *Handler) lineLocked(ctx context.Context, item Item) (bool, error) {
	order, err := h.stores.Orders.Get(ctx, item.Order)
	if errors.Is(err, apiclient.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !order.Editable(), nil
}
