package orders

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/report"
)

// Source is what a printed document needs to know about an order.
type Source struct {
	Order    Order
	Items    []Item
	Customer customers.Customer
	Products map[int64]products.Product
}

// LoadSource fetches an order with its lines, customer and catalogue.
func LoadSource(ctx context.Context, stores Stores, orderID int64) (Source, error) {
	order, err := stores.Orders.Get(ctx, orderID)
	if err != nil {
		return Source{}, err
	}
	src := Source{Order: order, Products: make(map[int64]products.Product)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := stores.Items.List(gctx)
		src.Items = ItemsOf(all, orderID)
		return err
	})
	g.Go(func() error {
		c, err := stores.Customers.Get(gctx, order.Customer)
		if errors.Is(err, apiclient.ErrNotFound) {
			return fmt.Errorf("customer %d of order %s: %w", order.Customer, order.OrderNumber, err)
		}
		src.Customer = c
		return err
	})
	var catalogue []products.Product
	g.Go(func() error {
		var err error
		catalogue, err = stores.Products.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Source{}, err
	}
	for _, p := range catalogue {
		src.Products[p.ID] = p
	}
	return src, nil
}

// Totals sums the order lines.
func (s Source) Totals() Totals {
	return Sum(s.Items)
}

// Party renders the customer as the billed party.
func (s Source) Party() report.Party {
	c := s.Customer
	return report.Party{Name: c.Name, Address: c.Address, City: c.City, State: c.State, Pincode: c.Pincode, GSTIN: c.GSTIN, Phone: c.Phone}
}

// Lines renders the order lines for a document.
func (s Source) Lines() []report.Line {
	out := make([]report.Line, 0, len(s.Items))
	for _, item := range s.Items {
		p, ok := s.Products[item.Product]
		line := report.Line{
			Description: fmt.Sprintf("Product #%d", item.Product),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.DiscountPercent,
			GSTRate:     item.GSTRate,
			Amount:      item.Amount(),
			Tax:         item.Tax(),
			Total:       item.Total(),
		}
		if ok {
			line.Description = p.Name
			line.SKU = p.SKU
			line.HSN = p.HSNCode
			line.Unit = p.Unit
		}
		out = append(out, line)
	}
	return out
}
