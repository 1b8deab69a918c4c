package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

// Price sources reported by a Quote.
const (
	SourceContract = "contract"
	SourceBase     = "base"
)

// Quote is a resolved unit price.
type Quote struct {
	UnitPrice decimal.Decimal
	GSTRate   decimal.Decimal
	Source    string
	// PriceID is the customer price applied, zero for the base price.
	PriceID int64
}

// Resolve picks the customer price covering on for the customer/product
// pair. Among several matches the latest ValidFrom wins, ties go to the
// higher id. It returns false when none applies.
func Resolve(prices []CustomerPrice, customerID, productID int64, on shared.Date) (CustomerPrice, bool) {
	var (
		best  CustomerPrice
		found bool
	)
	for _, p := range prices {
		if p.Customer != customerID || p.Product != productID || !p.Covers(on) {
			continue
		}
		if !found || p.ValidFrom.After(best.ValidFrom.Time) || (p.ValidFrom.Equal(best.ValidFrom.Time) && p.ID > best.ID) {
			best, found = p, true
		}
	}
	return best, found
}

// Resolver looks prices up through the API.
type Resolver struct {
	prices   crud.Store[CustomerPrice]
	products crud.Store[products.Product]
}

// NewResolver builds a Resolver.
func NewResolver(prices crud.Store[CustomerPrice], productStore crud.Store[products.Product]) *Resolver {
	return &Resolver{prices: prices, products: productStore}
}

// Price returns the unit price customerID pays for productID on the given
// day: the discounted contract price when one is valid, otherwise the
// product's base price.
func (r *Resolver) Price(ctx context.Context, customerID, productID int64, on shared.Date) (Quote, error) {
	product, err := r.products.Get(ctx, productID)
	if err != nil {
		return Quote{}, fmt.Errorf("pricing: load product %d: %w", productID, err)
	}
	prices, err := r.prices.List(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("pricing: list customer prices: %w", err)
	}
	if p, ok := Resolve(prices, customerID, productID, on); ok {
		return Quote{UnitPrice: p.Effective(), GSTRate: product.GSTRate, Source: SourceContract, PriceID: p.ID}, nil
	}
	return Quote{UnitPrice: product.BasePrice.Round(2), GSTRate: product.GSTRate, Source: SourceBase}, nil
}
