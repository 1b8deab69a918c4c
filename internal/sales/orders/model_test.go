package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestItemAmounts(t *testing.T) {
	item := Item{Quantity: 3, UnitPrice: d("99.99"), DiscountPercent: d("10"), GSTRate: d("12")}
	// 299.97 less 10% = 269.973 → 269.97; GST 32.3964 → 32.40
	assert.Equal(t, "269.97", item.Amount().StringFixed(2))
	assert.Equal(t, "32.40", item.Tax().StringFixed(2))
	assert.Equal(t, "302.37", item.Total().StringFixed(2))
}

func TestAmountRoundsHalfUp(t *testing.T) {
	item := Item{Quantity: 1, UnitPrice: d("10.005")}
	assert.Equal(t, "10.01", item.Amount().StringFixed(2))
}

func TestSum(t *testing.T) {
	totals := Sum([]Item{
		{Quantity: 2, UnitPrice: d("50"), GSTRate: d("5")},
		{Quantity: 1, UnitPrice: d("200"), DiscountPercent: d("25"), GSTRate: d("18")},
	})
	assert.Equal(t, "250.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "32.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "282.00", totals.Total.StringFixed(2))
	assert.Equal(t, 3, totals.Units)

	empty := Sum(nil)
	assert.True(t, empty.Total.IsZero())
}

func TestStatusTransitions(t *testing.T) {
	pending := Order{Status: StatusPending}
	assert.True(t, pending.CanMoveTo(StatusConfirmed))
	assert.False(t, pending.CanMoveTo(StatusDelivered))
	assert.True(t, pending.Editable())

	dispatched := Order{Status: StatusDispatched}
	assert.Equal(t, []string{StatusDelivered}, dispatched.NextStatuses())
	assert.False(t, dispatched.Editable())
	assert.Empty(t, Order{Status: StatusCancelled}.NextStatuses())
}

func TestItemsOf(t *testing.T) {
	items := []Item{{ID: 1, Order: 4}, {ID: 2, Order: 5}, {ID: 3, Order: 4}}
	got := ItemsOf(items, 4)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Empty(t, ItemsOf(items, 9))
}
