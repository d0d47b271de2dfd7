package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fish() *FoodItem {
	return &FoodItem{ID: 6, Name: "Fish", Price: decimal.RequireFromString("1200.00"), Available: true}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		quantity  int
		want      string
	}{
		{name: "two fish", unitPrice: "1200.00", quantity: 2, want: "2400.00"},
		{name: "no drift on cents", unitPrice: "0.10", quantity: 3, want: "0.30"},
		{name: "rounded to stored scale", unitPrice: "1.005", quantity: 2, want: "2.02"},
		{name: "free item", unitPrice: "0", quantity: 5, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(decimal.RequireFromString(tt.unitPrice), tt.quantity)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestNewOrderLine(t *testing.T) {
	line, err := NewOrderLine(1, fish(), 2, fish().Price)
	require.NoError(t, err)
	assert.Equal(t, int64(6), line.ItemID)
	assert.Equal(t, "Fish", line.ItemName)
	assert.True(t, decimal.RequireFromString("2400").Equal(line.Total()))

	_, err = NewOrderLine(1, fish(), 0, fish().Price)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrderLine(1, fish(), 1, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestOrderLineReplaceAndDecrement(t *testing.T) {
	line, err := NewOrderLine(1, fish(), 2, fish().Price)
	require.NoError(t, err)

	line, err = line.Replace(3, fish().Price)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, decimal.RequireFromString("3600").Equal(line.Total()))

	line, kept := line.Decrement(1)
	assert.True(t, kept)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, decimal.RequireFromString("2400").Equal(line.Total()))

	_, kept = line.Decrement(2)
	assert.False(t, kept)
}

func TestNewOrderStartsPending(t *testing.T) {
	order, err := NewOrder("  abc-123 ")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", order.SessionID)
	assert.Equal(t, StatusPending, order.Status())
	assert.True(t, order.IsOpen())

	_, err = NewOrder("   ")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusPending, StatusPlaced, true},
		{StatusPlaced, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusReady, StatusCancelled, true},
		{StatusPending, StatusReady, false},
		{StatusPlaced, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			order := &Order{Tracking: OrderStatus{Status: tt.from}}
			err := order.TransitionTo(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, order.Status())
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, order.Status())
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Placed ")
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, s)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)
}

func TestDetailsSortedByName(t *testing.T) {
	order := &Order{ID: 1, Lines: []OrderLine{
		{ItemID: 3, ItemName: "Plantain", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		{ItemID: 6, ItemName: "Fish", Quantity: 2, UnitPrice: decimal.NewFromInt(1200)},
		{ItemID: 1, ItemName: "beef", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
	}}

	details := order.Details()
	require.Len(t, details, 3)
	assert.Equal(t, "beef", details[0].ItemName)
	assert.Equal(t, "Fish", details[1].ItemName)
	assert.Equal(t, "Plantain", details[2].ItemName)

	summary := order.Summary()
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, 4, summary.TotalQuantity)
	assert.True(t, decimal.NewFromInt(3900).Equal(summary.TotalAmount))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jollof rice", NormalizeName("  Jollof   RICE "))
	assert.Equal(t, "", NormalizeName("   "))
}
