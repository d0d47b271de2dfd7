package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/memory"
	"github.com/YelzhanWeb/theo-eats/internal/app/catalog"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	catalog *memory.Catalog
	store   *memory.OrderStore
	cart    *Service
	orderID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := memory.NewCatalog(domain.DefaultMenu()...)
	store := memory.NewOrderStore()
	svc := NewService(store, catalog.NewService(cat, logger.Discard()), logger.Discard())

	order, _, err := store.FindOrCreateOpenOrder(context.Background(), "session-1")
	require.NoError(t, err)

	return &fixture{catalog: cat, store: store, cart: svc, orderID: order.ID}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddFishScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	line, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "Fish", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(dec("1200.00")))
	assert.True(t, line.TotalPrice.Equal(dec("2400.00")))

	total, err := f.cart.ComputeOrderTotal(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, "2400.00", total.StringFixed(2))
}

// Re-adding an item sets its quantity, it does not add to it.
func TestAddReplacesExistingLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "Fish", 2)
	require.NoError(t, err)
	line, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "  fish ", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	details, err := f.cart.OrderDetails(ctx, f.orderID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.True(t, details[0].TotalPrice.Equal(dec("3600.00")))
}

func TestAddRejectsBadInputWithoutChanges(t *testing.T) {
	tests := []struct {
		name     string
		orderID  func(f *fixture) int64
		item     string
		quantity int
		price    *decimal.Decimal
		wantErr  error
	}{
		{name: "zero quantity", item: "Fish", quantity: 0, wantErr: domain.ErrInvalidQuantity},
		{name: "negative quantity", item: "Fish", quantity: -1, wantErr: domain.ErrInvalidQuantity},
		{name: "quantity checked before order", orderID: func(*fixture) int64 { return 0 }, item: "Fish", quantity: 0, wantErr: domain.ErrInvalidQuantity},
		{name: "missing order", orderID: func(*fixture) int64 { return 0 }, item: "Fish", quantity: 1, wantErr: domain.ErrInvalidOrder},
		{name: "unknown order", orderID: func(f *fixture) int64 { return f.orderID + 100 }, item: "Fish", quantity: 1, wantErr: domain.ErrInvalidOrder},
		{name: "unknown item", item: "Pizza", quantity: 1, wantErr: domain.ErrItemNotFound},
		{name: "negative price", item: "Fish", quantity: 1, price: ptr(dec("-0.01")), wantErr: domain.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "Beef", 1)
			require.NoError(t, err)

			id := f.orderID
			if tt.orderID != nil {
				id = tt.orderID(f)
			}
			if tt.price != nil {
				_, err = f.cart.AddOrUpdateLineAt(ctx, id, tt.item, tt.quantity, *tt.price)
			} else {
				_, err = f.cart.AddOrUpdateLine(ctx, id, tt.item, tt.quantity)
			}
			assert.ErrorIs(t, err, tt.wantErr)

			details, err := f.cart.OrderDetails(ctx, f.orderID)
			require.NoError(t, err)
			require.Len(t, details, 1)
			assert.Equal(t, "Beef", details[0].ItemName)
			assert.Equal(t, 1, details[0].Quantity)
		})
	}
}

func TestUnavailableItemCannotBeAdded(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.catalog.SetAvailable("Chicken", false))

	_, err := f.cart.AddOrUpdateLine(context.Background(), f.orderID, "Chicken", 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestExplicitPriceAndFreeze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	line, err := f.cart.AddOrUpdateLineAt(ctx, f.orderID, "Plantain", 3, dec("450.555"))
	require.NoError(t, err)
	assert.Equal(t, "450.56", line.UnitPrice.StringFixed(2))
	assert.Equal(t, "1351.68", line.TotalPrice.StringFixed(2))

	_, err = f.cart.AddOrUpdateLine(ctx, f.orderID, "Fish", 1)
	require.NoError(t, err)
	require.NoError(t, f.catalog.SetPrice("Fish", dec("2000.00")))

	details, err := f.cart.OrderDetails(ctx, f.orderID)
	require.NoError(t, err)
	for _, d := range details {
		if d.ItemName == "Fish" {
			assert.True(t, d.UnitPrice.Equal(dec("1200.00")), "catalog change must not reprice the line")
		}
	}

	price, err := f.cart.PriceOf(ctx, "fish")
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("2000.00")))
}

func TestRemoveLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "Fried Egg", 4)
	require.NoError(t, err)

	res, err := f.cart.RemoveLine(ctx, f.orderID, "fried egg", 1)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	require.NotNil(t, res.Line)
	assert.Equal(t, 3, res.Line.Quantity)
	assert.True(t, res.Line.TotalPrice.Equal(dec("900.00")))

	res, err = f.cart.RemoveLine(ctx, f.orderID, "Fried Egg", 10)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Nil(t, res.Line)

	_, err = f.cart.RemoveLine(ctx, f.orderID, "Fried Egg", 1)
	assert.ErrorIs(t, err, domain.ErrLineNotFound)

	_, err = f.cart.RemoveLine(ctx, f.orderID, "Fried Egg", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestRemoveStillWorksForUnavailableItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "Chicken", 1)
	require.NoError(t, err)
	require.NoError(t, f.catalog.SetAvailable("Chicken", false))

	require.NoError(t, f.cart.DeleteLine(ctx, f.orderID, "Chicken"))

	details, err := f.cart.OrderDetails(ctx, f.orderID)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestClearCancelsAndEmpties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "Fish", 1)
	require.NoError(t, err)

	change, err := f.cart.Clear(ctx, f.orderID)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, domain.StatusPending, change.From)
	assert.Equal(t, domain.StatusCancelled, change.To)

	total, err := f.cart.ComputeOrderTotal(ctx, f.orderID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	summary, err := f.cart.OrderSummary(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, summary.Status)

	again, err := f.cart.Clear(ctx, f.orderID)
	require.NoError(t, err)
	assert.Nil(t, again)

	_, err = f.cart.AddOrUpdateLine(ctx, f.orderID, "Fish", 1)
	assert.ErrorIs(t, err, domain.ErrOrderNotOpen)
}

func TestComputeOrderTotalIsSumOfLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	adds := map[string]int{"Jollof Rice": 2, "Beef": 1, "Fried Egg": 3, "Porridge Beans": 1}
	for name, qty := range adds {
		_, err := f.cart.AddOrUpdateLine(ctx, f.orderID, name, qty)
		require.NoError(t, err)
	}

	details, err := f.cart.OrderDetails(ctx, f.orderID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, d := range details {
		assert.True(t, d.TotalPrice.Equal(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))))
		sum = sum.Add(d.TotalPrice)
	}

	total, err := f.cart.ComputeOrderTotal(ctx, f.orderID)
	require.NoError(t, err)
	assert.True(t, total.Equal(sum))
	assert.Equal(t, "5700.00", total.StringFixed(2))

	missing, err := f.cart.ComputeOrderTotal(ctx, f.orderID+50)
	require.NoError(t, err)
	assert.True(t, missing.IsZero())
}

func TestConcurrentUpdatesOnSameLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for q := 1; q <= 20; q++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_, err := f.cart.AddOrUpdateLine(ctx, f.orderID, "Fish", q)
			assert.NoError(t, err)
		}(q)
	}
	wg.Wait()

	details, err := f.cart.OrderDetails(ctx, f.orderID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	line := details[0]
	assert.True(t, line.TotalPrice.Equal(dec("1200.00").Mul(decimal.NewFromInt(int64(line.Quantity)))))

	total, err := f.cart.ComputeOrderTotal(ctx, f.orderID)
	require.NoError(t, err)
	assert.True(t, total.Equal(line.TotalPrice))
}

type cancellingStore struct {
	interfaces.OrderStore
	cancel context.CancelFunc
}

func (s *cancellingStore) WithOrder(ctx context.Context, orderID int64, fn func(tx interfaces.OrderTx) error) error {
	return s.OrderStore.WithOrder(ctx, orderID, func(tx interfaces.OrderTx) error {
		err := fn(tx)
		s.cancel()
		return err
	})
}

func TestCancelledContextLeavesNoPartialWrite(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewService(&cancellingStore{OrderStore: f.store, cancel: cancel}, catalog.NewService(f.catalog, logger.Discard()), logger.Discard())
	_, err := svc.AddOrUpdateLine(ctx, f.orderID, "Fish", 2)
	assert.ErrorIs(t, err, context.Canceled)

	details, err := f.cart.OrderDetails(context.Background(), f.orderID)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
