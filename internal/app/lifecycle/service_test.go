package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/memory"
	"github.com/YelzhanWeb/theo-eats/internal/app/cart"
	"github.com/YelzhanWeb/theo-eats/internal/app/catalog"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	placed  []interfaces.OrderPlacedMessage
	updates []interfaces.StatusUpdateMessage
	err     error
}

func (p *capturePublisher) PublishOrderPlaced(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, msg)
	return p.err
}

func (p *capturePublisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, msg)
	return p.err
}

type fixture struct {
	store     *memory.OrderStore
	cart      *cart.Service
	lifecycle *Service
	publisher *capturePublisher
}

func newFixture() *fixture {
	log := logger.Discard()
	store := memory.NewOrderStore()
	cartSvc := cart.NewService(store, catalog.NewService(memory.NewCatalog(domain.DefaultMenu()...), log), log)
	pub := &capturePublisher{}
	return &fixture{
		store:     store,
		cart:      cartSvc,
		lifecycle: NewService(store, cartSvc, pub, log, "cart-service"),
		publisher: pub,
	}
}

func TestGetOrCreateOpenOrderIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)
	second, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-2")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	summary, err := f.cart.OrderSummary(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, summary.Status)
	assert.Zero(t, summary.ItemCount)

	_, err = f.lifecycle.GetOrCreateOpenOrder(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestGetOrCreateOpenOrderConcurrent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ids := make([]int64, 16)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "busy")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestNewOrderAfterCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)
	require.NoError(t, f.lifecycle.Cancel(ctx, first))

	second, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestAdvanceStatusFollowsLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)
	_, err = f.cart.AddOrUpdateLine(ctx, id, "Fish", 2)
	require.NoError(t, err)

	err = f.lifecycle.AdvanceStatus(ctx, id, domain.StatusReady, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, next := range []domain.Status{domain.StatusPlaced, domain.StatusPreparing, domain.StatusReady, domain.StatusDelivered} {
		require.NoError(t, f.lifecycle.AdvanceStatus(ctx, id, next, "tester"))
	}

	err = f.lifecycle.AdvanceStatus(ctx, id, domain.StatusCancelled, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.Len(t, f.publisher.updates, 4)
	assert.Equal(t, domain.StatusPending, f.publisher.updates[0].OldStatus)
	assert.Equal(t, domain.StatusPlaced, f.publisher.updates[0].NewStatus)
	assert.Equal(t, "tester", f.publisher.updates[0].ChangedBy)

	require.Len(t, f.publisher.placed, 1)
	placed := f.publisher.placed[0]
	assert.Equal(t, id, placed.OrderID)
	assert.Equal(t, "2400.00", placed.TotalAmount.StringFixed(2))
	require.Len(t, placed.Items, 1)
	assert.Equal(t, "Fish", placed.Items[0].ItemName)
}

func TestCancelTwice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)

	require.NoError(t, f.lifecycle.AdvanceStatus(ctx, id, domain.StatusCancelled, ""))
	assert.NoError(t, f.lifecycle.Cancel(ctx, id))
	assert.ErrorIs(t, f.lifecycle.AdvanceStatus(ctx, id, domain.StatusCancelled, ""), domain.ErrInvalidTransition)

	require.Len(t, f.publisher.updates, 1)
	assert.Equal(t, domain.StatusCancelled, f.publisher.updates[0].NewStatus)
	assert.Equal(t, "cart-service", f.publisher.updates[0].ChangedBy)
}

func TestCheckout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.lifecycle.Checkout(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	id, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)

	_, err = f.lifecycle.Checkout(ctx, "s-1")
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	summary, err := f.cart.OrderSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, summary.Status, "a refused checkout leaves the cart open")

	_, err = f.cart.AddOrUpdateLine(ctx, id, "Jollof Rice", 1)
	require.NoError(t, err)

	placed, err := f.lifecycle.Checkout(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, id, placed.OrderID)
	assert.Equal(t, domain.StatusPlaced, placed.Status)
	assert.Equal(t, "1500.00", placed.TotalAmount.StringFixed(2))

	_, err = f.cart.AddOrUpdateLine(ctx, id, "Fish", 1)
	assert.ErrorIs(t, err, domain.ErrOrderNotOpen)

	tracked, err := f.lifecycle.Track(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, id, tracked.OrderID)
	assert.Equal(t, 1, tracked.ItemCount)
}

func TestPublishFailureDoesNotUndoStatus(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")
	ctx := context.Background()

	id, err := f.lifecycle.GetOrCreateOpenOrder(ctx, "s-1")
	require.NoError(t, err)
	_, err = f.cart.AddOrUpdateLine(ctx, id, "Beef", 1)
	require.NoError(t, err)

	require.NoError(t, f.lifecycle.AdvanceStatus(ctx, id, domain.StatusPlaced, ""))

	summary, err := f.cart.OrderSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, summary.Status)
}

func TestAdvanceStatusUnknownOrder(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.lifecycle.AdvanceStatus(context.Background(), 0, domain.StatusPlaced, ""), domain.ErrInvalidOrder)
	assert.ErrorIs(t, f.lifecycle.AdvanceStatus(context.Background(), 42, domain.StatusPlaced, ""), domain.ErrInvalidOrder)
}
