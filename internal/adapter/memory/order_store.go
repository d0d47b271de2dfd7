package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	"github.com/shopspring/decimal"
)

// OrderStore keeps orders in process. Each order has its own lock so
// transactions on different orders run in parallel while transactions on
// the same order are serialized. A transaction works on a copy that
// replaces the committed order only when it succeeds.
type OrderStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*entry
}

type entry struct {
	lock  chan struct{}
	order *domain.Order
}

var (
	_ interfaces.OrderStore            = (*OrderStore)(nil)
	_ interfaces.MaintenanceRepository = (*OrderStore)(nil)
)

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[int64]*entry)}
}

func (s *OrderStore) FindOrCreateOpenOrder(ctx context.Context, sessionID string) (*domain.Order, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	order, err := domain.NewOrder(sessionID)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if open := s.latestLocked(order.SessionID, true); open != nil {
		return open.Clone(), false, nil
	}

	s.nextID++
	order.ID = s.nextID
	order.Tracking.OrderID = order.ID
	s.orders[order.ID] = &entry{
		lock:  make(chan struct{}, 1),
		order: order,
	}
	return order.Clone(), true, nil
}

func (s *OrderStore) FindOpenOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	return s.find(ctx, sessionID, true)
}

func (s *OrderStore) FindLatestOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	return s.find(ctx, sessionID, false)
}

func (s *OrderStore) find(ctx context.Context, sessionID string, openOnly bool) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.latestLocked(sessionID, openOnly)
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// latestLocked picks the newest order of a session. Callers hold s.mu.
func (s *OrderStore) latestLocked(sessionID string, openOnly bool) *domain.Order {
	var latest *domain.Order
	for _, e := range s.orders {
		o := e.order
		if o.SessionID != sessionID || (openOnly && !o.IsOpen()) {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) ||
			(o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = o
		}
	}
	return latest
}

func (s *OrderStore) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %d does not exist", domain.ErrInvalidOrder, orderID)
	}
	order := e.order.Clone()
	domain.SortLines(order.Lines)
	return order, nil
}

func (s *OrderStore) SumLineTotals(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.orders[orderID]
	if !ok {
		return decimal.Zero, nil
	}
	return domain.SumTotals(e.order.Lines), nil
}

func (s *OrderStore) WithOrder(ctx context.Context, orderID int64, fn func(tx interfaces.OrderTx) error) error {
	s.mu.Lock()
	e, ok := s.orders[orderID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: order %d does not exist", domain.ErrInvalidOrder, orderID)
	}

	select {
	case e.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.lock }()

	s.mu.Lock()
	tx := &orderTx{order: e.order.Clone()}
	s.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}
	// A cancelled request must not commit.
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	e.order = tx.order
	s.mu.Unlock()
	return nil
}

func (s *OrderStore) RepairConsistency(ctx context.Context, staleAfter time.Duration) (domain.RepairReport, error) {
	var report domain.RepairReport
	if err := ctx.Err(); err != nil {
		return report, err
	}

	cutoff := time.Now().UTC().Add(-staleAfter)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.orders {
		o := e.order
		if o.IsOpen() && len(o.Lines) == 0 && o.CreatedAt.Before(cutoff) {
			delete(s.orders, id)
			report.EmptyOrdersRemoved++
		}
	}
	return report, nil
}

func (s *OrderStore) PurgeClosedOrders(ctx context.Context, olderThan time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, e := range s.orders {
		o := e.order
		closed := o.Status() == domain.StatusCancelled || o.Status() == domain.StatusDelivered
		if closed && o.CreatedAt.Before(cutoff) {
			delete(s.orders, id)
			purged++
		}
	}
	return purged, nil
}

// orderTx edits a private copy of the order.
type orderTx struct {
	order *domain.Order
}

func (t *orderTx) Order() *domain.Order {
	return t.order
}

func (t *orderTx) Line(ctx context.Context, itemID int64) (*domain.OrderLine, error) {
	for _, l := range t.order.Lines {
		if l.ItemID == itemID {
			line := l
			return &line, nil
		}
	}
	return nil, domain.ErrLineNotFound
}

func (t *orderTx) PutLine(ctx context.Context, line domain.OrderLine) error {
	if line.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if line.UnitPrice.IsNegative() {
		return domain.ErrInvalidPrice
	}
	line.OrderID = t.order.ID

	for i, l := range t.order.Lines {
		if l.ItemID == line.ItemID {
			line.CreatedAt = l.CreatedAt
			t.order.Lines[i] = line
			return nil
		}
	}
	t.order.Lines = append(t.order.Lines, line)
	return nil
}

func (t *orderTx) DeleteLine(ctx context.Context, itemID int64) error {
	for i, l := range t.order.Lines {
		if l.ItemID == itemID {
			t.order.Lines = append(t.order.Lines[:i], t.order.Lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrLineNotFound
}

func (t *orderTx) ClearLines(ctx context.Context) (int64, error) {
	n := int64(len(t.order.Lines))
	t.order.Lines = nil
	return n, nil
}

// SaveTracking is a no-op: tracking lives on the copy and commits with it.
func (t *orderTx) SaveTracking(ctx context.Context) error {
	return nil
}
