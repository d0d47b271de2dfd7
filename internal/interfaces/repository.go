package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogRepository is the read side of the menu catalog.
type CatalogRepository interface {
	// FindByName matches a normalized name exactly. Unavailable items are
	// returned too; callers decide eligibility. Misses return domain.ErrItemNotFound.
	FindByName(ctx context.Context, normalizedName string) (*domain.FoodItem, error)
	ListAll(ctx context.Context) ([]*domain.FoodItem, error)
}

// OrderStore persists orders, their lines and their tracking row.
type OrderStore interface {
	// FindOrCreateOpenOrder returns the session's latest pending order or
	// creates one with its tracking row. created reports which happened.
	FindOrCreateOpenOrder(ctx context.Context, sessionID string) (order *domain.Order, created bool, err error)
	FindOpenOrder(ctx context.Context, sessionID string) (*domain.Order, error)
	FindLatestOrder(ctx context.Context, sessionID string) (*domain.Order, error)
	// GetOrder loads an order with its lines. Missing orders return domain.ErrInvalidOrder.
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	SumLineTotals(ctx context.Context, orderID int64) (decimal.Decimal, error)
	// WithOrder runs fn while holding the order exclusively. Everything fn
	// does through tx is committed when fn returns nil and discarded otherwise.
	WithOrder(ctx context.Context, orderID int64, fn func(tx OrderTx) error) error
}

// OrderTx is the write side of a single locked order.
type OrderTx interface {
	Order() *domain.Order
	Line(ctx context.Context, itemID int64) (*domain.OrderLine, error)
	PutLine(ctx context.Context, line domain.OrderLine) error
	DeleteLine(ctx context.Context, itemID int64) error
	ClearLines(ctx context.Context) (int64, error)
	SaveTracking(ctx context.Context) error
}

// MaintenanceRepository repairs and prunes stored orders.
type MaintenanceRepository interface {
	RepairConsistency(ctx context.Context, staleAfter time.Duration) (domain.RepairReport, error)
	PurgeClosedOrders(ctx context.Context, olderThan time.Duration) (int64, error)
}
