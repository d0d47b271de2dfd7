package interfaces

import (
	"context"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogService resolves human entered item names.
type CatalogService interface {
	Resolve(ctx context.Context, name string) (*domain.FoodItem, error)
	ResolveAny(ctx context.Context, name string) (*domain.FoodItem, error)
	PriceOf(ctx context.Context, name string) (decimal.Decimal, error)
	Menu(ctx context.Context) ([]*domain.FoodItem, error)
}

// RemoveResult is either the updated line or Removed when the line is gone.
type RemoveResult struct {
	Line    *domain.LineSnapshot `json:"line,omitempty"`
	Removed bool                 `json:"removed"`
}

// CartService is the cart/order store: line mutations and order reads.
type CartService interface {
	AddOrUpdateLine(ctx context.Context, orderID int64, itemName string, quantity int) (*domain.LineSnapshot, error)
	AddOrUpdateLineAt(ctx context.Context, orderID int64, itemName string, quantity int, unitPrice decimal.Decimal) (*domain.LineSnapshot, error)
	RemoveLine(ctx context.Context, orderID int64, itemName string, quantity int) (*RemoveResult, error)
	DeleteLine(ctx context.Context, orderID int64, itemName string) error
	Clear(ctx context.Context, orderID int64) (*domain.StatusChange, error)
	ComputeOrderTotal(ctx context.Context, orderID int64) (decimal.Decimal, error)
	PriceOf(ctx context.Context, itemName string) (decimal.Decimal, error)
	OrderSummary(ctx context.Context, orderID int64) (*domain.OrderSummary, error)
	OrderDetails(ctx context.Context, orderID int64) ([]domain.LineSnapshot, error)
}

// LifecycleService drives orders through their status lifecycle.
type LifecycleService interface {
	GetOrCreateOpenOrder(ctx context.Context, sessionID string) (int64, error)
	AdvanceStatus(ctx context.Context, orderID int64, status domain.Status, changedBy string) error
	Cancel(ctx context.Context, orderID int64) error
	Checkout(ctx context.Context, sessionID string) (*domain.OrderSummary, error)
	Track(ctx context.Context, sessionID string) (*domain.OrderSummary, error)
}

// KitchenService prepares placed orders.
type KitchenService interface {
	ProcessOrder(ctx context.Context, msg OrderPlacedMessage) error
}
