package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderPlacedMessage is published to the kitchen when a cart is checked out.
type OrderPlacedMessage struct {
	OrderID     int64                 `json:"order_id"`
	SessionID   string                `json:"session_id"`
	Items       []domain.LineSnapshot `json:"items"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	PlacedAt    time.Time             `json:"placed_at"`
}

type StatusUpdateMessage struct {
	OrderID   int64         `json:"order_id"`
	SessionID string        `json:"session_id"`
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
	ChangedBy string        `json:"changed_by"`
	Timestamp time.Time     `json:"timestamp"`
}

type MessagePublisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlacedMessage) error
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
}

type MessageConsumer interface {
	ConsumeOrders(ctx context.Context, handler OrderMessageHandler) error
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
}

type (
	OrderMessageHandler func(ctx context.Context, body []byte) error
	NotificationHandler func(ctx context.Context, body []byte) error
)

// ErrRequeue marks a handler failure worth retrying on another delivery.
// Any other handler error dead-letters the message.
var ErrRequeue = errors.New("requeue message")
