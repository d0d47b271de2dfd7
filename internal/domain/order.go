package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a session's cart and, once placed, its order.
type Order struct {
	ID        int64
	SessionID string
	Tracking  OrderStatus
	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLine is one item of an order. The total is never stored on the
// struct, it is always derived from UnitPrice and Quantity.
type OrderLine struct {
	OrderID   int64
	ItemID    int64
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder builds an order together with its pending tracking record.
// Stores persist both in one transaction.
func NewOrder(sessionID string) (*Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	now := time.Now().UTC()
	return &Order{
		SessionID: sessionID,
		Tracking: OrderStatus{
			Status:    StatusPending,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewOrderLine validates and builds a line for item at unitPrice.
func NewOrderLine(orderID int64, item *FoodItem, quantity int, unitPrice decimal.Decimal) (OrderLine, error) {
	if quantity <= 0 {
		return OrderLine{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return OrderLine{}, ErrInvalidPrice
	}

	now := time.Now().UTC()
	return OrderLine{
		OrderID:   orderID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Quantity:  quantity,
		UnitPrice: NormalizePrice(unitPrice),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Total is unit price times quantity.
func (l OrderLine) Total() decimal.Decimal {
	return LineTotal(l.UnitPrice, l.Quantity)
}

// Replace overwrites quantity and unit price, keeping the line identity.
func (l OrderLine) Replace(quantity int, unitPrice decimal.Decimal) (OrderLine, error) {
	if quantity <= 0 {
		return l, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return l, ErrInvalidPrice
	}
	l.Quantity = quantity
	l.UnitPrice = NormalizePrice(unitPrice)
	l.UpdatedAt = time.Now().UTC()
	return l, nil
}

// Decrement lowers the quantity by n. The second result is false when the
// line would reach zero and must be deleted instead.
func (l OrderLine) Decrement(n int) (OrderLine, bool) {
	if n >= l.Quantity {
		return l, false
	}
	l.Quantity -= n
	l.UpdatedAt = time.Now().UTC()
	return l, true
}

func (l OrderLine) Snapshot() LineSnapshot {
	return LineSnapshot{
		OrderID:    l.OrderID,
		ItemID:     l.ItemID,
		ItemName:   l.ItemName,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
		TotalPrice: l.Total(),
	}
}

// Status is the current tracking status.
func (o *Order) Status() Status {
	return o.Tracking.Status
}

// IsOpen reports whether lines may still change.
func (o *Order) IsOpen() bool {
	return o.Tracking.Status == StatusPending
}

// TransitionTo moves the order along the lifecycle.
func (o *Order) TransitionTo(next Status) error {
	if !o.Tracking.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	o.Tracking.Status = next
	o.Tracking.UpdatedAt = now
	o.UpdatedAt = now
	return nil
}

// Touch bumps the order and tracking timestamps.
func (o *Order) Touch() {
	now := time.Now().UTC()
	o.Tracking.UpdatedAt = now
	o.UpdatedAt = now
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	c := *o
	c.Lines = append([]OrderLine(nil), o.Lines...)
	return &c
}

// SortLines orders lines by item name, then item id.
func SortLines(lines []OrderLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := strings.ToLower(lines[i].ItemName), strings.ToLower(lines[j].ItemName)
		if a != b {
			return a < b
		}
		return lines[i].ItemID < lines[j].ItemID
	})
}

// Summary builds the read model for presentation.
func (o *Order) Summary() OrderSummary {
	quantity := 0
	for _, l := range o.Lines {
		quantity += l.Quantity
	}
	return OrderSummary{
		OrderID:       o.ID,
		SessionID:     o.SessionID,
		Status:        o.Tracking.Status,
		ItemCount:     len(o.Lines),
		TotalQuantity: quantity,
		TotalAmount:   SumTotals(o.Lines),
		UpdatedAt:     o.Tracking.UpdatedAt,
	}
}

// Details returns line snapshots sorted by item name.
func (o *Order) Details() []LineSnapshot {
	lines := append([]OrderLine(nil), o.Lines...)
	SortLines(lines)
	out := make([]LineSnapshot, len(lines))
	for i, l := range lines {
		out[i] = l.Snapshot()
	}
	return out
}

// LineSnapshot is a read-only view of a line.
type LineSnapshot struct {
	OrderID    int64           `json:"order_id"`
	ItemID     int64           `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderSummary is a read-only view of an order.
type OrderSummary struct {
	OrderID       int64           `json:"order_id"`
	SessionID     string          `json:"session_id"`
	Status        Status          `json:"status"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
