package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPlaced    Status = "placed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var validTransitions = map[Status][]Status{
	StatusPending:   {StatusPlaced, StatusCancelled},
	StatusPlaced:    {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseStatus accepts any letter case.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validTransitions[status]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true for delivered and cancelled orders.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// OrderStatus is the tracking record owned 1:1 by an order.
type OrderStatus struct {
	OrderID   int64
	Status    Status
	UpdatedAt time.Time
}

// RepairReport counts the rows touched by a consistency repair.
type RepairReport struct {
	MissingTrackingFixed    int64 `json:"missing_tracking_fixed"`
	OrphanedTrackingRemoved int64 `json:"orphaned_tracking_removed"`
	EmptyOrdersRemoved      int64 `json:"empty_orders_removed"`
}

// StatusChange describes a committed status transition.
type StatusChange struct {
	OrderID   int64
	SessionID string
	From      Status
	To        Status
	At        time.Time
}
