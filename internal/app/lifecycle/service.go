package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
)

// Clearer cancels an order and removes its lines.
type Clearer interface {
	Clear(ctx context.Context, orderID int64) (*domain.StatusChange, error)
}

type Service struct {
	store     interfaces.OrderStore
	cart      Clearer
	publisher interfaces.MessagePublisher
	logger    logger.Logger
	service   string
}

func NewService(store interfaces.OrderStore, cart Clearer, publisher interfaces.MessagePublisher, logger logger.Logger, service string) *Service {
	return &Service{
		store:     store,
		cart:      cart,
		publisher: publisher,
		logger:    logger,
		service:   service,
	}
}

// GetOrCreateOpenOrder returns the session's pending order, creating it
// together with its tracking row when there is none.
func (s *Service) GetOrCreateOpenOrder(ctx context.Context, sessionID string) (int64, error) {
	order, created, err := s.store.FindOrCreateOpenOrder(ctx, sessionID)
	if err != nil {
		if !domain.IsRejection(err) {
			s.logger.Error("db_transaction_failed", "Failed to resolve open order", "", map[string]interface{}{
				"session_id": sessionID,
			}, err)
		}
		return 0, err
	}

	if created {
		s.logger.Info("order_created", fmt.Sprintf("Created order %d for session %s", order.ID, order.SessionID), "", map[string]interface{}{
			"order_id":   order.ID,
			"session_id": order.SessionID,
		})
	}
	return order.ID, nil
}

// AdvanceStatus moves an order one step along its lifecycle. Cancelling
// goes through the cart so the lines are removed in the same unit.
func (s *Service) AdvanceStatus(ctx context.Context, orderID int64, status domain.Status, changedBy string) error {
	if orderID <= 0 {
		return domain.ErrInvalidOrder
	}
	if changedBy == "" {
		changedBy = s.service
	}

	if status == domain.StatusCancelled {
		return s.cancel(ctx, orderID, changedBy, true)
	}

	var change domain.StatusChange
	var placed *interfaces.OrderPlacedMessage
	err := s.store.WithOrder(ctx, orderID, func(tx interfaces.OrderTx) error {
		order := tx.Order()
		from := order.Status()
		if err := order.TransitionTo(status); err != nil {
			return fmt.Errorf("%w: order %d cannot go from %s to %s", err, orderID, from, status)
		}
		if status == domain.StatusPlaced && len(order.Lines) == 0 {
			return fmt.Errorf("%w: order %d", domain.ErrEmptyOrder, orderID)
		}
		if err := tx.SaveTracking(ctx); err != nil {
			return err
		}

		change = domain.StatusChange{
			OrderID:   order.ID,
			SessionID: order.SessionID,
			From:      from,
			To:        status,
			At:        order.Tracking.UpdatedAt,
		}
		if status == domain.StatusPlaced {
			placed = &interfaces.OrderPlacedMessage{
				OrderID:     order.ID,
				SessionID:   order.SessionID,
				Items:       order.Details(),
				TotalAmount: domain.SumTotals(order.Lines),
				PlacedAt:    order.Tracking.UpdatedAt,
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure("status_change_failed", orderID, err)
		return err
	}

	s.logger.Info("status_changed", fmt.Sprintf("Order %d: %s -> %s", orderID, change.From, change.To), "", map[string]interface{}{
		"order_id":   orderID,
		"old_status": change.From,
		"new_status": change.To,
		"changed_by": changedBy,
	})

	s.notify(ctx, change, changedBy)
	if placed != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, *placed); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish placed order", "", map[string]interface{}{
				"order_id": orderID,
			}, err)
		}
	}
	return nil
}

// Cancel clears the order.
func (s *Service) Cancel(ctx context.Context, orderID int64) error {
	return s.cancel(ctx, orderID, s.service, false)
}

func (s *Service) cancel(ctx context.Context, orderID int64, changedBy string, strict bool) error {
	change, err := s.cart.Clear(ctx, orderID)
	if err != nil {
		return err
	}
	if change == nil {
		if strict {
			return fmt.Errorf("%w: order %d is already cancelled", domain.ErrInvalidTransition, orderID)
		}
		return nil
	}
	s.notify(ctx, *change, changedBy)
	return nil
}

// Checkout places the session's open order.
func (s *Service) Checkout(ctx context.Context, sessionID string) (*domain.OrderSummary, error) {
	order, err := s.store.FindOpenOrder(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: no pending order for session %s", domain.ErrOrderNotFound, sessionID)
		}
		return nil, err
	}

	if err := s.AdvanceStatus(ctx, order.ID, domain.StatusPlaced, s.service); err != nil {
		return nil, err
	}

	placed, err := s.store.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	summary := placed.Summary()
	return &summary, nil
}

// Track reports on the most recent order of a session, whatever its status.
func (s *Service) Track(ctx context.Context, sessionID string) (*domain.OrderSummary, error) {
	order, err := s.store.FindLatestOrder(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := order.Summary()
	return &summary, nil
}

func (s *Service) notify(ctx context.Context, change domain.StatusChange, changedBy string) {
	msg := interfaces.StatusUpdateMessage{
		OrderID:   change.OrderID,
		SessionID: change.SessionID,
		OldStatus: change.From,
		NewStatus: change.To,
		ChangedBy: changedBy,
		Timestamp: change.At,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	// A lost notification never undoes a committed status change.
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", "", map[string]interface{}{
			"order_id": change.OrderID,
		}, err)
	}
}

func (s *Service) logFailure(action string, orderID int64, err error) {
	details := map[string]interface{}{"order_id": orderID}
	if domain.IsRejection(err) {
		details["reason"] = err.Error()
		s.logger.Debug(action, "Status change rejected", "", details)
		return
	}
	s.logger.Error(action, "Status change rolled back", "", details, err)
}
