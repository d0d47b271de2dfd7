package kitchen

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
)

// OrderReader is the slice of the order store the kitchen needs.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
}

type Service struct {
	orders     OrderReader
	lifecycle  interfaces.LifecycleService
	logger     logger.Logger
	workerName string
	prepTime   time.Duration
}

func NewService(
	orders OrderReader,
	lifecycle interfaces.LifecycleService,
	logger logger.Logger,
	workerName string,
	prepTime time.Duration,
) *Service {
	return &Service{
		orders:     orders,
		lifecycle:  lifecycle,
		logger:     logger,
		workerName: workerName,
		prepTime:   prepTime,
	}
}

// ProcessOrder cooks a placed order: placed -> preparing, wait, -> ready.
// Redelivered messages are safe. Orders past preparing are skipped and a
// preparing order resumes at the wait.
func (s *Service) ProcessOrder(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	order, err := s.orders.GetOrder(ctx, msg.OrderID)
	if err != nil {
		return err
	}

	switch order.Status() {
	case domain.StatusPlaced:
		if err := s.lifecycle.AdvanceStatus(ctx, order.ID, domain.StatusPreparing, s.workerName); err != nil {
			return err
		}
	case domain.StatusPreparing:
		s.logger.Debug("order_resumed", fmt.Sprintf("Resuming order %d", order.ID), "", map[string]interface{}{
			"order_id": order.ID,
		})
	default:
		s.logger.Debug("order_skipped", fmt.Sprintf("Order %d is %s, nothing to cook", order.ID, order.Status()), "", map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status(),
		})
		return nil
	}

	s.logger.Debug("order_processing_started", fmt.Sprintf("Preparing order %d", order.ID), "", map[string]interface{}{
		"order_id":  order.ID,
		"items":     len(msg.Items),
		"prep_time": s.prepTime.String(),
	})

	timer := time.NewTimer(s.prepTime)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if err := s.lifecycle.AdvanceStatus(ctx, order.ID, domain.StatusReady, s.workerName); err != nil {
		return err
	}

	s.logger.Info("order_completed", fmt.Sprintf("Order %d is ready", order.ID), "", map[string]interface{}{
		"order_id": order.ID,
		"worker":   s.workerName,
	})
	return nil
}
