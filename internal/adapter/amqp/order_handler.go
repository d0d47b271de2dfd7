package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
)

type OrderHandler struct {
	service interfaces.KitchenService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.KitchenService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// HandleOrder feeds a placed order to the kitchen. Malformed messages and
// business rejections are dead-lettered, anything else is retried.
func (h *OrderHandler) HandleOrder(ctx context.Context, body []byte) error {
	var msg interfaces.OrderPlacedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order message", "", nil, err)
		return err
	}
	if msg.OrderID <= 0 {
		return fmt.Errorf("%w: message without order id", domain.ErrInvalidOrder)
	}

	err := h.service.ProcessOrder(ctx, msg)
	if err == nil || domain.IsRejection(err) || ctx.Err() != nil {
		return err
	}
	return fmt.Errorf("%w: %w", interfaces.ErrRequeue, err)
}
