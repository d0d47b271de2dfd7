package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.MessagePublisher {
	return &publisher{conn: conn}
}

func (p *publisher) PublishOrderPlaced(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := declareOrders(ch); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, OrdersExchange, OrderPlacedKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    strconv.FormatInt(msg.OrderID, 10),
		Timestamp:    msg.PlacedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *publisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := declareNotifications(ch); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, NotificationsExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   msg.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

type nopPublisher struct{}

// NopPublisher drops every message. Used when messaging is disabled.
func NopPublisher() interfaces.MessagePublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderPlaced(context.Context, interfaces.OrderPlacedMessage) error {
	return nil
}

func (nopPublisher) PublishStatusUpdate(context.Context, interfaces.StatusUpdateMessage) error {
	return nil
}
