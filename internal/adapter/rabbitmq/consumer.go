package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn     Connection
	prefetch int
	logger   logger.Logger
	delay    time.Duration
}

func NewConsumer(conn Connection, prefetch int, logger logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, prefetch: prefetch, logger: logger, delay: reconnectDelay}
}

func (c *consumer) ConsumeOrders(ctx context.Context, handler interfaces.OrderMessageHandler) error {
	return c.loop(ctx, "orders", func(ctx context.Context) error {
		return c.consumeOrders(ctx, handler)
	})
}

func (c *consumer) ConsumeNotifications(ctx context.Context, handler interfaces.NotificationHandler) error {
	return c.loop(ctx, "notifications", func(ctx context.Context) error {
		return c.consumeNotifications(ctx, handler)
	})
}

// loop keeps a consumer alive across broker disconnects until ctx ends.
func (c *consumer) loop(ctx context.Context, name string, consume func(context.Context) error) error {
	for {
		err := consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("rabbitmq_consumer_disconnected", fmt.Sprintf("%s consumer disconnected, reconnecting in %s", name, c.delay), "", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
		}

		if c.conn.IsClosed() {
			if err := c.conn.Reconnect(); err != nil {
				c.logger.Error("rabbitmq_reconnect_failed", "Failed to reconnect to RabbitMQ", "", nil, err)
			}
		}
	}
}

func (c *consumer) consumeOrders(ctx context.Context, handler interfaces.OrderMessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := setupKitchen(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(KitchenQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			c.settle(msg, handler(ctx, msg.Body))
		}
	}
}

// settle acks successes, requeues retryable failures and dead-letters the
// rest.
func (c *consumer) settle(msg amqp.Delivery, err error) {
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, interfaces.ErrRequeue), errors.Is(err, context.Canceled):
		msg.Nack(false, true)
	default:
		c.logger.Debug("message_dead_lettered", "Message sent to dead letter queue", "", map[string]interface{}{
			"reason": err.Error(),
		})
		msg.Nack(false, false)
	}
}

func (c *consumer) consumeNotifications(ctx context.Context, handler interfaces.NotificationHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := declareNotifications(ch); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Exclusive queue per subscriber so every subscriber sees every update.
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", NotificationsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			// Notifications are best effort.
			_ = handler(ctx, msg.Body)
		}
	}
}

func setupKitchen(ch Channel) error {
	if err := declareOrders(ch); err != nil {
		return fmt.Errorf("failed to declare orders exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(DeadLetterQueue, "#", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": DeadLetterExchange,
	}
	q, err := ch.QueueDeclare(KitchenQueue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare kitchen queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, kitchenBinding, OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind kitchen queue: %w", err)
	}

	return nil
}
