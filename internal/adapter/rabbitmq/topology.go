package rabbitmq

const (
	OrdersExchange        = "orders_topic"
	NotificationsExchange = "notifications_fanout"
	DeadLetterExchange    = "orders_dlq"

	KitchenQueue    = "kitchen_queue"
	DeadLetterQueue = "kitchen_queue_dlq"

	// OrderPlacedKey routes checked-out orders to the kitchen.
	OrderPlacedKey = "kitchen.placed"
	kitchenBinding = "kitchen.#"
)

func declareOrders(ch Channel) error {
	return ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil)
}

func declareNotifications(ch Channel) error {
	return ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil)
}
