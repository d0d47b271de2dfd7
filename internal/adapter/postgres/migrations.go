package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS food_items (
		item_id      BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL,
		price        NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS food_items_name_key ON food_items (LOWER(name))`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id   BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_session_created_idx ON orders (session_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS order_tracking (
		order_id   BIGINT PRIMARY KEY REFERENCES orders (order_id) ON DELETE CASCADE,
		status     TEXT NOT NULL CHECK (status IN ('pending', 'placed', 'preparing', 'ready', 'delivered', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id    BIGINT NOT NULL REFERENCES orders (order_id) ON DELETE CASCADE,
		item_id     BIGINT NOT NULL REFERENCES food_items (item_id) ON DELETE RESTRICT,
		quantity    INTEGER NOT NULL CHECK (quantity > 0),
		unit_price  NUMERIC(10,2) NOT NULL CHECK (unit_price >= 0),
		total_price NUMERIC(12,2) NOT NULL CHECK (total_price = unit_price * quantity),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (order_id, item_id)
	)`,
}

// Migrate creates the schema and seeds the default menu. Both steps are
// idempotent.
func Migrate(ctx context.Context, db DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	for _, item := range domain.DefaultMenu() {
		_, err := tx.Exec(ctx, `
			INSERT INTO food_items (name, price, is_available)
			VALUES ($1, $2, $3)
			ON CONFLICT ((LOWER(name))) DO NOTHING
		`, item.Name, item.Price, item.Available)
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", item.Name, err)
		}
	}

	return tx.Commit(ctx)
}
