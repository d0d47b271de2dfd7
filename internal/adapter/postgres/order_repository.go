package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderStore {
	return &orderRepository{db: db}
}

const selectOrder = `
	SELECT o.order_id, o.session_id, o.created_at, o.updated_at, t.status, t.updated_at
	FROM orders o
	JOIN order_tracking t ON t.order_id = o.order_id
`

func scanOrder(row Row) (*domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	err := row.Scan(&order.ID, &order.SessionID, &order.CreatedAt, &order.UpdatedAt, &status, &order.Tracking.UpdatedAt)
	if err != nil {
		return nil, err
	}
	order.Tracking.OrderID = order.ID
	order.Tracking.Status = domain.Status(status)
	return &order, nil
}

func (r *orderRepository) FindOrCreateOpenOrder(ctx context.Context, sessionID string) (*domain.Order, bool, error) {
	order, err := domain.NewOrder(sessionID)
	if err != nil {
		return nil, false, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes find-or-create per session; released at commit.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, order.SessionID); err != nil {
		return nil, false, fmt.Errorf("failed to lock session: %w", err)
	}

	existing, err := latestOrder(ctx, tx, order.SessionID, true)
	switch {
	case err == nil:
		if err := tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return existing, false, nil
	case !errors.Is(err, domain.ErrOrderNotFound):
		return nil, false, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (session_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		RETURNING order_id
	`, order.SessionID, order.CreatedAt).Scan(&order.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert order: %w", err)
	}
	order.Tracking.OrderID = order.ID

	_, err = tx.Exec(ctx, `
		INSERT INTO order_tracking (order_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, order.ID, string(order.Tracking.Status), order.Tracking.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert order tracking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, true, nil
}

func (r *orderRepository) FindOpenOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	return latestOrder(ctx, r.db, sessionID, true)
}

func (r *orderRepository) FindLatestOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	order, err := latestOrder(ctx, r.db, sessionID, false)
	if err != nil {
		return nil, err
	}
	lines, err := loadLines(ctx, r.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) Row
}

func latestOrder(ctx context.Context, q querier, sessionID string, openOnly bool) (*domain.Order, error) {
	query := selectOrder + `
		WHERE o.session_id = $1 AND ($2 = FALSE OR t.status = 'pending')
		ORDER BY o.created_at DESC, o.order_id DESC
		LIMIT 1
	`
	order, err := scanOrder(q.QueryRow(ctx, query, sessionID, openOnly))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to query latest order: %w", err)
	}
	return order, nil
}

func loadLines(ctx context.Context, q querier, orderID int64) ([]domain.OrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.order_id, oi.item_id, f.name, oi.quantity, oi.unit_price, oi.created_at, oi.updated_at
		FROM order_items oi
		JOIN food_items f ON f.item_id = oi.item_id
		WHERE oi.order_id = $1
		ORDER BY LOWER(f.name), oi.item_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.ItemName, &l.Quantity, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return lines, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, selectOrder+` WHERE o.order_id = $1`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %d does not exist", domain.ErrInvalidOrder, orderID)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := loadLines(ctx, r.db, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

func (r *orderRepository) SumLineTotals(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_price), 0)
		FROM order_items
		WHERE order_id = $1
	`, orderID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum order items: %w", err)
	}
	return total, nil
}

// WithOrder runs fn inside a transaction holding the order row lock.
func (r *orderRepository) WithOrder(ctx context.Context, orderID int64, fn func(tx interfaces.OrderTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx, selectOrder+` WHERE o.order_id = $1 FOR UPDATE OF o`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: order %d does not exist", domain.ErrInvalidOrder, orderID)
		}
		return fmt.Errorf("failed to lock order: %w", err)
	}

	lines, err := loadLines(ctx, tx, orderID)
	if err != nil {
		return err
	}
	order.Lines = lines

	if err := fn(&orderTx{tx: tx, order: order}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// orderTx writes through to the open transaction and mirrors every change
// on the loaded order so fn sees its own writes.
type orderTx struct {
	tx    Tx
	order *domain.Order
}

func (t *orderTx) Order() *domain.Order {
	return t.order
}

func (t *orderTx) Line(ctx context.Context, itemID int64) (*domain.OrderLine, error) {
	for _, l := range t.order.Lines {
		if l.ItemID == itemID {
			line := l
			return &line, nil
		}
	}
	return nil, domain.ErrLineNotFound
}

func (t *orderTx) PutLine(ctx context.Context, line domain.OrderLine) error {
	if line.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if line.UnitPrice.IsNegative() {
		return domain.ErrInvalidPrice
	}
	line.OrderID = t.order.ID
	if line.UpdatedAt.IsZero() {
		line.UpdatedAt = time.Now().UTC()
	}
	if line.CreatedAt.IsZero() {
		line.CreatedAt = line.UpdatedAt
	}

	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_items (order_id, item_id, quantity, unit_price, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id, item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    unit_price = EXCLUDED.unit_price,
		    total_price = EXCLUDED.total_price,
		    updated_at = EXCLUDED.updated_at
	`, line.OrderID, line.ItemID, line.Quantity, line.UnitPrice, line.Total(), line.CreatedAt, line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert order item: %w", err)
	}

	for i, l := range t.order.Lines {
		if l.ItemID == line.ItemID {
			line.CreatedAt = l.CreatedAt
			t.order.Lines[i] = line
			return nil
		}
	}
	t.order.Lines = append(t.order.Lines, line)
	return nil
}

func (t *orderTx) DeleteLine(ctx context.Context, itemID int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1 AND item_id = $2`, t.order.ID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLineNotFound
	}

	for i, l := range t.order.Lines {
		if l.ItemID == itemID {
			t.order.Lines = append(t.order.Lines[:i], t.order.Lines[i+1:]...)
			break
		}
	}
	return nil
}

func (t *orderTx) ClearLines(ctx context.Context) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, t.order.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear order items: %w", err)
	}
	t.order.Lines = nil
	return tag.RowsAffected(), nil
}

func (t *orderTx) SaveTracking(ctx context.Context) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE order_tracking SET status = $2, updated_at = $3 WHERE order_id = $1
	`, t.order.ID, string(t.order.Tracking.Status), t.order.Tracking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order tracking: %w", err)
	}

	_, err = t.tx.Exec(ctx, `UPDATE orders SET updated_at = $2 WHERE order_id = $1`, t.order.ID, t.order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}
