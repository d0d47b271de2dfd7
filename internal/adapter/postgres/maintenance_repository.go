package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
)

type maintenanceRepository struct {
	db DB
}

func NewMaintenanceRepository(db DB) interfaces.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// RepairConsistency restores one tracking row per order and drops pending
// orders that stayed empty for longer than staleAfter.
func (r *maintenanceRepository) RepairConsistency(ctx context.Context, staleAfter time.Duration) (domain.RepairReport, error) {
	var report domain.RepairReport

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO order_tracking (order_id, status, created_at, updated_at)
		SELECT o.order_id, 'pending', o.created_at, now()
		FROM orders o
		LEFT JOIN order_tracking t ON t.order_id = o.order_id
		WHERE t.order_id IS NULL
		ON CONFLICT (order_id) DO NOTHING
	`)
	if err != nil {
		return report, fmt.Errorf("failed to add missing tracking: %w", err)
	}
	report.MissingTrackingFixed = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `
		DELETE FROM order_tracking t
		WHERE NOT EXISTS (SELECT 1 FROM orders o WHERE o.order_id = t.order_id)
	`)
	if err != nil {
		return report, fmt.Errorf("failed to remove orphaned tracking: %w", err)
	}
	report.OrphanedTrackingRemoved = tag.RowsAffected()

	cutoff := time.Now().UTC().Add(-staleAfter)
	tag, err = tx.Exec(ctx, `
		DELETE FROM orders o
		USING order_tracking t
		WHERE t.order_id = o.order_id
		  AND t.status = 'pending'
		  AND o.created_at < $1
		  AND NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.order_id)
	`, cutoff)
	if err != nil {
		return report, fmt.Errorf("failed to remove empty orders: %w", err)
	}
	report.EmptyOrdersRemoved = tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return report, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return report, nil
}

func (r *maintenanceRepository) PurgeClosedOrders(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := r.db.Exec(ctx, `
		DELETE FROM orders o
		USING order_tracking t
		WHERE t.order_id = o.order_id
		  AND t.status IN ('cancelled', 'delivered')
		  AND o.created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge closed orders: %w", err)
	}
	return tag.RowsAffected(), nil
}
