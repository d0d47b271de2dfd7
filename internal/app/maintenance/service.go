package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
)

type Service struct {
	repo       interfaces.MaintenanceRepository
	logger     logger.Logger
	staleAfter time.Duration
	purgeAfter time.Duration
}

func NewService(repo interfaces.MaintenanceRepository, logger logger.Logger, staleAfter, purgeAfter time.Duration) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		staleAfter: staleAfter,
		purgeAfter: purgeAfter,
	}
}

// Repair fixes tracking rows and drops stale empty carts.
func (s *Service) Repair(ctx context.Context) (domain.RepairReport, error) {
	report, err := s.repo.RepairConsistency(ctx, s.staleAfter)
	if err != nil {
		s.logger.Error("repair_failed", "Database repair rolled back", "", nil, err)
		return report, fmt.Errorf("failed to repair database: %w", err)
	}

	s.logger.Info("repair_completed", "Database repair completed", "", map[string]interface{}{
		"missing_tracking_fixed":    report.MissingTrackingFixed,
		"orphaned_tracking_removed": report.OrphanedTrackingRemoved,
		"empty_orders_removed":      report.EmptyOrdersRemoved,
	})
	return report, nil
}

// Purge removes cancelled and delivered orders older than the retention.
// A zero retention disables purging.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	if s.purgeAfter <= 0 {
		return 0, nil
	}

	n, err := s.repo.PurgeClosedOrders(ctx, s.purgeAfter)
	if err != nil {
		s.logger.Error("purge_failed", "Failed to purge closed orders", "", nil, err)
		return 0, fmt.Errorf("failed to purge closed orders: %w", err)
	}

	s.logger.Info("purge_completed", fmt.Sprintf("Purged %d closed orders", n), "", map[string]interface{}{
		"purged":     n,
		"older_than": s.purgeAfter.String(),
	})
	return n, nil
}
