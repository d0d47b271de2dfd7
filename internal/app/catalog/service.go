package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo   interfaces.CatalogRepository
	logger logger.Logger
}

func NewService(repo interfaces.CatalogRepository, logger logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Resolve finds an available item by its human entered name.
func (s *Service) Resolve(ctx context.Context, name string) (*domain.FoodItem, error) {
	item, err := s.ResolveAny(ctx, name)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: %q is not available", domain.ErrItemNotFound, item.Name)
	}
	return item, nil
}

// ResolveAny is Resolve without the availability check.
func (s *Service) ResolveAny(ctx context.Context, name string) (*domain.FoodItem, error) {
	normalized := domain.NormalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty item name", domain.ErrItemNotFound)
	}

	item, err := s.repo.FindByName(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			s.logger.Debug("item_not_found", fmt.Sprintf("No catalog item named %q", normalized), "", nil)
			return nil, fmt.Errorf("%w: %q", domain.ErrItemNotFound, normalized)
		}
		return nil, fmt.Errorf("failed to look up item: %w", err)
	}
	return item, nil
}

// PriceOf returns the catalog price, or zero when the item is missing or
// unavailable.
func (s *Service) PriceOf(ctx context.Context, name string) (decimal.Decimal, error) {
	item, err := s.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return item.Price, nil
}

// Menu lists available items by name.
func (s *Service) Menu(ctx context.Context) ([]*domain.FoodItem, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	menu := make([]*domain.FoodItem, 0, len(items))
	for _, item := range items {
		if item.Available {
			menu = append(menu, item)
		}
	}
	sort.Slice(menu, func(i, j int) bool {
		return domain.NormalizeName(menu[i].Name) < domain.NormalizeName(menu[j].Name)
	})
	return menu, nil
}
