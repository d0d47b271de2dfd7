package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
)

// CatalogRepository serves item lookups from the cache, falling back to
// the wrapped repository. Only hits are cached, so a newly added item is
// visible at once. A price change shows up after at most ttl. Lines
// already in a cart keep their own unit price either way.
type CatalogRepository struct {
	next   interfaces.CatalogRepository
	cache  Cache
	ttl    time.Duration
	logger logger.Logger
}

var _ interfaces.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(next interfaces.CatalogRepository, cache Cache, ttl time.Duration, logger logger.Logger) *CatalogRepository {
	return &CatalogRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CatalogRepository) FindByName(ctx context.Context, normalizedName string) (*domain.FoodItem, error) {
	key := c.cache.GenerateKey("food_item", normalizedName)

	if raw, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Error("cache_get_failed", "Failed to read catalog cache", "", map[string]interface{}{"key": key}, err)
	} else if raw != "" {
		var item domain.FoodItem
		if err := json.Unmarshal([]byte(raw), &item); err == nil {
			return &item, nil
		}
	}

	item, err := c.next.FindByName(ctx, normalizedName)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(item)
	if err == nil {
		err = c.cache.Set(ctx, key, body, c.ttl)
	}
	if err != nil {
		c.logger.Error("cache_set_failed", "Failed to write catalog cache", "", map[string]interface{}{"key": key}, err)
	}
	return item, nil
}

// ListAll is not cached; the menu is read rarely.
func (c *CatalogRepository) ListAll(ctx context.Context) ([]*domain.FoodItem, error) {
	return c.next.ListAll(ctx)
}
