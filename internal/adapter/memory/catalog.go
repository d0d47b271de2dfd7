package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	"github.com/shopspring/decimal"
)

// Catalog is an in-process catalog keyed by normalized name.
type Catalog struct {
	mu     sync.RWMutex
	nextID int64
	items  map[string]*domain.FoodItem
}

var _ interfaces.CatalogRepository = (*Catalog)(nil)

func NewCatalog(items ...domain.FoodItem) *Catalog {
	c := &Catalog{items: make(map[string]*domain.FoodItem)}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Add stores item, assigning an id when it has none.
func (c *Catalog) Add(item domain.FoodItem) *domain.FoodItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item.ID == 0 {
		c.nextID++
		item.ID = c.nextID
	} else if item.ID > c.nextID {
		c.nextID = item.ID
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	item.Price = domain.NormalizePrice(item.Price)

	stored := item
	c.items[domain.NormalizeName(item.Name)] = &stored
	out := stored
	return &out
}

func (c *Catalog) SetPrice(name string, price decimal.Decimal) error {
	return c.update(name, func(item *domain.FoodItem) {
		item.Price = domain.NormalizePrice(price)
	})
}

func (c *Catalog) SetAvailable(name string, available bool) error {
	return c.update(name, func(item *domain.FoodItem) {
		item.Available = available
	})
}

func (c *Catalog) update(name string, fn func(item *domain.FoodItem)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[domain.NormalizeName(name)]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrItemNotFound, name)
	}
	fn(item)
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Catalog) FindByName(ctx context.Context, normalizedName string) (*domain.FoodItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[normalizedName]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	out := *item
	return &out, nil
}

func (c *Catalog) ListAll(ctx context.Context) ([]*domain.FoodItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]*domain.FoodItem, 0, len(c.items))
	for _, item := range c.items {
		out := *item
		items = append(items, &out)
	}
	return items, nil
}
