package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"

	"github.com/jackc/pgx/v5"
)

type catalogRepository struct {
	db DB
}

func NewCatalogRepository(db DB) interfaces.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FindByName(ctx context.Context, normalizedName string) (*domain.FoodItem, error) {
	query := `
		SELECT item_id, name, price, is_available, created_at, updated_at
		FROM food_items
		WHERE LOWER(name) = $1
	`

	var item domain.FoodItem
	err := r.db.QueryRow(ctx, query, normalizedName).Scan(
		&item.ID, &item.Name, &item.Price, &item.Available, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to query food item: %w", err)
	}
	return &item, nil
}

func (r *catalogRepository) ListAll(ctx context.Context) ([]*domain.FoodItem, error) {
	query := `
		SELECT item_id, name, price, is_available, created_at, updated_at
		FROM food_items
		ORDER BY LOWER(name)
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	defer rows.Close()

	var items []*domain.FoodItem
	for rows.Next() {
		var item domain.FoodItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Available, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}

	return items, nil
}
