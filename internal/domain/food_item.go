package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FoodItem is a catalog entry.
type FoodItem struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NormalizeName lowercases a human entered item name, trims it and
// collapses inner runs of whitespace.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
