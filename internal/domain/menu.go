package domain

import "github.com/shopspring/decimal"

// DefaultMenu is the catalog seeded into an empty store.
func DefaultMenu() []FoodItem {
	item := func(name, price string) FoodItem {
		return FoodItem{Name: name, Price: decimal.RequireFromString(price), Available: true}
	}
	return []FoodItem{
		item("Jollof Rice", "1500.00"),
		item("White Rice", "1000.00"),
		item("Porridge Beans", "800.00"),
		item("Fried Egg", "300.00"),
		item("Plantain", "500.00"),
		item("Fish", "1200.00"),
		item("Beef", "1000.00"),
		item("Chicken", "1800.00"),
	}
}
