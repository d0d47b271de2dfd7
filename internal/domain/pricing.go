package domain

import "github.com/shopspring/decimal"

// PricePlaces is the scale prices are stored with.
const PricePlaces = 2

// NormalizePrice rounds a price to the stored scale.
func NormalizePrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(PricePlaces)
}

// LineTotal derives the total of a line from its unit price and quantity.
// It is the only place a line total is computed.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return NormalizePrice(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// SumTotals adds up line totals, zero for no lines.
func SumTotals(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}
