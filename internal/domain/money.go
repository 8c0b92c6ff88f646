package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount parses a text-stored number. Blank or malformed text reads as zero.
func Amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Subtotal sums the stored line totals. Unit price × quantity is not recomputed.
func Subtotal(lines []CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(Amount(l.TotalPrice))
	}
	return sum
}

// DiscountPercent is the whole-number markdown from Price to FinalPrice.
func DiscountPercent(p Product) int64 {
	price := Amount(p.Price)
	if !price.IsPositive() {
		return 0
	}
	final := Amount(p.FinalPrice)
	return price.Sub(final).Mul(decimal.NewFromInt(100)).Div(price).IntPart()
}

// NewCartLine builds the line for qty units of p at its final price.
func NewCartLine(p Product, size, color string, qty int) CartLine {
	if qty < 1 {
		qty = 1
	}
	total := Amount(p.FinalPrice).Mul(decimal.NewFromInt(int64(qty)))
	return CartLine{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.Image,
		Category:     p.Category,
		Size:         size,
		Color:        color,
		Quantity:     strconv.Itoa(qty),
		TotalPrice:   total.String(),
	}
}
