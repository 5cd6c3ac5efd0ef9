package domain

import "github.com/shopspring/decimal"

// CartLine is a copy of a book taken when it was added to the cart, plus a
// quantity. Later catalog edits do not reach lines already in a cart.
type CartLine struct {
	Book
	Quantity int `json:"quantity" validate:"gte=1"`
}

// NewCartLine snapshots book with quantity 1.
func NewCartLine(book Book) CartLine {
	return CartLine{Book: book, Quantity: 1}
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal sums the subtotals of lines.
func LinesTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CloneLines copies a line slice. Lines are plain values so a shallow copy suffices.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
