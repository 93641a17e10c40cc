package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one cart entry. Identity is the product id; a cart holds at most
// one line per product.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Reference string          `json:"reference"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Cart is the shopper's current selection for one store session.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Total sums price*quantity across lines. Derived, never stored.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Count sums line quantities.
func (c Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Empty reports whether the cart holds no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) lineIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
