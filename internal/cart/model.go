// Package cart implements the local-first shopping cart: a persisted blob
// mutated locally with derived totals, mirrored to the remote API on a
// best-effort basis when a session is present.
package cart

import "math"

// Item is one product line in the cart. At most one Item exists per
// ProductID; adding the same product again increments Quantity.
type Item struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
}

// Cart is the client-owned selection with derived Count and Total. Count
// and Total are recomputed after every mutation and never set directly.
type Cart struct {
	Items []Item  `json:"items"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Empty returns the canonical empty cart.
func Empty() Cart {
	return Cart{Items: []Item{}}
}

// recompute refreshes the derived fields: Count is the number of distinct
// lines, Total is Σ price×quantity rounded to cents.
func (c *Cart) recompute() {
	c.Count = len(c.Items)

	total := 0.0
	for _, item := range c.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		total += item.Price * float64(qty)
	}
	c.Total = math.Round(total*100) / 100
}

// Clone returns a deep copy so callers cannot alias the stored slice.
func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]Item(nil), c.Items...)
	if out.Items == nil {
		out.Items = []Item{}
	}
	return out
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
