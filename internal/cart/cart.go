// Package cart keeps per-session shopping carts for the web tier.
package cart

import (
	"fmt"
	"strings"

	"boba-kart/internal/model"

	"github.com/shopspring/decimal"
)

// LineItem is one configured drink in a cart.
type LineItem struct {
	Key            string          `json:"key"`
	DrinkID        string          `json:"drinkId"`
	DrinkName      string          `json:"drinkName"`
	Size           model.Size      `json:"size"`
	SugarPct       int             `json:"sugarPct"`
	IcePct         int             `json:"icePct"`
	ToppingIDs     []string        `json:"toppingIds"`
	ToppingSummary string          `json:"toppingSummary"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
}

// LineKey is the merge identity of a line: drink, size, sugar, ice and toppings.
func LineKey(drinkID string, size model.Size, sugarPct, icePct int, toppingSummary string) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s", drinkID, size, sugarPct, icePct, strings.ToLower(toppingSummary))
}

// LineTotal is the unit price times quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of line items. It is not safe for concurrent use;
// the session store serialises access.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Add merges item into the cart. An existing line with the same key gains
// the quantity and takes the new unit price.
func (c *Cart) Add(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.Key = LineKey(item.DrinkID, item.Size, item.SugarPct, item.IcePct, item.ToppingSummary)

	for i := range c.Items {
		if c.Items[i].Key == item.Key {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].UnitPrice = item.UnitPrice
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Find returns the line with key.
func (c *Cart) Find(key string) (LineItem, bool) {
	for _, item := range c.Items {
		if item.Key == key {
			return item, true
		}
	}
	return LineItem{}, false
}

// UpdateQuantity sets the quantity of a line, clamped to at least one, and
// refreshes its unit price. It reports whether the line exists.
func (c *Cart) UpdateQuantity(key string, quantity int, unitPrice decimal.Decimal) bool {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].Key == key {
			c.Items[i].Quantity = quantity
			c.Items[i].UnitPrice = unitPrice
			return true
		}
	}
	return false
}

// Remove deletes the line with key and reports whether it existed.
func (c *Cart) Remove(key string) bool {
	for i := range c.Items {
		if c.Items[i].Key == key {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Count is the sum of line quantities.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Subtotal is the sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Summary is the client view of a cart.
type Summary struct {
	Items    []LineItem      `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Summarise copies the cart into its client view.
func (c *Cart) Summarise() Summary {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Summary{Items: items, Count: c.Count(), Subtotal: c.Subtotal()}
}
