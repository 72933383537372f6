// Package cartcache holds the client-side mirror of an in-progress cart:
// the same line-item shape as the server cart plus denormalized product
// name/price/image for rendering without a round trip. The mirror and the
// server cart stay independent until checkout, when the mirror's items are
// posted to the server and reconciled there exactly once.
package cartcache

import (
	"encoding/json"
	"io"
	"sync"
)

// Item is one mirrored line with the product fields a cart panel renders.
type Item struct {
	ProductID  string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
	ImageURL   string `json:"image,omitempty"`
}

// Cache is an explicit state object for the local cart. Safe for concurrent
// use.
type Cache struct {
	mu    sync.Mutex
	items []Item
}

func New() *Cache {
	return &Cache{}
}

// AddItem merges an item into the mirror: an existing product accumulates
// quantity, a new product is appended. Non-positive quantities are ignored.
func (c *Cache) AddItem(item Item) {
	if item.Quantity < 1 || item.ProductID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// RemoveItem drops the product from the mirror. Removing an absent product
// is a no-op.
func (c *Cache) RemoveItem(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = deleteItem(c.items, productID)
}

// SetQuantity replaces the quantity for a product; a value <= 0 removes the
// item entirely.
func (c *Cache) SetQuantity(productID string, quantity int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.items = deleteItem(c.items, productID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Cache) TotalItems() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

func (c *Cache) TotalPriceCents() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.PriceCents * it.Quantity
	}
	return total
}

// Items returns a copy of the mirrored lines, in insertion order. The copy
// is what gets posted to the checkout endpoint for server-side
// reconciliation.
func (c *Cache) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Save writes the mirror as JSON so it survives process restarts.
func (c *Cache) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(c.Items())
}

// Load replaces the mirror with previously saved state.
func (c *Cache) Load(r io.Reader) error {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	return nil
}

func deleteItem(items []Item, productID string) []Item {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}
