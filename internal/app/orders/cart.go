package orders

import (
	"sync"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

// Cart holds the lines a user is about to order. Adding an item already in
// the cart increases its quantity.
type Cart struct {
	mu    sync.Mutex
	items []domain.CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) AddItem(name string, price decimal.Decimal, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, domain.ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Name == name {
			c.items[i].Quantity += quantity
			c.items[i].Subtotal = c.items[i].Price.Mul(decimal.NewFromInt(int64(c.items[i].Quantity)))
			return c.items[i], nil
		}
	}
	item := domain.CartItem{
		Name:     name,
		Price:    price,
		Quantity: quantity,
		Subtotal: price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	c.items = append(c.items, item)
	return item, nil
}

func (c *Cart) RemoveItem(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Name == name {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrItemNotInCart
}

func (c *Cart) View() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Snapshot returns the lines and their subtotal as of one instant.
func (c *Cart) Snapshot() ([]domain.CartItem, decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal)
	}
	return out, total
}

// Drain empties the cart and returns what it held.
func (c *Cart) Drain() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	return out
}

// Restore puts drained lines back ahead of anything added since, merging
// lines for the same item.
func (c *Cart) Restore(items []domain.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	merged := append([]domain.CartItem(nil), items...)
	for _, added := range c.items {
		found := false
		for i := range merged {
			if merged[i].Name == added.Name {
				merged[i].Quantity += added.Quantity
				merged[i].Subtotal = merged[i].Price.Mul(decimal.NewFromInt(int64(merged[i].Quantity)))
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, added)
		}
	}
	c.items = merged
}
