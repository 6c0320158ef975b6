package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotOnMenu   = errors.New("item is not on the menu")
	ErrItemNotInCart   = errors.New("item is not in the cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotInWishlist   = errors.New("item is not in the wishlist")
)

type CartItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// WishlistEntry is an item saved for a future order. Subtotal is fixed at
// insertion time as price * quantity.
type WishlistEntry struct {
	Item     string          `json:"item"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func NewWishlistEntry(item string, price decimal.Decimal, quantity int) WishlistEntry {
	return WishlistEntry{
		Item:     item,
		Price:    price,
		Quantity: quantity,
		Subtotal: price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

type MenuItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Menu is the fixed list of dishes that can be ordered.
type Menu struct {
	items []MenuItem
}

func NewMenu(items ...MenuItem) *Menu {
	return &Menu{items: items}
}

// DefaultMenu returns the dishes served by every restaurant, all at the
// same unit price.
func DefaultMenu() *Menu {
	price := decimal.NewFromInt(10)
	return NewMenu(
		MenuItem{Name: "Burger", Price: price},
		MenuItem{Name: "Pizza", Price: price},
		MenuItem{Name: "Salad", Price: price},
	)
}

func (m *Menu) Items() []MenuItem {
	out := make([]MenuItem, len(m.items))
	copy(out, m.items)
	return out
}

// Lookup finds a dish by name, ignoring case.
func (m *Menu) Lookup(name string) (MenuItem, error) {
	for _, item := range m.items {
		if strings.EqualFold(item.Name, strings.TrimSpace(name)) {
			return item, nil
		}
	}
	return MenuItem{}, ErrItemNotOnMenu
}
