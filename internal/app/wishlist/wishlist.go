package wishlist

import (
	"sync"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

// Store is an ordered wishlist. Entries with the same item name may coexist.
type Store struct {
	mu      sync.Mutex
	entries []domain.WishlistEntry
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Add(item string, price decimal.Decimal, quantity int) domain.WishlistEntry {
	entry := domain.NewWishlistEntry(item, price, quantity)
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return entry
}

// Remove deletes the first entry named item.
func (s *Store) Remove(item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.Item == item {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotInWishlist
}

func (s *Store) View() []domain.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.WishlistEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}
