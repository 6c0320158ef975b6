package wishlist

import (
	"sync"

	"go.uber.org/zap"

	"fooddelivery/internal/domain"
)

type WishlistService interface {
	Add(userEmail, item string, quantity int) (domain.WishlistEntry, error)
	Remove(userEmail, item string) error
	View(userEmail string) []domain.WishlistEntry
	Clear(userEmail string)
}

// wishlistService keeps one Store per user, priced from the menu.
type wishlistService struct {
	menu   *domain.Menu
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewWishlistService(menu *domain.Menu, l *zap.Logger) WishlistService {
	return &wishlistService{menu: menu, logger: l, stores: make(map[string]*Store)}
}

func (s *wishlistService) storeFor(userEmail string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[userEmail]
	if !ok {
		st = NewStore()
		s.stores[userEmail] = st
	}
	return st
}

func (s *wishlistService) Add(userEmail, item string, quantity int) (domain.WishlistEntry, error) {
	if quantity < 1 {
		return domain.WishlistEntry{}, domain.ErrInvalidQuantity
	}
	menuItem, err := s.menu.Lookup(item)
	if err != nil {
		return domain.WishlistEntry{}, err
	}
	entry := s.storeFor(userEmail).Add(menuItem.Name, menuItem.Price, quantity)
	s.logger.Debug("Wishlist entry added", zap.String("user", userEmail), zap.String("item", entry.Item), zap.Int("quantity", quantity))
	return entry, nil
}

func (s *wishlistService) Remove(userEmail, item string) error {
	if menuItem, err := s.menu.Lookup(item); err == nil {
		item = menuItem.Name
	}
	return s.storeFor(userEmail).Remove(item)
}

func (s *wishlistService) View(userEmail string) []domain.WishlistEntry {
	return s.storeFor(userEmail).View()
}

func (s *wishlistService) Clear(userEmail string) {
	s.storeFor(userEmail).Clear()
}
