package orders

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/orders_repo"
	"fooddelivery/internal/repository/users_repo"
	"fooddelivery/internal/util"
)

type OrderService interface {
	AddToCart(userEmail, item string, quantity int) (domain.CartItem, error)
	RemoveFromCart(userEmail, item string) error
	ViewCart(userEmail string) ([]domain.CartItem, decimal.Decimal)
	Checkout(ctx context.Context, userEmail string) (*domain.Quote, error)
	PlaceOrder(ctx context.Context, userEmail string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userEmail string) ([]domain.Order, error)
	SplitOrder(ctx context.Context, orderID string, people int) (decimal.Decimal, error)
}

type orderService struct {
	db        *sql.DB
	orderRepo orders_repo.OrderRepository
	userRepo  users_repo.UserRepository
	menu      *domain.Menu
	pricing   Pricing
	logger    *zap.Logger

	mu    sync.Mutex
	carts map[string]*Cart
}

func NewOrderService(
	db *sql.DB,
	orderRepo orders_repo.OrderRepository,
	userRepo users_repo.UserRepository,
	menu *domain.Menu,
	pricing Pricing,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		db:        db,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		menu:      menu,
		pricing:   pricing,
		logger:    logger,
		carts:     make(map[string]*Cart),
	}
}

func (s *orderService) cartFor(userEmail string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userEmail]
	if !ok {
		c = NewCart()
		s.carts[userEmail] = c
	}
	return c
}

func (s *orderService) AddToCart(userEmail, item string, quantity int) (domain.CartItem, error) {
	menuItem, err := s.menu.Lookup(item)
	if err != nil {
		return domain.CartItem{}, err
	}
	line, err := s.cartFor(userEmail).AddItem(menuItem.Name, menuItem.Price, quantity)
	if err != nil {
		return domain.CartItem{}, err
	}
	s.logger.Debug("Item added to cart", zap.String("user", userEmail), zap.String("item", line.Name), zap.Int("quantity", line.Quantity))
	return line, nil
}

func (s *orderService) RemoveFromCart(userEmail, item string) error {
	if menuItem, err := s.menu.Lookup(item); err == nil {
		item = menuItem.Name
	}
	return s.cartFor(userEmail).RemoveItem(item)
}

func (s *orderService) ViewCart(userEmail string) ([]domain.CartItem, decimal.Decimal) {
	return s.cartFor(userEmail).Snapshot()
}

func (s *orderService) Checkout(ctx context.Context, userEmail string) (*domain.Quote, error) {
	user, err := s.userRepo.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	return BuildQuote(s.cartFor(userEmail).View(), user.DeliveryAddress, s.pricing)
}

// PlaceOrder takes the cart contents in one step so lines added while the
// order is being written stay in the cart. On failure the taken lines go back.
func (s *orderService) PlaceOrder(ctx context.Context, userEmail string) (*domain.Order, error) {
	user, err := s.userRepo.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	cart := s.cartFor(userEmail)
	items := cart.Drain()
	order, err := s.createOrder(ctx, userEmail, user.DeliveryAddress, items)
	if err != nil {
		cart.Restore(items)
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user", userEmail),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func (s *orderService) createOrder(ctx context.Context, userEmail, address string, items []domain.CartItem) (*domain.Order, error) {
	quote, err := BuildQuote(items, address, s.pricing)
	if err != nil {
		return nil, err
	}
	order, err := domain.NewOrder(util.GenerateUUID(), userEmail, quote)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.CreateTx(ctx, s.db, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.GetByIDTx(ctx, s.db, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, userEmail string) ([]domain.Order, error) {
	return s.orderRepo.ListByUserTx(ctx, s.db, userEmail)
}

func (s *orderService) SplitOrder(ctx context.Context, orderID string, people int) (decimal.Decimal, error) {
	if people <= 0 {
		return decimal.Zero, domain.ErrInvalidSplit
	}
	order, err := s.orderRepo.GetByIDTx(ctx, s.db, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	return SplitEvenly(order.TotalAmount, people)
}
