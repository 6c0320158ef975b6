package api_http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fooddelivery/internal/app/orders"
	"fooddelivery/internal/app/payments"
	"fooddelivery/internal/app/restaurants"
	"fooddelivery/internal/app/tracking"
	"fooddelivery/internal/app/users"
	"fooddelivery/internal/app/wishlist"
	"fooddelivery/internal/domain"
)

type memUsers struct{ users map[string]domain.User }

func (r *memUsers) Load(context.Context) error { return nil }

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUsers) Create(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.Email]; ok {
		return domain.ErrEmailExists
	}
	r.users[u.Email] = *u
	return nil
}

type memOrders struct{ orders map[string]domain.Order }

func (r *memOrders) CreateTx(_ context.Context, _ domain.Querier, o *domain.Order) error {
	r.orders[o.ID] = *o
	return nil
}

func (r *memOrders) GetByIDTx(_ context.Context, _ domain.Querier, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *memOrders) GetByIDForUpdateTx(ctx context.Context, q domain.Querier, id string) (*domain.Order, error) {
	return r.GetByIDTx(ctx, q, id)
}

func (r *memOrders) ListByUserTx(_ context.Context, _ domain.Querier, email string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserEmail == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrders) UpdateStatusTx(_ context.Context, _ domain.Querier, o *domain.Order) error {
	r.orders[o.ID] = *o
	return nil
}

type staticRestaurants []domain.Restaurant

func (s staticRestaurants) ListAll(context.Context) ([]domain.Restaurant, error) {
	return s, nil
}

type stubSettlements struct {
	payments.SettlementService
	outcome *payments.Outcome
	err     error
	tenders []domain.Tender
}

func (s *stubSettlements) SettleOrder(_ context.Context, _ string, tenders []domain.Tender) (*payments.Outcome, error) {
	s.tenders = tenders
	return s.outcome, s.err
}

type stubTracking struct {
	tracking.TrackingService
	started map[string]domain.Location
}

func (s *stubTracking) StartTracking(_ context.Context, orderID string, origin domain.Location) error {
	if err := origin.Validate(); err != nil {
		return err
	}
	s.started[orderID] = origin
	return nil
}

func (s *stubTracking) Tracking(_ context.Context, orderID string) (*domain.TrackingSnapshot, error) {
	origin, ok := s.started[orderID]
	if !ok {
		return nil, domain.ErrTrackingNotFound
	}
	return &domain.TrackingSnapshot{OrderID: orderID, Origin: origin, Current: origin, Route: []domain.Location{}}, nil
}

type testServer struct {
	handler     http.Handler
	orders      *memOrders
	settlements *stubSettlements
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	menu := domain.DefaultMenu()
	userRepo := &memUsers{users: map[string]domain.User{}}
	orderRepo := &memOrders{orders: map[string]domain.Order{}}
	settlements := &stubSettlements{}
	catalogue := staticRestaurants{
		{ID: 1, Name: "Pizza Palace", CuisineType: "Italian", Rating: 4.5, DeliveryTime: 30},
		{ID: 2, Name: "Sushi Central", CuisineType: "Japanese", Rating: 4.8, DeliveryTime: 45},
	}

	services := Services{
		Users:       users.NewUserService(userRepo, "123 Main St", logger),
		Restaurants: restaurants.NewRestaurantService(catalogue, time.Minute, logger),
		Orders: orders.NewOrderService(nil, orderRepo, userRepo, menu, orders.Pricing{
			TaxRate:     decimal.RequireFromString("0.08"),
			DeliveryFee: decimal.NewFromInt(5),
		}, logger),
		Settlements: settlements,
		Wishlist:    wishlist.NewWishlistService(menu, logger),
		Tracking:    &stubTracking{started: map[string]domain.Location{}},
		Menu:        menu,
	}
	return &testServer{
		handler:     NewRouter(services, []string{"*"}, logger),
		orders:      orderRepo,
		settlements: settlements,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) registerAndOrder(t *testing.T) OrderResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/users/register", `{"email":"ann@example.com","password":"pw","confirm_password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/users/ann@example.com/cart", `{"item":"burger","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/users/ann@example.com/orders", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[OrderResponse](t, rec)
}

func TestHealth(t *testing.T) {
	rec := newTestServer(t).do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/users/register", `{"email":"ann@example.com","password":"pw","confirm_password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "123 Main St", decode[UserResponse](t, rec).DeliveryAddress)

	rec = s.do(t, http.MethodPost, "/users/register", `{"email":"ann@example.com","password":"pw","confirm_password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", decode[errorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/users/register", `{"email":"bob@example.com","password":"a","confirm_password":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Passwords do not match", decode[errorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/users/login", `{"email":"ann@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/login", `{"email":"ann@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchRestaurants(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/restaurants/search?cuisine=italian&max_delivery_time=40", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]domain.Restaurant](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "Pizza Palace", found[0].Name)

	rec = s.do(t, http.MethodGet, "/restaurants/search?max_rating=high", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, invalidSearchNumbers, decode[errorResponse](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/restaurants/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Restaurant](t, rec), 2)
}

func TestCartCheckoutAndSplit(t *testing.T) {
	s := newTestServer(t)
	order := s.registerAndOrder(t)

	assert.Equal(t, "PENDING_PAYMENT", order.Status)
	assert.Equal(t, "26.60", order.TotalAmount.StringFixed(2))

	rec := s.do(t, http.MethodGet, "/users/ann@example.com/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartResponse](t, rec).Items)

	rec = s.do(t, http.MethodGet, "/users/ann@example.com/checkout", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", decode[errorResponse](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/orders/"+order.ID+"/split?people=4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	split := decode[SplitResponse](t, rec)
	assert.Equal(t, "Each person needs to pay: $6.65", split.Message)

	rec = s.do(t, http.MethodGet, "/orders/"+order.ID+"/split?people=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Number of people must be greater than zero.", decode[errorResponse](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/orders/"+order.ID+"/split?people=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/orders/missing/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddToCart_UnknownItem(t *testing.T) {
	rec := newTestServer(t).do(t, http.MethodPost, "/users/ann@example.com/cart", `{"item":"Sushi","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlist(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/users/ann@example.com/wishlist", `{"item":"Salad","quantity":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	added := decode[WishlistEntryResponse](t, rec)
	assert.Equal(t, "Salad has been added to the wishlist for future orders.", added.Message)
	assert.Equal(t, "30", added.Entry.Subtotal.String())

	rec = s.do(t, http.MethodDelete, "/users/ann@example.com/wishlist/Salad", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/ann@example.com/wishlist/Salad", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/ann@example.com/wishlist", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSettleOrder(t *testing.T) {
	s := newTestServer(t)
	eta := time.Now().Add(40 * time.Minute)
	s.settlements.outcome = &payments.Outcome{
		Settlement: &domain.Settlement{ID: "set-1", Status: domain.SettlementStatusSuccess, Message: payments.MessageSettled},
		Order:      &domain.Order{ID: "order-1", Status: domain.OrderStatusPaid, EstimatedDelivery: &eta},
		Payments: []domain.Payment{{
			ID: "pay-1", Sequence: 1, Method: domain.PaymentMethodPayPal, Amount: decimal.NewFromInt(10),
			Status: domain.PaymentStatusAuthorized, TransactionID: "paypal123",
		}},
	}

	rec := s.do(t, http.MethodPost, "/orders/order-1/payments", `{"tenders":[{"method":"paypal","amount":"10"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SettlementResponse](t, rec)
	assert.Equal(t, "PAID", resp.OrderStatus)
	assert.NotEmpty(t, resp.EstimatedDelivery)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "paypal123", resp.Payments[0].TransactionID)
	require.Len(t, s.settlements.tenders, 1)
	assert.Equal(t, domain.PaymentMethodPayPal, s.settlements.tenders[0].Method)
}

func TestSettleOrder_FailureIsPaymentRequired(t *testing.T) {
	s := newTestServer(t)
	s.settlements.outcome = &payments.Outcome{
		Settlement: &domain.Settlement{
			ID: "set-1", Status: domain.SettlementStatusFailed,
			FailedMethod: domain.PaymentMethodGiftCard, Remaining: decimal.NewFromInt(60),
		},
		Order: &domain.Order{ID: "order-1", Status: domain.OrderStatusPendingPayment},
	}

	rec := s.do(t, http.MethodPost, "/orders/order-1/payments", `{"tenders":[{"method":"gift_card","amount":"60"}]}`)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	resp := decode[SettlementResponse](t, rec)
	assert.Equal(t, "gift_card", resp.FailedMethod)
	assert.Equal(t, "PENDING_PAYMENT", resp.OrderStatus)
}

func TestSettleOrder_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid details", domain.ErrInvalidCreditCard, http.StatusBadRequest},
		{"unstorable amount", domain.ErrInvalidTenderAmount, http.StatusBadRequest},
		{"missing order", domain.ErrOrderNotFound, http.StatusNotFound},
		{"already paid", domain.ErrOrderAlreadyPaid, http.StatusConflict},
		{"infrastructure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.settlements.err = tt.err

			rec := s.do(t, http.MethodPost, "/orders/order-1/payments", `{"tenders":[]}`)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestTracking(t *testing.T) {
	s := newTestServer(t)
	order := s.registerAndOrder(t)

	rec := s.do(t, http.MethodGet, "/orders/"+order.ID+"/tracking", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/orders/missing/tracking", `{"latitude":1,"longitude":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/orders/"+order.ID+"/tracking", `{"latitude":100,"longitude":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/orders/"+order.ID+"/tracking", `{"latitude":40.7,"longitude":-73.9}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	snap := decode[domain.TrackingSnapshot](t, rec)
	assert.Equal(t, order.ID, snap.OrderID)
	assert.Equal(t, 40.7, snap.Current.Latitude)
}
