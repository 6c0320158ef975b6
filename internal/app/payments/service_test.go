package payments

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/domain/event"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) CreateTx(_ context.Context, _ domain.Querier, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByIDTx(_ context.Context, _ domain.Querier, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetByIDForUpdateTx(ctx context.Context, q domain.Querier, id string) (*domain.Order, error) {
	return r.GetByIDTx(ctx, q, id)
}

func (r *fakeOrderRepo) ListByUserTx(_ context.Context, _ domain.Querier, userEmail string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserEmail == userEmail {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatusTx(_ context.Context, _ domain.Querier, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

type fakePaymentRepo struct {
	settlements []domain.Settlement
	payments    []domain.Payment
	failOn      error
}

func (r *fakePaymentRepo) CreateSettlementTx(_ context.Context, _ domain.Querier, s *domain.Settlement) error {
	if r.failOn != nil {
		return r.failOn
	}
	r.settlements = append(r.settlements, *s)
	return nil
}

func (r *fakePaymentRepo) CreatePaymentTx(_ context.Context, _ domain.Querier, p *domain.Payment) error {
	r.payments = append(r.payments, *p)
	return nil
}

func (r *fakePaymentRepo) ListByOrderIDTx(_ context.Context, _ domain.Querier, orderID string) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	messages []domain.OutboxMessage
}

func (r *fakeOutboxRepo) CreateMessageTx(_ context.Context, _ domain.Querier, msg *domain.OutboxMessage) error {
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessagesTx(context.Context, domain.Querier, int) ([]domain.OutboxMessage, error) {
	return r.messages, nil
}

func (r *fakeOutboxRepo) MarkMessagesAsSentTx(context.Context, domain.Querier, []string) error {
	return nil
}

type serviceFixture struct {
	svc      SettlementService
	mock     sqlmock.Sqlmock
	orders   *fakeOrderRepo
	payments *fakePaymentRepo
	outbox   *fakeOutboxRepo
}

func newServiceFixture(t *testing.T, orders ...domain.Order) *serviceFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &serviceFixture{
		mock:     mock,
		orders:   newFakeOrderRepo(orders...),
		payments: &fakePaymentRepo{},
		outbox:   &fakeOutboxRepo{},
	}
	f.svc = NewSettlementService(db, f.orders, f.payments, f.outbox, NewMockGateway(),
		ServiceConfig{SettlementTopic: "payment_settlements", DeliveryETA: 40 * time.Minute},
		zap.NewNop())
	return f
}

func pendingOrder(id, total string) domain.Order {
	return domain.Order{
		ID:          id,
		UserEmail:   "user@example.com",
		TotalAmount: dec(total),
		Status:      domain.OrderStatusPendingPayment,
	}
}

func TestSettleOrder_SuccessMarksOrderPaid(t *testing.T) {
	f := newServiceFixture(t, pendingOrder("order-1", "70"))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	before := time.Now()
	outcome, err := f.svc.SettleOrder(context.Background(), "order-1", []domain.Tender{
		creditCard("1234567812345678", "30"),
		giftCard("9876543210987654", "40"),
	})
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, MessageSettled, outcome.Settlement.Message)
	assert.Equal(t, domain.OrderStatusPaid, outcome.Order.Status)
	require.NotNil(t, outcome.Order.EstimatedDelivery)
	assert.True(t, outcome.Order.EstimatedDelivery.After(before.Add(39*time.Minute)))

	stored, _ := f.orders.GetByIDTx(context.Background(), nil, "order-1")
	assert.Equal(t, domain.OrderStatusPaid, stored.Status)

	require.Len(t, f.payments.payments, 2)
	assert.Equal(t, 1, f.payments.payments[0].Sequence)
	assert.Equal(t, "abc123", f.payments.payments[0].TransactionID)
	assert.Equal(t, "giftcard123", f.payments.payments[1].TransactionID)
	assert.Equal(t, domain.PaymentStatusAuthorized, f.payments.payments[1].Status)

	require.Len(t, f.outbox.messages, 1)
	msg := f.outbox.messages[0]
	assert.Equal(t, "payment_settlements", msg.Topic)
	assert.Equal(t, "order-1", msg.Key)
	var evt event.SettlementCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &evt))
	assert.Equal(t, "SUCCESS", evt.Status)
	assert.Equal(t, "user@example.com", evt.UserEmail)
	assert.NotNil(t, evt.EstimatedDelivery)
}

func TestSettleOrder_DeclineKeepsOrderPayable(t *testing.T) {
	f := newServiceFixture(t, pendingOrder("order-2", "50"))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	outcome, err := f.svc.SettleOrder(context.Background(), "order-2", []domain.Tender{
		creditCard("1111222233334444", "50"),
	})
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.False(t, outcome.Succeeded())
	assert.Equal(t, "Payment failed for credit_card, please try again.", outcome.Settlement.Message)
	assert.Equal(t, domain.OrderStatusPendingPayment, outcome.Order.Status)
	assert.Nil(t, outcome.Order.EstimatedDelivery)

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, domain.PaymentStatusDeclined, f.payments.payments[0].Status)
	assert.Equal(t, "Card declined", f.payments.payments[0].Message)
	assert.Len(t, f.outbox.messages, 1)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	retry, err := f.svc.SettleOrder(context.Background(), "order-2", []domain.Tender{payPal("50")})
	require.NoError(t, err)
	assert.True(t, retry.Succeeded())
	assert.Len(t, f.payments.settlements, 2)
}

func TestSettleOrder_ShortfallIsRecorded(t *testing.T) {
	f := newServiceFixture(t, pendingOrder("order-3", "100"))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	outcome, err := f.svc.SettleOrder(context.Background(), "order-3", []domain.Tender{payPal("25")})
	require.NoError(t, err)

	assert.Equal(t, MessageRemainingBalance, outcome.Settlement.Message)
	assertDecimal(t, "75", outcome.Settlement.Remaining)
	assert.Equal(t, domain.OrderStatusPendingPayment, outcome.Order.Status)
}

func TestSettleOrder_ValidationErrorRollsBack(t *testing.T) {
	f := newServiceFixture(t, pendingOrder("order-4", "20"))
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	bad := giftCard("9876543210987654", "20")
	bad.Details.PIN = "1"
	_, err := f.svc.SettleOrder(context.Background(), "order-4", []domain.Tender{bad})

	assert.ErrorIs(t, err, domain.ErrInvalidGiftCard)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Empty(t, f.payments.settlements)
	assert.Empty(t, f.outbox.messages)
}

func TestSettleOrder_UnknownOrder(t *testing.T) {
	f := newServiceFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.SettleOrder(context.Background(), "missing", []domain.Tender{payPal("10")})

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSettleOrder_AlreadyPaid(t *testing.T) {
	paid := pendingOrder("order-5", "10")
	paid.Status = domain.OrderStatusPaid
	f := newServiceFixture(t, paid)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.SettleOrder(context.Background(), "order-5", []domain.Tender{payPal("10")})

	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)
}

func TestSettleOrder_RejectsUnstorableTender(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{name: "zero", amount: "0"},
		{name: "negative", amount: "-1"},
		{name: "sub-cent", amount: "9.995"},
		{name: "above column maximum", amount: "10000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, pendingOrder("order-6", "10"))

			_, err := f.svc.SettleOrder(context.Background(), "order-6", []domain.Tender{payPal(tt.amount)})

			assert.ErrorIs(t, err, domain.ErrInvalidTenderAmount)
			require.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestSettleOrder_RepositoryFailureRollsBack(t *testing.T) {
	f := newServiceFixture(t, pendingOrder("order-7", "10"))
	f.payments.failOn = errors.New("connection reset")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.SettleOrder(context.Background(), "order-7", []domain.Tender{payPal("10")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, f.mock.ExpectationsWereMet())
	stored, _ := f.orders.GetByIDTx(context.Background(), nil, "order-7")
	assert.Equal(t, domain.OrderStatusPendingPayment, stored.Status)
}

func TestListPayments(t *testing.T) {
	f := newServiceFixture(t, pendingOrder("order-8", "10"))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.svc.SettleOrder(context.Background(), "order-8", []domain.Tender{payPal("10")})
	require.NoError(t, err)

	list, err := f.svc.ListPayments(context.Background(), "order-8")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PaymentMethodPayPal, list[0].Method)
	assert.Equal(t, "paypal123", list[0].TransactionID)

	_, err = f.svc.ListPayments(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
