package payments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/domain/event"
	"fooddelivery/internal/repository/orders_repo"
	"fooddelivery/internal/repository/outbox_repo"
	"fooddelivery/internal/repository/payments_repo"
	"fooddelivery/internal/util"
)

// Outcome is what a settlement attempt leaves behind once committed.
type Outcome struct {
	Settlement *domain.Settlement
	Payments   []domain.Payment
	Order      *domain.Order
}

func (o *Outcome) Succeeded() bool {
	return o.Settlement.Status == domain.SettlementStatusSuccess
}

type SettlementService interface {
	SettleOrder(ctx context.Context, orderID string, tenders []domain.Tender) (*Outcome, error)
	ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error)
}

type ServiceConfig struct {
	SettlementTopic string
	DeliveryETA     time.Duration
}

type settlementService struct {
	db          *sql.DB
	orderRepo   orders_repo.OrderRepository
	paymentRepo payments_repo.PaymentRepository
	outboxRepo  outbox_repo.OutboxRepository
	gateway     Gateway
	cfg         ServiceConfig
	logger      *zap.Logger
}

func NewSettlementService(
	db *sql.DB,
	orderRepo orders_repo.OrderRepository,
	paymentRepo payments_repo.PaymentRepository,
	outboxRepo outbox_repo.OutboxRepository,
	gateway Gateway,
	cfg ServiceConfig,
	logger *zap.Logger,
) SettlementService {
	return &settlementService{
		db:          db,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		gateway:     gateway,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *settlementService) SettleOrder(ctx context.Context, orderID string, tenders []domain.Tender) (*Outcome, error) {
	for _, t := range tenders {
		if !t.ValidAmount() {
			return nil, domain.ErrInvalidTenderAmount
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin settlement transaction", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic during settlement transaction, rolling back", zap.String("order_id", orderID), zap.Any("panic", r))
			_ = tx.Rollback()
			panic(r)
		}
	}()

	outcome, err := s.settleOrderTx(ctx, tx, orderID, tenders)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back settlement transaction", zap.String("order_id", orderID), zap.Error(rbErr))
			return nil, fmt.Errorf("rollback failed after settlement error %v: %w", err, rbErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit settlement transaction", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Settlement attempt recorded",
		zap.String("order_id", orderID),
		zap.String("settlement_id", outcome.Settlement.ID),
		zap.String("status", string(outcome.Settlement.Status)),
		zap.String("remaining", outcome.Settlement.Remaining.StringFixed(2)),
		zap.Int("charges", len(outcome.Payments)),
	)
	return outcome, nil
}

func (s *settlementService) settleOrderTx(ctx context.Context, tx *sql.Tx, orderID string, tenders []domain.Tender) (*Outcome, error) {
	order, err := s.orderRepo.GetByIDForUpdateTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.logger.Warn("Settlement requested for unknown order", zap.String("order_id", orderID))
		}
		return nil, err
	}
	if order.Status == domain.OrderStatusPaid {
		s.logger.Warn("Settlement requested for an order that is already paid", zap.String("order_id", orderID))
		return nil, domain.ErrOrderAlreadyPaid
	}

	result, err := Settle(ctx, s.gateway, order.TotalAmount, tenders)
	if err != nil {
		s.logger.Warn("Tender rejected by validation", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	settlement := &domain.Settlement{
		ID:           util.GenerateUUID(),
		OrderID:      order.ID,
		Status:       result.Status,
		TotalAmount:  order.TotalAmount,
		Remaining:    result.Remaining,
		FailedMethod: result.FailedMethod,
		Message:      result.Message,
		CreatedAt:    now,
	}
	if err := s.paymentRepo.CreateSettlementTx(ctx, tx, settlement); err != nil {
		return nil, fmt.Errorf("failed to record settlement for order %s: %w", orderID, err)
	}

	payments := make([]domain.Payment, 0, len(result.Charges))
	for i, charge := range result.Charges {
		payment := domain.Payment{
			ID:            util.GenerateUUID(),
			SettlementID:  settlement.ID,
			OrderID:       order.ID,
			Sequence:      i + 1,
			Method:        charge.Method,
			Amount:        charge.Amount,
			Status:        domain.PaymentStatusAuthorized,
			TransactionID: charge.Response.TransactionID,
			Message:       charge.Response.Message,
			CreatedAt:     now,
		}
		if !charge.Response.Succeeded() {
			payment.Status = domain.PaymentStatusDeclined
		}
		if err := s.paymentRepo.CreatePaymentTx(ctx, tx, &payment); err != nil {
			return nil, fmt.Errorf("failed to record %s payment for order %s: %w", charge.Method, orderID, err)
		}
		payments = append(payments, payment)
	}

	if result.Succeeded() {
		if err := order.MarkAsPaid(now.Add(s.cfg.DeliveryETA)); err != nil {
			return nil, err
		}
		if err := s.orderRepo.UpdateStatusTx(ctx, tx, order); err != nil {
			return nil, fmt.Errorf("failed to mark order %s as paid: %w", orderID, err)
		}
	}

	payload, err := PrepareSettlementPayload(order, settlement)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare settlement event for order %s: %w", orderID, err)
	}
	msg := &domain.OutboxMessage{
		ID:            util.GenerateUUID(),
		AggregateID:   order.ID,
		AggregateType: "order",
		MessageType:   "SettlementCompleted",
		Topic:         s.cfg.SettlementTopic,
		Key:           order.ID,
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     now,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, msg); err != nil {
		return nil, fmt.Errorf("failed to create outbox message for order %s: %w", orderID, err)
	}

	return &Outcome{Settlement: settlement, Payments: payments, Order: order}, nil
}

func (s *settlementService) ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error) {
	if _, err := s.orderRepo.GetByIDTx(ctx, s.db, orderID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByOrderIDTx(ctx, s.db, orderID)
	if err != nil {
		s.logger.Error("Failed to list payments", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to list payments for order %s: %w", orderID, err)
	}
	return payments, nil
}

// PrepareSettlementPayload builds the event published for a settlement
// attempt.
func PrepareSettlementPayload(order *domain.Order, settlement *domain.Settlement) ([]byte, error) {
	evt := event.SettlementCompletedEvent{
		SettlementID:      settlement.ID,
		OrderID:           order.ID,
		UserEmail:         order.UserEmail,
		TotalAmount:       settlement.TotalAmount,
		Remaining:         settlement.Remaining,
		Status:            string(settlement.Status),
		FailedMethod:      string(settlement.FailedMethod),
		Message:           settlement.Message,
		EstimatedDelivery: order.EstimatedDelivery,
		Timestamp:         settlement.CreatedAt,
	}
	return json.Marshal(evt)
}
