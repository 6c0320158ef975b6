package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/payments_repo"
)

type paymentRepository struct{}

func NewPaymentRepository() payments_repo.PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) CreateSettlementTx(ctx context.Context, querier domain.Querier, settlement *domain.Settlement) error {
	query := `
		INSERT INTO settlements (id, order_id, status, total_amount, remaining, failed_method, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := querier.ExecContext(ctx, query,
		settlement.ID,
		settlement.OrderID,
		settlement.Status,
		settlement.TotalAmount,
		settlement.Remaining,
		nullString(string(settlement.FailedMethod)),
		settlement.Message,
		settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}
	return nil
}

func (r *paymentRepository) CreatePaymentTx(ctx context.Context, querier domain.Querier, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, settlement_id, order_id, sequence, method, amount, status, transaction_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := querier.ExecContext(ctx, query,
		payment.ID,
		payment.SettlementID,
		payment.OrderID,
		payment.Sequence,
		payment.Method,
		payment.Amount,
		payment.Status,
		nullString(payment.TransactionID),
		nullString(payment.Message),
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByOrderIDTx(ctx context.Context, querier domain.Querier, orderID string) ([]domain.Payment, error) {
	query := `
		SELECT id, settlement_id, order_id, sequence, method, amount, status, transaction_id, message, created_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at ASC, sequence ASC
	`
	rows, err := querier.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for order %s: %w", orderID, err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		var txID, message sql.NullString
		if err := rows.Scan(
			&p.ID,
			&p.SettlementID,
			&p.OrderID,
			&p.Sequence,
			&p.Method,
			&p.Amount,
			&p.Status,
			&txID,
			&message,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.TransactionID = txID.String
		p.Message = message.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
