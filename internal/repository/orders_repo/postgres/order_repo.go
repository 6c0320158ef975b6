package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/orders_repo"
)

const orderColumns = `id, user_email, items, subtotal, tax, delivery_fee, total_amount, delivery_address, status, estimated_delivery, created_at, updated_at`

type pgOrderRepository struct {
	logger *zap.Logger
}

func NewOrderRepository(l *zap.Logger) orders_repo.OrderRepository {
	return &pgOrderRepository{logger: l}
}

func (r *pgOrderRepository) CreateTx(ctx context.Context, querier domain.Querier, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = querier.ExecContext(ctx, query,
		order.ID,
		order.UserEmail,
		string(items),
		order.Subtotal,
		order.Tax,
		order.DeliveryFee,
		order.TotalAmount,
		order.DeliveryAddress,
		order.Status,
		order.EstimatedDelivery,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}
	r.logger.Debug("Order created", zap.String("order_id", order.ID))
	return nil
}

func (r *pgOrderRepository) GetByIDTx(ctx context.Context, querier domain.Querier, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(ctx, querier, query, id)
}

func (r *pgOrderRepository) GetByIDForUpdateTx(ctx context.Context, querier domain.Querier, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, querier, query, id)
}

// getOne treats an id that is not a UUID as unknown rather than letting
// Postgres reject the cast.
func (r *pgOrderRepository) getOne(ctx context.Context, querier domain.Querier, query, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrOrderNotFound
	}
	order, err := scanOrder(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order", zap.String("order_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return order, nil
}

func (r *pgOrderRepository) ListByUserTx(ctx context.Context, querier domain.Querier, userEmail string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_email = $1 ORDER BY created_at DESC`
	rows, err := querier.QueryContext(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userEmail, err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

func (r *pgOrderRepository) UpdateStatusTx(ctx context.Context, querier domain.Querier, order *domain.Order) error {
	query := `UPDATE orders SET status = $1, estimated_delivery = $2, updated_at = $3 WHERE id = $4`
	res, err := querier.ExecContext(ctx, query, order.Status, order.EstimatedDelivery, order.UpdatedAt, order.ID)
	if err != nil {
		return fmt.Errorf("failed to update order status %s: %w", order.ID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for order status update: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	r.logger.Debug("Order status updated", zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var items []byte
	var eta sql.NullTime
	err := row.Scan(
		&order.ID,
		&order.UserEmail,
		&items,
		&order.Subtotal,
		&order.Tax,
		&order.DeliveryFee,
		&order.TotalAmount,
		&order.DeliveryAddress,
		&order.Status,
		&eta,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
	}
	if eta.Valid {
		order.EstimatedDelivery = &eta.Time
	}
	return order, nil
}
