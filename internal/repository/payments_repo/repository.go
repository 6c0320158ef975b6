package payments_repo

import (
	"context"

	"fooddelivery/internal/domain"
)

type PaymentRepository interface {
	CreateSettlementTx(ctx context.Context, querier domain.Querier, settlement *domain.Settlement) error
	CreatePaymentTx(ctx context.Context, querier domain.Querier, payment *domain.Payment) error
	ListByOrderIDTx(ctx context.Context, querier domain.Querier, orderID string) ([]domain.Payment, error)
}
