package orders_repo

import (
	"context"

	"fooddelivery/internal/domain"
)

type OrderRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, order *domain.Order) error
	GetByIDTx(ctx context.Context, querier domain.Querier, id string) (*domain.Order, error)
	GetByIDForUpdateTx(ctx context.Context, querier domain.Querier, id string) (*domain.Order, error)
	ListByUserTx(ctx context.Context, querier domain.Querier, userEmail string) ([]domain.Order, error)
	UpdateStatusTx(ctx context.Context, querier domain.Querier, order *domain.Order) error
}
