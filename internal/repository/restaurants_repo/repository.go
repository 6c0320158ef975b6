package restaurants_repo

import (
	"context"

	"fooddelivery/internal/domain"
)

type RestaurantRepository interface {
	ListAll(ctx context.Context) ([]domain.Restaurant, error)
}
