package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/restaurants_repo"
)

type restaurantRepository struct {
	db *sql.DB
}

func NewRestaurantRepository(db *sql.DB) restaurants_repo.RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) ListAll(ctx context.Context) ([]domain.Restaurant, error) {
	query := `SELECT id, name, cuisine_type, rating, delivery_time, location FROM restaurants ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []domain.Restaurant{}
	for rows.Next() {
		var rest domain.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.CuisineType, &rest.Rating, &rest.DeliveryTime, &rest.Location); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurants: %w", err)
	}
	return restaurants, nil
}
