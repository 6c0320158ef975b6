package restaurants

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/restaurants_repo"
)

type RestaurantService interface {
	List(ctx context.Context) ([]domain.Restaurant, error)
	Search(ctx context.Context, c Criteria) ([]domain.Restaurant, error)
}

const catalogueKey = "catalogue"

// restaurantService serves the catalogue from a short-lived cache. Concurrent
// misses share a single repository read.
type restaurantService struct {
	repo   restaurants_repo.RestaurantRepository
	ttl    time.Duration
	logger *zap.Logger

	group     singleflight.Group
	mu        sync.RWMutex
	cached    []domain.Restaurant
	expiresAt time.Time
}

func NewRestaurantService(repo restaurants_repo.RestaurantRepository, ttl time.Duration, l *zap.Logger) RestaurantService {
	return &restaurantService{repo: repo, ttl: ttl, logger: l}
}

func (s *restaurantService) List(ctx context.Context) ([]domain.Restaurant, error) {
	all, err := s.catalogue(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Restaurant, len(all))
	copy(out, all)
	return out, nil
}

func (s *restaurantService) Search(ctx context.Context, c Criteria) ([]domain.Restaurant, error) {
	all, err := s.catalogue(ctx)
	if err != nil {
		return nil, err
	}
	matches := Search(all, c)
	s.logger.Debug("Restaurant search",
		zap.String("cuisine", c.CuisineType),
		zap.Float64("max_rating", c.MaxRating),
		zap.Int("max_delivery_time", c.MaxDeliveryTime),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}

func (s *restaurantService) catalogue(ctx context.Context) ([]domain.Restaurant, error) {
	if cached, ok := s.fromCache(); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(catalogueKey, func() (interface{}, error) {
		if cached, ok := s.fromCache(); ok {
			return cached, nil
		}
		fresh, err := s.repo.ListAll(ctx)
		if err != nil {
			s.logger.Error("Failed to load restaurant catalogue", zap.Error(err))
			return nil, err
		}
		s.mu.Lock()
		s.cached = fresh
		s.expiresAt = time.Now().Add(s.ttl)
		s.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Restaurant), nil
}

func (s *restaurantService) fromCache() ([]domain.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil || time.Now().After(s.expiresAt) {
		return nil, false
	}
	return s.cached, true
}
