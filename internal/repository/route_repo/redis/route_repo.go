package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/route_repo"
)

type redisRouteRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRouteRepository(client *redis.Client, ttl time.Duration) route_repo.RouteRepository {
	return &redisRouteRepository{client: client, ttl: ttl}
}

func originKey(orderID string) string {
	return fmt.Sprintf("tracking:%s:origin", orderID)
}

func routeKey(orderID string) string {
	return fmt.Sprintf("tracking:%s:route", orderID)
}

func eventsKey(orderID string) string {
	return fmt.Sprintf("tracking:%s:events", orderID)
}

// appendEventScript pushes a point only the first time its event id is seen.
// Returns -1 when the order is not tracked, 0 for a duplicate, 1 when applied.
var appendEventScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('SADD', KEYS[3], ARGV[1]) == 0 then
	return 0
end
redis.call('RPUSH', KEYS[2], ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[3])
redis.call('EXPIRE', KEYS[2], ARGV[3])
redis.call('EXPIRE', KEYS[3], ARGV[3])
return 1
`)

// SetOrigin starts a fresh route for the order, dropping any previous points.
func (r *redisRouteRepository) SetOrigin(ctx context.Context, orderID string, origin domain.Location) error {
	payload, err := json.Marshal(origin)
	if err != nil {
		return fmt.Errorf("failed to encode origin: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, originKey(orderID), string(payload), r.ttl)
	pipe.Del(ctx, routeKey(orderID), eventsKey(orderID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store origin for order %s: %w", orderID, err)
	}
	return nil
}

func (r *redisRouteRepository) AppendLocation(ctx context.Context, orderID string, point domain.Location) error {
	exists, err := r.client.Exists(ctx, originKey(orderID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check tracking for order %s: %w", orderID, err)
	}
	if exists == 0 {
		return domain.ErrTrackingNotFound
	}

	payload, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, routeKey(orderID), string(payload))
	pipe.Expire(ctx, routeKey(orderID), r.ttl)
	pipe.Expire(ctx, originKey(orderID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append location for order %s: %w", orderID, err)
	}
	return nil
}

func (r *redisRouteRepository) AppendEventLocation(ctx context.Context, orderID, eventID string, point domain.Location) (bool, error) {
	payload, err := json.Marshal(point)
	if err != nil {
		return false, fmt.Errorf("failed to encode location: %w", err)
	}
	keys := []string{originKey(orderID), routeKey(orderID), eventsKey(orderID)}
	res, err := appendEventScript.Run(ctx, r.client, keys, eventID, string(payload), int64(r.ttl/time.Second)).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to append location event %s for order %s: %w", eventID, orderID, err)
	}
	switch res {
	case -1:
		return false, domain.ErrTrackingNotFound
	case 0:
		return false, nil
	}
	return true, nil
}

func (r *redisRouteRepository) GetRoute(ctx context.Context, orderID string) (*domain.Route, error) {
	raw, err := r.client.Get(ctx, originKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTrackingNotFound
		}
		return nil, fmt.Errorf("failed to get origin for order %s: %w", orderID, err)
	}

	route := &domain.Route{OrderID: orderID, Points: []domain.Location{}}
	if err := json.Unmarshal([]byte(raw), &route.Origin); err != nil {
		return nil, fmt.Errorf("failed to decode origin for order %s: %w", orderID, err)
	}

	points, err := r.client.LRange(ctx, routeKey(orderID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get route for order %s: %w", orderID, err)
	}
	for _, p := range points {
		var loc domain.Location
		if err := json.Unmarshal([]byte(p), &loc); err != nil {
			return nil, fmt.Errorf("failed to decode route point for order %s: %w", orderID, err)
		}
		route.Points = append(route.Points, loc)
	}
	return route, nil
}
