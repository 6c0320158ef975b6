package route_repo

import (
	"context"

	"fooddelivery/internal/domain"
)

type RouteRepository interface {
	SetOrigin(ctx context.Context, orderID string, origin domain.Location) error
	AppendLocation(ctx context.Context, orderID string, point domain.Location) error
	// AppendEventLocation appends the point at most once per event id and
	// reports whether it was applied by this call.
	AppendEventLocation(ctx context.Context, orderID, eventID string, point domain.Location) (bool, error)
	GetRoute(ctx context.Context, orderID string) (*domain.Route, error)
}
