package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/domain/event"
	"fooddelivery/internal/repository/inbox_repo"
	"fooddelivery/internal/repository/route_repo"
)

type TrackingService interface {
	StartTracking(ctx context.Context, orderID string, origin domain.Location) error
	RecordLocation(ctx context.Context, orderID string, point domain.Location) error
	ProcessLocationEvent(ctx context.Context, evt event.CourierLocationUpdatedEvent, topic string, rawPayload []byte) error
	Tracking(ctx context.Context, orderID string) (*domain.TrackingSnapshot, error)
}

type trackingService struct {
	db        *sql.DB
	routeRepo route_repo.RouteRepository
	inboxRepo inbox_repo.InboxRepository
	logger    *zap.Logger
}

func NewTrackingService(db *sql.DB, routeRepo route_repo.RouteRepository, inboxRepo inbox_repo.InboxRepository, l *zap.Logger) TrackingService {
	return &trackingService{db: db, routeRepo: routeRepo, inboxRepo: inboxRepo, logger: l}
}

func (s *trackingService) StartTracking(ctx context.Context, orderID string, origin domain.Location) error {
	if err := origin.Validate(); err != nil {
		return err
	}
	if err := s.routeRepo.SetOrigin(ctx, orderID, origin); err != nil {
		s.logger.Error("Failed to start tracking", zap.String("order_id", orderID), zap.Error(err))
		return err
	}
	s.logger.Info("Tracking started", zap.String("order_id", orderID))
	return nil
}

func (s *trackingService) RecordLocation(ctx context.Context, orderID string, point domain.Location) error {
	if err := point.Validate(); err != nil {
		return err
	}
	return s.routeRepo.AppendLocation(ctx, orderID, point)
}

// ProcessLocationEvent records a courier ping exactly once per event id. The
// inbox row is committed only after the route holds the point, and the route
// itself ignores an event id it has already applied, so a redelivery after a
// failed commit finishes the inbox row without appending the point again.
func (s *trackingService) ProcessLocationEvent(ctx context.Context, evt event.CourierLocationUpdatedEvent, topic string, rawPayload []byte) error {
	point := domain.Location{Latitude: evt.Latitude, Longitude: evt.Longitude}
	if err := point.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	msg := &domain.InboxMessage{
		ID:          evt.EventID,
		Topic:       topic,
		AggregateID: evt.OrderID,
		Payload:     rawPayload,
		Status:      domain.InboxStatusNew,
		ReceivedAt:  time.Now(),
	}
	if err := s.inboxRepo.CreateMessageTx(ctx, tx, msg); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, domain.ErrMessageAlreadyProcessed) {
			s.logger.Info("Location event already processed", zap.String("event_id", evt.EventID))
			return nil
		}
		return fmt.Errorf("failed to record inbox message %s: %w", evt.EventID, err)
	}

	applied, err := s.routeRepo.AppendEventLocation(ctx, evt.OrderID, evt.EventID, point)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if !applied {
		s.logger.Info("Location event already on route", zap.String("event_id", evt.EventID))
	}

	if err := s.inboxRepo.MarkProcessedTx(ctx, tx, evt.EventID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to mark inbox message %s processed: %w", evt.EventID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *trackingService) Tracking(ctx context.Context, orderID string) (*domain.TrackingSnapshot, error) {
	route, err := s.routeRepo.GetRoute(ctx, orderID)
	if err != nil {
		return nil, err
	}
	current := route.Latest()
	distance := 0.0
	if len(route.Points) > 0 {
		distance = DistanceKm(route.Origin, current)
	}
	return &domain.TrackingSnapshot{
		OrderID:    orderID,
		Origin:     route.Origin,
		Current:    current,
		Route:      route.Points,
		DistanceKm: distance,
		ObservedAt: time.Now().UTC(),
	}, nil
}
