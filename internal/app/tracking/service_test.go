package tracking

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/domain/event"
	inbox_postgres "fooddelivery/internal/repository/inbox_repo/postgres"
)

type memRouteRepo struct {
	routes    map[string]*domain.Route
	events    map[string]bool
	appendErr error
}

func newMemRouteRepo() *memRouteRepo {
	return &memRouteRepo{routes: make(map[string]*domain.Route), events: make(map[string]bool)}
}

func (r *memRouteRepo) SetOrigin(_ context.Context, orderID string, origin domain.Location) error {
	r.routes[orderID] = &domain.Route{OrderID: orderID, Origin: origin, Points: []domain.Location{}}
	return nil
}

func (r *memRouteRepo) AppendLocation(_ context.Context, orderID string, point domain.Location) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	route, ok := r.routes[orderID]
	if !ok {
		return domain.ErrTrackingNotFound
	}
	route.Points = append(route.Points, point)
	return nil
}

func (r *memRouteRepo) AppendEventLocation(ctx context.Context, orderID, eventID string, point domain.Location) (bool, error) {
	if r.events[orderID+"/"+eventID] {
		return false, nil
	}
	if err := r.AppendLocation(ctx, orderID, point); err != nil {
		return false, err
	}
	r.events[orderID+"/"+eventID] = true
	return true, nil
}

func (r *memRouteRepo) GetRoute(_ context.Context, orderID string) (*domain.Route, error) {
	route, ok := r.routes[orderID]
	if !ok {
		return nil, domain.ErrTrackingNotFound
	}
	cp := *route
	cp.Points = append([]domain.Location(nil), route.Points...)
	return &cp, nil
}

type memInboxRepo struct {
	seen      map[string]domain.InboxMessageStatus
	processed []string
}

func newMemInboxRepo() *memInboxRepo {
	return &memInboxRepo{seen: make(map[string]domain.InboxMessageStatus)}
}

func (r *memInboxRepo) CreateMessageTx(_ context.Context, _ domain.Querier, msg *domain.InboxMessage) error {
	if _, ok := r.seen[msg.ID]; ok {
		return domain.ErrMessageAlreadyProcessed
	}
	r.seen[msg.ID] = msg.Status
	return nil
}

func (r *memInboxRepo) MarkProcessedTx(_ context.Context, _ domain.Querier, id string) error {
	r.seen[id] = domain.InboxStatusProcessed
	r.processed = append(r.processed, id)
	return nil
}

var (
	restaurant = domain.Location{Latitude: 40.748817, Longitude: -73.985428}
	customer   = domain.Location{Latitude: 40.751817, Longitude: -73.988428}
)

func TestTracking_RouteAndDistance(t *testing.T) {
	routes := newMemRouteRepo()
	svc := NewTrackingService(nil, routes, newMemInboxRepo(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.StartTracking(ctx, "order-1", restaurant))

	snap, err := svc.Tracking(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, restaurant, snap.Current)
	assert.Zero(t, snap.DistanceKm)
	assert.Empty(t, snap.Route)

	require.NoError(t, svc.RecordLocation(ctx, "order-1", customer))

	snap, err = svc.Tracking(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, customer, snap.Current)
	assert.Equal(t, []domain.Location{customer}, snap.Route)
	assert.InDelta(t, 0.4185, snap.DistanceKm, 0.005)
}

func TestTracking_Errors(t *testing.T) {
	svc := NewTrackingService(nil, newMemRouteRepo(), newMemInboxRepo(), zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, svc.StartTracking(ctx, "order-1", domain.Location{Latitude: 91}), domain.ErrInvalidLocation)
	assert.ErrorIs(t, svc.RecordLocation(ctx, "order-1", customer), domain.ErrTrackingNotFound)
	assert.ErrorIs(t, svc.RecordLocation(ctx, "order-1", domain.Location{Longitude: -181}), domain.ErrInvalidLocation)

	_, err := svc.Tracking(ctx, "order-1")
	assert.ErrorIs(t, err, domain.ErrTrackingNotFound)
}

func locationEvent(id string) event.CourierLocationUpdatedEvent {
	return event.CourierLocationUpdatedEvent{
		EventID:   id,
		OrderID:   "order-1",
		Latitude:  customer.Latitude,
		Longitude: customer.Longitude,
	}
}

func TestProcessLocationEvent_AppliesOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	routes := newMemRouteRepo()
	inbox := newMemInboxRepo()
	svc := NewTrackingService(db, routes, inbox, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, svc.StartTracking(ctx, "order-1", restaurant))

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.NoError(t, svc.ProcessLocationEvent(ctx, locationEvent("evt-1"), "courier.location", []byte(`{}`)))
	require.NoError(t, svc.ProcessLocationEvent(ctx, locationEvent("evt-1"), "courier.location", []byte(`{}`)))

	assert.Len(t, routes.routes["order-1"].Points, 1)
	assert.Equal(t, []string{"evt-1"}, inbox.processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessLocationEvent_RedeliveryAfterFailedCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	routes := newMemRouteRepo()
	svc := NewTrackingService(db, routes, inbox_postgres.NewInboxRepository(), zap.NewNop())
	ctx := context.Background()
	require.NoError(t, svc.StartTracking(ctx, "order-1", restaurant))

	for _, commitErr := range []error{errors.New("connection reset"), nil} {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inbox_messages")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE inbox_messages SET status = $1")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		if commitErr != nil {
			mock.ExpectCommit().WillReturnError(commitErr)
		} else {
			mock.ExpectCommit()
		}
	}

	err = svc.ProcessLocationEvent(ctx, locationEvent("evt-1"), "courier.location", []byte(`{}`))
	require.ErrorContains(t, err, "connection reset")

	require.NoError(t, svc.ProcessLocationEvent(ctx, locationEvent("evt-1"), "courier.location", []byte(`{}`)))

	assert.Len(t, routes.routes["order-1"].Points, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessLocationEvent_RouteFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	routes := newMemRouteRepo()
	routes.appendErr = errors.New("redis down")
	inbox := newMemInboxRepo()
	svc := NewTrackingService(db, routes, inbox, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = svc.ProcessLocationEvent(context.Background(), locationEvent("evt-2"), "courier.location", []byte(`{}`))

	assert.EqualError(t, err, "redis down")
	assert.Empty(t, inbox.processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessLocationEvent_InvalidLocationSkipsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewTrackingService(db, newMemRouteRepo(), newMemInboxRepo(), zap.NewNop())
	evt := locationEvent("evt-3")
	evt.Latitude = 120

	err = svc.ProcessLocationEvent(context.Background(), evt, "courier.location", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
