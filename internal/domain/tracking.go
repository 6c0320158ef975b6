package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidLocation  = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrTrackingNotFound = errors.New("tracking not started for order")
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 || l.Longitude < -180 || l.Longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}

type Route struct {
	OrderID string
	Origin  Location
	Points  []Location
}

// Latest returns the most recent point, or the origin when nothing has been
// recorded yet.
func (r *Route) Latest() Location {
	if len(r.Points) == 0 {
		return r.Origin
	}
	return r.Points[len(r.Points)-1]
}

type TrackingSnapshot struct {
	OrderID    string     `json:"order_id"`
	Origin     Location   `json:"origin"`
	Current    Location   `json:"current"`
	Route      []Location `json:"route"`
	DistanceKm float64    `json:"distance_km"`
	ObservedAt time.Time  `json:"observed_at"`
}
