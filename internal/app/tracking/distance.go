package tracking

import (
	"github.com/tidwall/geodesic"

	"fooddelivery/internal/domain"
)

// DistanceKm is the geodesic distance between two points on the WGS-84
// ellipsoid, in kilometres.
func DistanceKm(from, to domain.Location) float64 {
	var meters float64
	geodesic.WGS84.Inverse(from.Latitude, from.Longitude, to.Latitude, to.Longitude, &meters, nil, nil)
	return meters / 1000
}
