package restaurants

import (
	"strings"

	"fooddelivery/internal/domain"
)

const (
	DefaultMaxRating       = 5.0
	DefaultMaxDeliveryTime = 60
)

// Criteria narrows a restaurant listing. MaxRating and MaxDeliveryTime are
// upper bounds; an empty CuisineType matches every cuisine.
type Criteria struct {
	CuisineType     string
	MaxRating       float64
	MaxDeliveryTime int
}

func DefaultCriteria() Criteria {
	return Criteria{MaxRating: DefaultMaxRating, MaxDeliveryTime: DefaultMaxDeliveryTime}
}

// Search returns the restaurants matching every criterion, in input order.
// The cuisine is matched as a case-insensitive substring.
func Search(restaurants []domain.Restaurant, c Criteria) []domain.Restaurant {
	cuisine := strings.ToLower(c.CuisineType)
	matches := make([]domain.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if cuisine != "" && !strings.Contains(strings.ToLower(r.CuisineType), cuisine) {
			continue
		}
		if r.Rating > c.MaxRating || r.DeliveryTime > c.MaxDeliveryTime {
			continue
		}
		matches = append(matches, r)
	}
	return matches
}
