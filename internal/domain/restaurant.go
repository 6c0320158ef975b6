package domain

type Restaurant struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	CuisineType  string  `json:"cuisine_type"`
	Rating       float64 `json:"rating"`
	DeliveryTime int     `json:"delivery_time"`
	Location     string  `json:"location"`
}
