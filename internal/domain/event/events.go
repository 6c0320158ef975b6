package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementCompletedEvent is published after every settlement attempt,
// successful or not.
type SettlementCompletedEvent struct {
	SettlementID      string          `json:"settlement_id"`
	OrderID           string          `json:"order_id"`
	UserEmail         string          `json:"user_email"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Remaining         decimal.Decimal `json:"remaining"`
	Status            string          `json:"status"`
	FailedMethod      string          `json:"failed_method,omitempty"`
	Message           string          `json:"message"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	Timestamp         time.Time       `json:"timestamp"`
}

// CourierLocationUpdatedEvent is consumed from the courier location topic.
type CourierLocationUpdatedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}
