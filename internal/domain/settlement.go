package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettlementStatus string

const (
	SettlementStatusSuccess SettlementStatus = "SUCCESS"
	SettlementStatusFailed  SettlementStatus = "FAILED"
)

// Settlement records one attempt to pay an order with a list of tenders.
// A failed attempt leaves the order payable; a new attempt creates a new
// record.
type Settlement struct {
	ID           string
	OrderID      string
	Status       SettlementStatus
	TotalAmount  decimal.Decimal
	Remaining    decimal.Decimal
	FailedMethod PaymentMethod
	Message      string
	CreatedAt    time.Time
}
