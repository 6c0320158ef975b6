package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMethod       = errors.New("Invalid payment method")
	ErrInvalidCreditCard   = errors.New("Invalid credit card details")
	ErrInvalidGiftCard     = errors.New("Invalid gift card details")
	ErrInvalidTenderAmount = errors.New("tender amount must be positive, in whole cents and at most 9999999999.99")
)

// MaxTenderAmount is the largest amount a NUMERIC(12,2) ledger column holds.
var MaxTenderAmount = decimal.RequireFromString("9999999999.99")

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodPayPal     PaymentMethod = "paypal"
	PaymentMethodGiftCard   PaymentMethod = "gift_card"
)

// PaymentDetails carries the instrument data of a tender. Which fields are
// meaningful depends on the method: credit cards use CardNumber, ExpiryDate
// and CVV, gift cards use CardNumber and PIN, PayPal uses none.
type PaymentDetails struct {
	CardNumber string `json:"card_number,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	PIN        string `json:"pin,omitempty"`
}

// Tender is one portion of an order total paid with a single method.
type Tender struct {
	Method  PaymentMethod   `json:"method"`
	Details PaymentDetails  `json:"details"`
	Amount  decimal.Decimal `json:"amount"`
}

// ValidAmount reports whether the amount can be charged and stored without
// rounding.
func (t Tender) ValidAmount() bool {
	if !t.Amount.IsPositive() || t.Amount.GreaterThan(MaxTenderAmount) {
		return false
	}
	return t.Amount.Exponent() >= -2 || t.Amount.Equal(t.Amount.Round(2))
}

type GatewayStatus string

const (
	GatewayStatusSuccess GatewayStatus = "success"
	GatewayStatusFailure GatewayStatus = "failure"
)

type GatewayResponse struct {
	Status        GatewayStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Message       string        `json:"message,omitempty"`
}

func (r GatewayResponse) Succeeded() bool {
	return r.Status == GatewayStatusSuccess
}

type PaymentStatus string

const (
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusDeclined   PaymentStatus = "DECLINED"
)

// Payment is the persisted record of a single gateway authorization attempt.
type Payment struct {
	ID            string
	SettlementID  string
	OrderID       string
	Sequence      int
	Method        PaymentMethod
	Amount        decimal.Decimal
	Status        PaymentStatus
	TransactionID string
	Message       string
	CreatedAt     time.Time
}
