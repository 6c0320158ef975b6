package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderAlreadyPaid       = errors.New("order is already paid")
	ErrInvalidOrderData       = errors.New("invalid order data")
	ErrInvalidSplit           = errors.New("Number of people must be greater than zero.")
	ErrEmptyCart              = errors.New("Cart is empty")
	ErrMissingDeliveryAddress = errors.New("delivery address is required")
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaid           OrderStatus = "PAID"
)

type Order struct {
	ID                string
	UserEmail         string
	Items             []CartItem
	Subtotal          decimal.Decimal
	Tax               decimal.Decimal
	DeliveryFee       decimal.Decimal
	TotalAmount       decimal.Decimal
	DeliveryAddress   string
	Status            OrderStatus
	EstimatedDelivery *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOrder creates an order awaiting payment from a checkout quote.
func NewOrder(id, userEmail string, quote *Quote) (*Order, error) {
	if id == "" || userEmail == "" || quote == nil || !quote.Total.IsPositive() {
		return nil, ErrInvalidOrderData
	}
	now := time.Now()
	items := make([]CartItem, len(quote.Items))
	copy(items, quote.Items)
	return &Order{
		ID:              id,
		UserEmail:       userEmail,
		Items:           items,
		Subtotal:        quote.Subtotal,
		Tax:             quote.Tax,
		DeliveryFee:     quote.DeliveryFee,
		TotalAmount:     quote.Total,
		DeliveryAddress: quote.DeliveryAddress,
		Status:          OrderStatusPendingPayment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (o *Order) MarkAsPaid(estimatedDelivery time.Time) error {
	if o.Status != OrderStatusPendingPayment {
		return ErrOrderAlreadyPaid
	}
	o.Status = OrderStatusPaid
	o.EstimatedDelivery = &estimatedDelivery
	o.UpdatedAt = time.Now()
	return nil
}

// Quote is the price breakdown presented at checkout.
type Quote struct {
	Items           []CartItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
}
