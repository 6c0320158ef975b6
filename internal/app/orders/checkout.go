package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

type Pricing struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// BuildQuote prices the cart lines for delivery to address. Tax is rounded
// to cents.
func BuildQuote(items []domain.CartItem, address string, p Pricing) (*domain.Quote, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if strings.TrimSpace(address) == "" {
		return nil, domain.ErrMissingDeliveryAddress
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	tax := subtotal.Mul(p.TaxRate).Round(2)

	lines := make([]domain.CartItem, len(items))
	copy(lines, items)
	return &domain.Quote{
		Items:           lines,
		Subtotal:        subtotal,
		Tax:             tax,
		DeliveryFee:     p.DeliveryFee,
		Total:           subtotal.Add(tax).Add(p.DeliveryFee),
		DeliveryAddress: address,
	}, nil
}

// SplitEvenly returns each person's share of total, rounded to cents.
func SplitEvenly(total decimal.Decimal, people int) (decimal.Decimal, error) {
	if people <= 0 {
		return decimal.Zero, domain.ErrInvalidSplit
	}
	return total.Div(decimal.NewFromInt(int64(people))).Round(2), nil
}
