package payments

import (
	"unicode/utf8"

	"fooddelivery/internal/domain"
)

const (
	cardNumberLength  = 16
	cvvLength         = 3
	giftCardPINLength = 4
)

// ValidatePaymentMethod checks a tender's details before it reaches the
// gateway. Only lengths are checked; PayPal carries no details.
func ValidatePaymentMethod(method domain.PaymentMethod, details domain.PaymentDetails) error {
	switch method {
	case domain.PaymentMethodCreditCard:
		if utf8.RuneCountInString(details.CardNumber) != cardNumberLength ||
			utf8.RuneCountInString(details.CVV) != cvvLength {
			return domain.ErrInvalidCreditCard
		}
	case domain.PaymentMethodGiftCard:
		if utf8.RuneCountInString(details.CardNumber) != cardNumberLength ||
			utf8.RuneCountInString(details.PIN) != giftCardPINLength {
			return domain.ErrInvalidGiftCard
		}
	case domain.PaymentMethodPayPal:
	default:
		return domain.ErrInvalidMethod
	}
	return nil
}
