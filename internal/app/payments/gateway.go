package payments

import (
	"context"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

// Gateway authorizes a single charge. A declined charge is a normal
// response, not an error.
type Gateway interface {
	Authorize(ctx context.Context, method domain.PaymentMethod, details domain.PaymentDetails, amount decimal.Decimal) domain.GatewayResponse
}

const (
	declinedCreditCard = "1111222233334444"
	limitedGiftCard    = "9876543210987654"

	creditCardTransactionID = "abc123"
	giftCardTransactionID   = "giftcard123"
	payPalTransactionID     = "paypal123"
)

var giftCardLimit = decimal.NewFromInt(50)

// MockGateway is a deterministic stand-in for a payment processor. One
// credit card number is always declined and one gift card has a balance of
// 50; everything else is approved with a fixed transaction id.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Authorize(_ context.Context, method domain.PaymentMethod, details domain.PaymentDetails, amount decimal.Decimal) domain.GatewayResponse {
	switch method {
	case domain.PaymentMethodCreditCard:
		if details.CardNumber == declinedCreditCard {
			return failure("Card declined")
		}
		return success(creditCardTransactionID)
	case domain.PaymentMethodGiftCard:
		if details.CardNumber == limitedGiftCard && amount.GreaterThan(giftCardLimit) {
			return failure("Insufficient balance")
		}
		return success(giftCardTransactionID)
	case domain.PaymentMethodPayPal:
		return success(payPalTransactionID)
	default:
		return failure("Unsupported payment method")
	}
}

func success(transactionID string) domain.GatewayResponse {
	return domain.GatewayResponse{Status: domain.GatewayStatusSuccess, TransactionID: transactionID}
}

func failure(message string) domain.GatewayResponse {
	return domain.GatewayResponse{Status: domain.GatewayStatusFailure, Message: message}
}
