package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fooddelivery/internal/domain"
)

const (
	MessageSettled          = "Payment successful, Order confirmed"
	MessageRemainingBalance = "Payment failed, remaining balance needs to be paid."
	messageMethodFailedFmt  = "Payment failed for %s, please try again."
)

// Charge is one gateway call made while settling.
type Charge struct {
	Method   domain.PaymentMethod
	Amount   decimal.Decimal
	Response domain.GatewayResponse
}

type Result struct {
	Status       domain.SettlementStatus
	Message      string
	Remaining    decimal.Decimal
	FailedMethod domain.PaymentMethod
	Charges      []Charge
}

func (r *Result) Succeeded() bool {
	return r.Status == domain.SettlementStatusSuccess
}

// Settle pays total with the tenders in order. Each tender is validated and
// then authorized for its own amount. The first declined tender ends the
// attempt; once the total is covered the remaining tenders are not charged.
// Charges already authorized are kept either way.
//
// A validation failure is returned as an error and no result is produced.
// Declines and shortfalls are returned as a FAILED result.
func Settle(ctx context.Context, gateway Gateway, total decimal.Decimal, tenders []domain.Tender) (*Result, error) {
	remaining := total
	result := &Result{}

	for _, tender := range tenders {
		if err := ValidatePaymentMethod(tender.Method, tender.Details); err != nil {
			return nil, err
		}

		resp := gateway.Authorize(ctx, tender.Method, tender.Details, tender.Amount)
		result.Charges = append(result.Charges, Charge{Method: tender.Method, Amount: tender.Amount, Response: resp})
		if !resp.Succeeded() {
			result.Status = domain.SettlementStatusFailed
			result.FailedMethod = tender.Method
			result.Message = fmt.Sprintf(messageMethodFailedFmt, tender.Method)
			result.Remaining = remaining
			return result, nil
		}

		remaining = remaining.Sub(tender.Amount)
		if !remaining.IsPositive() {
			break
		}
	}

	result.Remaining = remaining
	if remaining.IsPositive() {
		result.Status = domain.SettlementStatusFailed
		result.Message = MessageRemainingBalance
		return result, nil
	}
	result.Status = domain.SettlementStatusSuccess
	result.Message = MessageSettled
	return result, nil
}
