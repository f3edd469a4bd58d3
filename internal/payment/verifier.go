package payment

import (
	"fmt"
	"strings"

	"oakfire-be/internal/quote"
	"oakfire-be/internal/utils"
)

// AmountToleranceCents absorbs float round-trip noise from the client
// without accepting a real off-by-a-cent underpayment.
const AmountToleranceCents = 1

// VerifyResult checks the provider outcome and resolves the idempotency
// key. It never touches the database.
func VerifyResult(res PaymentResult) (string, error) {
	if !res.Success {
		if res.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrPaymentFailed, res.Error)
		}
		return "", ErrPaymentFailed
	}

	txn := res.TransactionRef()
	if txn == "" {
		return "", ErrMissingTransactionID
	}
	return txn, nil
}

// VerifyAmount compares the claimed dollar amount against the snapshot
// expectation for the phase. The comparison happens at cent scale.
func VerifyAmount(phase Phase, claimedDollars float64, pricing quote.Pricing) error {
	var expected int64
	switch phase {
	case PhaseDeposit:
		expected = pricing.DepositCents
	case PhaseBalance:
		expected = pricing.BalanceCents
	default:
		return fmt.Errorf("unknown payment phase %q", phase)
	}

	received := utils.DollarsToCents(claimedDollars)
	if !utils.WithinCentTolerance(expected, received, AmountToleranceCents) {
		return &AmountMismatchError{
			Phase:         phase,
			ExpectedCents: expected,
			ReceivedCents: received,
		}
	}
	return nil
}

// VerifyCurrency accepts the single settlement currency. Quotes are
// priced in USD; a different code means the client charged the wrong
// currency entirely.
func VerifyCurrency(code string) error {
	if !strings.EqualFold(code, "USD") {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return nil
}
