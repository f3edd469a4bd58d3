package payment

import (
	"errors"
	"fmt"

	"oakfire-be/internal/utils"
)

var (
	// ErrPaymentFailed: the upstream provider declined the charge.
	ErrPaymentFailed = errors.New("payment was not successful")

	// ErrMissingTransactionID: neither transactionId nor paymentIntent.id
	// was present. Accepting such a result would collide every retry of
	// the quote/phase on an empty idempotency key.
	ErrMissingTransactionID = errors.New("payment result carries no transaction id")

	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrAttemptInFlight: a concurrent request already holds the pending
	// attempt for this (quote, phase, transaction) key. The caller should
	// retry once the holder finishes.
	ErrAttemptInFlight = errors.New("a payment attempt for this transaction is already in progress")

	ErrTokenInvalid = errors.New("balance payment token invalid")
	ErrTokenExpired = errors.New("balance payment token expired")
	ErrTokenStale   = errors.New("balance payment token no longer matches the quote balance")

	// ErrOrderCreation: the payment was captured but the external order
	// could not be created. The one failure mode that loses money-safety
	// if dropped; always logged with quote id, transaction id and amount.
	ErrOrderCreation = errors.New("order creation failed")
)

// AmountMismatchError reports both sides of a failed amount comparison,
// in cents and dollars, for caller diagnostics.
type AmountMismatchError struct {
	Phase         Phase
	ExpectedCents int64
	ReceivedCents int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf(
		"%s amount mismatch: expected $%.2f (%d cents), received $%.2f (%d cents)",
		e.Phase,
		utils.CentsToDollars(e.ExpectedCents), e.ExpectedCents,
		utils.CentsToDollars(e.ReceivedCents), e.ReceivedCents,
	)
}
