package quote

import (
	"errors"
	"fmt"
)

var (
	ErrQuoteNotFound = errors.New("quote not found")
	ErrInvalidInput  = errors.New("invalid quote input")

	// ErrStatusConflict means a compare-and-swap status update matched
	// zero rows: the quote moved concurrently or an order id was already
	// set.
	ErrStatusConflict = errors.New("quote status changed concurrently")

	ErrPricingCorrupt = errors.New("pricing breakdown violates invariants")
)

// InvalidTransitionError reports a payment or admin action attempted
// from a status that does not accept it.
type InvalidTransitionError struct {
	Current  Status
	Expected []Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: current status %q, expected one of %v", e.Current, e.Expected)
}
