package notify

import (
	"context"
	"time"
)

// Notifier delivers customer-facing confirmations. Callers treat it as
// best-effort: a delivery failure is logged, never propagated, and never
// rolls back a payment transition.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, n Notification) error
}

type Notification struct {
	QuoteID       string
	QuoteRef      string
	CustomerEmail string
	Phase         string
	AmountCents   int64
	OrderID       string
	EventDate     time.Time
	// BalanceLink is included on deposit confirmations so the customer
	// can pay the remainder later.
	BalanceLink string
}
