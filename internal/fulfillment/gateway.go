package fulfillment

import (
	"context"
	"time"
)

// Gateway creates orders in the external commerce system once a payment
// has been verified.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

type OrderRequest struct {
	QuoteID       string
	QuoteRef      string
	CustomerEmail string
	Phase         string // deposit | balance
	AmountCents   int64
	Currency      string
	TransactionID string
	GuestCount    int
	EventDate     time.Time
	Items         []LineItem
}

type LineItem struct {
	Title          string
	Quantity       int
	UnitPriceCents int64
}

type Order struct {
	ID     string
	Status string
}
