package payment

import (
	"time"

	"oakfire-be/internal/quote"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseDeposit Phase = "deposit"
	PhaseBalance Phase = "balance"
)

// PaymentResult is what the client-side provider integration reports
// back after attempting a charge.
type PaymentResult struct {
	Success       bool           `json:"success"`
	TransactionID string         `json:"transactionId,omitempty"`
	PaymentIntent *PaymentIntent `json:"paymentIntent,omitempty"`
	Provider      string         `json:"provider,omitempty"`
	Error         string         `json:"error,omitempty"`
}

type PaymentIntent struct {
	ID string `json:"id"`
}

// TransactionRef returns the idempotency key source: the transaction id,
// falling back to the payment intent id. Empty means the result cannot
// be processed.
func (r PaymentResult) TransactionRef() string {
	if r.TransactionID != "" {
		return r.TransactionID
	}
	if r.PaymentIntent != nil {
		return r.PaymentIntent.ID
	}
	return ""
}

// DepositRequest and BalanceRequest are deliberately distinct types: the
// two phases require materially different fields (the signed token is
// balance-only).
type DepositRequest struct {
	QuoteID  uuid.UUID
	Result   PaymentResult
	Amount   float64 // dollars, as submitted by the client
	Currency string
}

type BalanceRequest struct {
	QuoteID  uuid.UUID
	Result   PaymentResult
	Amount   float64
	Currency string
	Token    string
}

type DepositReceipt struct {
	OrderID     string
	QuoteID     uuid.UUID
	Amount      float64
	Currency    string
	Status      quote.Status
	IsDuplicate bool

	BalancePaymentLink string
	BalanceAmount      float64
	EventDate          time.Time
}

type BalanceReceipt struct {
	OrderID     string
	QuoteID     uuid.UUID
	Amount      float64
	Currency    string
	Status      quote.Status
	IsDuplicate bool

	TotalPaid      float64
	DepositOrderID string
	BalanceOrderID string
	Event          quote.EventDetails
	Timeline       []TimelineEntry
}

type TimelineEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// PhaseStatus answers the read-only GET lookups.
type PhaseStatus struct {
	QuoteID   uuid.UUID
	Phase     Phase
	Status    quote.Status
	Paid      bool
	OrderID   *string
	AmountDue float64
}

type AttemptState string

const (
	AttemptPending   AttemptState = "pending"
	AttemptSucceeded AttemptState = "succeeded"
	AttemptFailed    AttemptState = "failed"
)

// Attempt is the durable idempotency record for one logical payment.
type Attempt struct {
	ID            int64
	QuoteID       uuid.UUID
	Phase         Phase
	TransactionID string
	OrderID       *string
	State         AttemptState
	FailReason    *string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
}
