package quote

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusDepositPaid Status = "deposit_paid"
	StatusConfirmed   Status = "confirmed"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// Terminal statuses accept no further transitions of any kind.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DepositStatuses are the statuses from which a deposit payment is
// accepted. BalanceStatuses likewise for the balance payment.
var (
	DepositStatuses = []Status{StatusPending, StatusApproved}
	BalanceStatuses = []Status{StatusDepositPaid}
)

func CanAcceptDeposit(s Status) bool {
	return s == StatusPending || s == StatusApproved
}

func CanAcceptBalance(s Status) bool {
	return s == StatusDepositPaid
}

type EventType string

const (
	EventCorporate EventType = "corporate"
	EventPrivate   EventType = "private"
)

type HungerLevel string

const (
	HungerNormal       HungerLevel = "normal"
	HungerPrettyHungry HungerLevel = "prettyHungry"
	HungerReallyHungry HungerLevel = "reallyHungry"
)

type Location struct {
	Address       string  `json:"address"`
	DistanceMiles float64 `json:"distanceMiles"`
}

type EventDetails struct {
	Type        EventType   `json:"type"`
	Date        time.Time   `json:"date"`
	GuestCount  int         `json:"guestCount"`
	HungerLevel HungerLevel `json:"hungerLevel"`
	Location    Location    `json:"location"`
}

type MenuSelection struct {
	ProteinID string `json:"proteinId"`
	SideID    string `json:"sideId"`
	Quantity  int    `json:"quantity"`
}

type AddonSelection struct {
	AddonID  string `json:"addOnId"`
	Quantity int    `json:"quantity"`
}

// Pricing is the immutable breakdown snapshotted at quote creation. All
// fields are non-negative integer cents and must satisfy
// Total = Subtotal+Tax+DeliveryFee = Deposit+Balance.
type Pricing struct {
	SubtotalCents    int64 `json:"subtotalCents"`
	TaxCents         int64 `json:"taxCents"`
	DeliveryFeeCents int64 `json:"deliveryFeeCents"`
	TotalCents       int64 `json:"totalCents"`
	DepositCents     int64 `json:"depositCents"`
	BalanceCents     int64 `json:"balanceCents"`
}

type Quote struct {
	ID             uuid.UUID
	Reference      string
	CustomerEmail  string
	Event          EventDetails
	MenuSelections []MenuSelection
	Addons         []AddonSelection
	Pricing        Pricing
	Status         Status
	// External order ids, each set exactly once when the corresponding
	// payment phase completes.
	DepositOrderID *string
	BalanceOrderID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateQuoteInput struct {
	CustomerEmail  string
	Event          EventDetails
	MenuSelections []MenuSelection
	Addons         []AddonSelection
}
