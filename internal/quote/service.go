package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"oakfire-be/internal/logger"
	"oakfire-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddonPricer resolves catalog prices for add-on selections at quote
// creation time. Implemented by the addon service.
type AddonPricer interface {
	PriceList(ctx context.Context, ids []string) (map[string]int64, error)
}

type Service interface {
	Create(ctx context.Context, input CreateQuoteInput) (*Quote, error)
	Get(ctx context.Context, id uuid.UUID) (*Quote, error)
	Approve(ctx context.Context, id uuid.UUID) (*Quote, error)
	Confirm(ctx context.Context, id uuid.UUID) (*Quote, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Quote, error)
}

type service struct {
	repo    Repository
	addons  AddonPricer
	pricing PricingConfig
}

func NewService(repo Repository, addons AddonPricer, pricing PricingConfig) Service {
	return &service{repo: repo, addons: addons, pricing: pricing}
}

const maxGuestCount = 1000

func validateInput(in CreateQuoteInput) error {
	if !strings.Contains(in.CustomerEmail, "@") {
		return fmt.Errorf("%w: customer email required", ErrInvalidInput)
	}
	if in.Event.Type != EventCorporate && in.Event.Type != EventPrivate {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, in.Event.Type)
	}
	if in.Event.GuestCount < 1 || in.Event.GuestCount > maxGuestCount {
		return fmt.Errorf("%w: guest count must be 1..%d", ErrInvalidInput, maxGuestCount)
	}
	if in.Event.Date.IsZero() {
		return fmt.Errorf("%w: event date required", ErrInvalidInput)
	}
	if in.Event.Location.Address == "" {
		return fmt.Errorf("%w: event address required", ErrInvalidInput)
	}
	if in.Event.Location.DistanceMiles < 0 {
		return fmt.Errorf("%w: negative delivery distance", ErrInvalidInput)
	}
	if len(in.MenuSelections) == 0 {
		return fmt.Errorf("%w: at least one menu selection required", ErrInvalidInput)
	}
	for _, sel := range in.MenuSelections {
		if sel.ProteinID == "" || sel.SideID == "" {
			return fmt.Errorf("%w: menu selection missing protein or side", ErrInvalidInput)
		}
		if sel.Quantity < 1 {
			return fmt.Errorf("%w: menu selection quantity must be at least 1", ErrInvalidInput)
		}
	}
	for _, sel := range in.Addons {
		if sel.AddonID == "" || sel.Quantity < 1 {
			return fmt.Errorf("%w: invalid add-on selection", ErrInvalidInput)
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateQuoteInput) (*Quote, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateQuote"),
		zap.String("customer_email", input.CustomerEmail),
		zap.Int("guest_count", input.Event.GuestCount),
	)
	log.Info("create quote started")

	if err := validateInput(input); err != nil {
		log.Warn("quote input rejected", zap.Error(err))
		return nil, err
	}

	addonPrices := map[string]int64{}
	if len(input.Addons) > 0 {
		ids := make([]string, 0, len(input.Addons))
		for _, sel := range input.Addons {
			ids = append(ids, sel.AddonID)
		}

		var err error
		addonPrices, err = s.addons.PriceList(ctx, ids)
		if err != nil {
			log.Error("failed to resolve add-on prices", zap.Error(err))
			return nil, err
		}
	}

	pricing, err := ComputePricing(input, addonPrices, s.pricing)
	if err != nil {
		log.Warn("pricing computation rejected", zap.Error(err))
		return nil, err
	}

	q := &Quote{
		ID:             uuid.New(),
		Reference:      utils.GenerateQuoteReference(),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
		Event:          input.Event,
		MenuSelections: input.MenuSelections,
		Addons:         input.Addons,
		Pricing:        pricing,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.repo.Create(ctx, q); err != nil {
		log.Error("failed to persist quote", zap.Error(err))
		return nil, err
	}

	log.Info("quote created",
		zap.String("quote_id", q.ID.String()),
		zap.String("reference", q.Reference),
		zap.Int64("total_cents", q.Pricing.TotalCents),
		zap.Int64("deposit_cents", q.Pricing.DepositCents),
	)
	return q, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return s.transition(ctx, id, []Status{StatusPending}, StatusApproved)
}

// Confirm locks in an event after the deposit has been received. A
// confirmed quote accepts no further payments; the balance must be
// collected while the quote is deposit_paid.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return s.transition(ctx, id, []Status{StatusDepositPaid}, StatusConfirmed)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*Quote, error) {
	nonTerminal := []Status{StatusPending, StatusApproved, StatusDepositPaid, StatusConfirmed}
	return s.transition(ctx, id, nonTerminal, StatusCancelled)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, from []Status, to Status) (*Quote, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "TransitionQuote"),
		zap.String("quote_id", id.String()),
		zap.String("to_status", string(to)),
	)

	err := s.repo.UpdateStatus(ctx, id, from, to)
	if errors.Is(err, ErrStatusConflict) {
		// Re-read so the caller sees what the quote actually is now.
		current, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		log.Warn("transition rejected", zap.String("current_status", string(current.Status)))
		return nil, &InvalidTransitionError{Current: current.Status, Expected: from}
	}
	if err != nil {
		log.Error("failed to update quote status", zap.Error(err))
		return nil, err
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info("quote status updated", zap.String("status", string(q.Status)))
	return q, nil
}
