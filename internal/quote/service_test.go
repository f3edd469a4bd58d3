package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, q *Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Quote), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockRepository) SetDepositOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	args := m.Called(ctx, id, orderID)
	return args.Error(0)
}

func (m *MockRepository) SetBalanceOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	args := m.Called(ctx, id, orderID)
	return args.Error(0)
}

type MockPricer struct {
	mock.Mock
}

func (m *MockPricer) PriceList(ctx context.Context, ids []string) (map[string]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func validInput() CreateQuoteInput {
	return CreateQuoteInput{
		CustomerEmail: "Host@Example.com",
		Event: EventDetails{
			Type:        EventPrivate,
			Date:        time.Now().Add(21 * 24 * time.Hour),
			GuestCount:  60,
			HungerLevel: HungerPrettyHungry,
			Location:    Location{Address: "12 Ranch Rd", DistanceMiles: 5},
		},
		MenuSelections: []MenuSelection{{ProteinID: "ribs", SideID: "slaw", Quantity: 60}},
	}
}

func TestService_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		pricer := new(MockPricer)
		svc := NewService(repo, pricer, DefaultPricingConfig())

		repo.On("Create", mock.Anything, mock.AnythingOfType("*quote.Quote")).Return(nil)

		q, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)

		assert.Equal(t, StatusPending, q.Status)
		assert.Equal(t, "host@example.com", q.CustomerEmail)
		assert.NotEqual(t, uuid.Nil, q.ID)
		assert.NoError(t, q.Pricing.Validate())
		repo.AssertExpectations(t)
		// No add-ons selected, catalog never consulted.
		pricer.AssertNotCalled(t, "PriceList", mock.Anything, mock.Anything)
	})

	t.Run("Addon prices resolved", func(t *testing.T) {
		repo := new(MockRepository)
		pricer := new(MockPricer)
		svc := NewService(repo, pricer, DefaultPricingConfig())

		in := validInput()
		in.Addons = []AddonSelection{{AddonID: "cobbler", Quantity: 6}}

		pricer.On("PriceList", mock.Anything, []string{"cobbler"}).
			Return(map[string]int64{"cobbler": 900}, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*quote.Quote")).Return(nil)

		q, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
		assert.Greater(t, q.Pricing.SubtotalCents, int64(0))
		pricer.AssertExpectations(t)
	})

	t.Run("Validation failures", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockPricer), DefaultPricingConfig())

		cases := map[string]func(*CreateQuoteInput){
			"bad email":         func(in *CreateQuoteInput) { in.CustomerEmail = "nope" },
			"bad event type":    func(in *CreateQuoteInput) { in.Event.Type = "wedding" },
			"zero guests":       func(in *CreateQuoteInput) { in.Event.GuestCount = 0 },
			"too many guests":   func(in *CreateQuoteInput) { in.Event.GuestCount = 1001 },
			"no selections":     func(in *CreateQuoteInput) { in.MenuSelections = nil },
			"zero quantity":     func(in *CreateQuoteInput) { in.MenuSelections[0].Quantity = 0 },
			"missing address":   func(in *CreateQuoteInput) { in.Event.Location.Address = "" },
			"negative distance": func(in *CreateQuoteInput) { in.Event.Location.DistanceMiles = -1 },
		}

		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				in := validInput()
				mutate(&in)

				_, err := svc.Create(context.Background(), in)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("Repository error propagates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockPricer), DefaultPricingConfig())

		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := svc.Create(context.Background(), validInput())
		assert.Error(t, err)
	})
}

func TestService_Transitions(t *testing.T) {
	id := uuid.New()

	t.Run("Approve success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockPricer), DefaultPricingConfig())

		repo.On("UpdateStatus", mock.Anything, id, []Status{StatusPending}, StatusApproved).Return(nil)
		repo.On("GetByID", mock.Anything, id).Return(&Quote{ID: id, Status: StatusApproved, Pricing: validPricing()}, nil)

		q, err := svc.Approve(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, q.Status)
	})

	t.Run("Approve from wrong status", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockPricer), DefaultPricingConfig())

		repo.On("UpdateStatus", mock.Anything, id, []Status{StatusPending}, StatusApproved).Return(ErrStatusConflict)
		repo.On("GetByID", mock.Anything, id).Return(&Quote{ID: id, Status: StatusCancelled}, nil)

		_, err := svc.Approve(context.Background(), id)

		var tErr *InvalidTransitionError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, StatusCancelled, tErr.Current)
	})

	t.Run("Cancel allowed from any non-terminal", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockPricer), DefaultPricingConfig())

		expectedFrom := []Status{StatusPending, StatusApproved, StatusDepositPaid, StatusConfirmed}
		repo.On("UpdateStatus", mock.Anything, id, expectedFrom, StatusCancelled).Return(nil)
		repo.On("GetByID", mock.Anything, id).Return(&Quote{ID: id, Status: StatusCancelled}, nil)

		q, err := svc.Cancel(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, q.Status)
	})

	t.Run("Confirm requires deposit_paid", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockPricer), DefaultPricingConfig())

		repo.On("UpdateStatus", mock.Anything, id, []Status{StatusDepositPaid}, StatusConfirmed).Return(ErrStatusConflict)
		repo.On("GetByID", mock.Anything, id).Return(&Quote{ID: id, Status: StatusPending}, nil)

		_, err := svc.Confirm(context.Background(), id)

		var tErr *InvalidTransitionError
		assert.ErrorAs(t, err, &tErr)
	})
}
