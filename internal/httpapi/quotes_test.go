package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oakfire-be/internal/quote"
	"oakfire-be/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Create(ctx context.Context, input quote.CreateQuoteInput) (*quote.Quote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Quote), args.Error(1)
}

func (m *MockQuoteService) Get(ctx context.Context, id uuid.UUID) (*quote.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Quote), args.Error(1)
}

func (m *MockQuoteService) Approve(ctx context.Context, id uuid.UUID) (*quote.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Quote), args.Error(1)
}

func (m *MockQuoteService) Confirm(ctx context.Context, id uuid.UUID) (*quote.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Quote), args.Error(1)
}

func (m *MockQuoteService) Cancel(ctx context.Context, id uuid.UUID) (*quote.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Quote), args.Error(1)
}

func quoteTestRouter(svc quote.Service) http.Handler {
	return NewRouter(Handlers{
		Payments: NewPaymentHandler(nil),
		Quotes:   NewQuoteHandler(svc),
		Addons:   NewAddonHandler(nil),
		Auth:     NewAuthHandler(nil),
	})
}

func sampleQuote(status quote.Status) *quote.Quote {
	return &quote.Quote{
		ID:            uuid.New(),
		Reference:     "CQ-20260815-120000-0042",
		CustomerEmail: "host@example.com",
		Event: quote.EventDetails{
			Type:       quote.EventCorporate,
			Date:       time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC),
			GuestCount: 40,
		},
		Pricing: quote.Pricing{
			SubtotalCents:    64000,
			TaxCents:         5280,
			DeliveryFeeCents: 4000,
			TotalCents:       73280,
			DepositCents:     14656,
			BalanceCents:     58624,
		},
		Status: status,
	}
}

func TestPostQuote(t *testing.T) {
	body := []byte(`{
		"customerEmail": "host@example.com",
		"eventDetails": {
			"type": "corporate",
			"date": "2026-09-12T18:00:00Z",
			"guestCount": 40,
			"hungerLevel": "normal",
			"location": {"address": "400 Commerce St", "distanceMiles": 10}
		},
		"menuSelections": [{"proteinId": "brisket", "sideId": "mac", "quantity": 40}],
		"addOns": [{"addOnId": "banana-pudding", "quantity": 40}]
	}`)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockQuoteService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(input quote.CreateQuoteInput) bool {
			return input.CustomerEmail == "host@example.com" &&
				input.Event.GuestCount == 40 &&
				len(input.MenuSelections) == 1 &&
				input.Addons[0].AddonID == "banana-pudding"
		})).Return(sampleQuote(quote.StatusPending), nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader(body))
		quoteTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "pending", resp["status"])

		pricing := resp["pricing"].(map[string]interface{})
		assert.Equal(t, 732.80, pricing["total"])
		assert.Equal(t, 146.56, pricing["deposit"])
		assert.Equal(t, 586.24, pricing["balance"])
		svc.AssertExpectations(t)
	})

	t.Run("Validation error maps to 400", func(t *testing.T) {
		svc := new(MockQuoteService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, quote.ErrInvalidInput)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader(body))
		quoteTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQuoteTransitions(t *testing.T) {
	q := sampleQuote(quote.StatusApproved)

	adminCtx := func(r *http.Request) *http.Request {
		ctx := utils.SetAdminContext(r.Context(), 1, "pit@oakfirebbq.com", "ADMIN")
		return r.WithContext(ctx)
	}

	t.Run("Approve as admin", func(t *testing.T) {
		svc := new(MockQuoteService)
		svc.On("Approve", mock.Anything, q.ID).Return(q, nil)

		rec := httptest.NewRecorder()
		req := adminCtx(httptest.NewRequest(http.MethodPost, "/quotes/"+q.ID.String()+"/approve", nil))
		quoteTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Anonymous transition is forbidden", func(t *testing.T) {
		svc := new(MockQuoteService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/quotes/"+q.ID.String()+"/cancel", nil)
		quoteTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		svc.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("Transition conflict maps to 400", func(t *testing.T) {
		svc := new(MockQuoteService)
		svc.On("Confirm", mock.Anything, q.ID).Return(nil, &quote.InvalidTransitionError{
			Current:  quote.StatusPending,
			Expected: []quote.Status{quote.StatusDepositPaid},
		})

		rec := httptest.NewRecorder()
		req := adminCtx(httptest.NewRequest(http.MethodPost, "/quotes/"+q.ID.String()+"/confirm", nil))
		quoteTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		details := resp["details"].(map[string]interface{})
		assert.Equal(t, "pending", details["currentStatus"])
	})
}

func TestGetQuote(t *testing.T) {
	q := sampleQuote(quote.StatusDepositPaid)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockQuoteService)
		svc.On("Get", mock.Anything, q.ID).Return(q, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/quotes/"+q.ID.String(), nil)
		quoteTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, q.Reference, resp["reference"])
	})

	t.Run("Not found", func(t *testing.T) {
		svc := new(MockQuoteService)
		svc.On("Get", mock.Anything, mock.Anything).Return(nil, quote.ErrQuoteNotFound)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/quotes/"+uuid.New().String(), nil)
		quoteTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
