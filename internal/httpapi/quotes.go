package httpapi

import (
	"context"
	"net/http"
	"time"

	"oakfire-be/internal/quote"
	"oakfire-be/internal/utils"

	"github.com/google/uuid"
)

type QuoteHandler struct {
	svc quote.Service
}

func NewQuoteHandler(svc quote.Service) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

type menuSelectionDTO struct {
	ProteinID string `json:"proteinId"`
	SideID    string `json:"sideId"`
	Quantity  int    `json:"quantity"`
}

type addonSelectionDTO struct {
	AddonID  string `json:"addOnId"`
	Quantity int    `json:"quantity"`
}

type createQuoteDTO struct {
	CustomerEmail string `json:"customerEmail"`
	EventDetails  struct {
		Type        string    `json:"type"`
		Date        time.Time `json:"date"`
		GuestCount  int       `json:"guestCount"`
		HungerLevel string    `json:"hungerLevel"`
		Location    struct {
			Address       string  `json:"address"`
			DistanceMiles float64 `json:"distanceMiles"`
		} `json:"location"`
	} `json:"eventDetails"`
	MenuSelections []menuSelectionDTO  `json:"menuSelections"`
	Addons         []addonSelectionDTO `json:"addOns"`
}

type pricingDTO struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
	Deposit     float64 `json:"deposit"`
	Balance     float64 `json:"balance"`
}

type quoteDTO struct {
	ID             string             `json:"id"`
	Reference      string             `json:"reference"`
	CustomerEmail  string             `json:"customerEmail"`
	EventDetails   quote.EventDetails `json:"eventDetails"`
	Pricing        pricingDTO         `json:"pricing"`
	Status         string             `json:"status"`
	DepositOrderID *string            `json:"depositOrderId,omitempty"`
	BalanceOrderID *string            `json:"balanceOrderId,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func toQuoteDTO(q *quote.Quote) quoteDTO {
	return quoteDTO{
		ID:            q.ID.String(),
		Reference:     q.Reference,
		CustomerEmail: q.CustomerEmail,
		EventDetails:  q.Event,
		Pricing: pricingDTO{
			Subtotal:    utils.CentsToDollars(q.Pricing.SubtotalCents),
			Tax:         utils.CentsToDollars(q.Pricing.TaxCents),
			DeliveryFee: utils.CentsToDollars(q.Pricing.DeliveryFeeCents),
			Total:       utils.CentsToDollars(q.Pricing.TotalCents),
			Deposit:     utils.CentsToDollars(q.Pricing.DepositCents),
			Balance:     utils.CentsToDollars(q.Pricing.BalanceCents),
		},
		Status:         string(q.Status),
		DepositOrderID: q.DepositOrderID,
		BalanceOrderID: q.BalanceOrderID,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

// PostQuote handles POST /quotes.
func (h *QuoteHandler) PostQuote(w http.ResponseWriter, r *http.Request) {
	var dto createQuoteDTO
	if err := decodeBody(r, &dto); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	input := quote.CreateQuoteInput{
		CustomerEmail: dto.CustomerEmail,
		Event: quote.EventDetails{
			Type:        quote.EventType(dto.EventDetails.Type),
			Date:        dto.EventDetails.Date,
			GuestCount:  dto.EventDetails.GuestCount,
			HungerLevel: quote.HungerLevel(dto.EventDetails.HungerLevel),
			Location: quote.Location{
				Address:       dto.EventDetails.Location.Address,
				DistanceMiles: dto.EventDetails.Location.DistanceMiles,
			},
		},
	}
	for _, m := range dto.MenuSelections {
		input.MenuSelections = append(input.MenuSelections, quote.MenuSelection(m))
	}
	for _, a := range dto.Addons {
		input.Addons = append(input.Addons, quote.AddonSelection(a))
	}

	q, err := h.svc.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toQuoteDTO(q))
}

// GetQuote handles GET /quotes/{id}.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quote id"})
		return
	}

	q, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toQuoteDTO(q))
}

// Admin transitions. Each is POST /quotes/{id}/{action}.
func (h *QuoteHandler) PostApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Approve)
}

func (h *QuoteHandler) PostConfirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Confirm)
}

func (h *QuoteHandler) PostCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Cancel)
}

func (h *QuoteHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*quote.Quote, error),
) {
	if !requireAdmin(r) {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "admin access required"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quote id"})
		return
	}

	q, err := op(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toQuoteDTO(q))
}
