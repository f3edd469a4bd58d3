package httpapi

import (
	"net/http"
	"time"

	"oakfire-be/internal/payment"
	"oakfire-be/internal/quote"

	"github.com/google/uuid"
)

type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type paymentResultDTO struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	PaymentIntent *struct {
		ID string `json:"id"`
	} `json:"paymentIntent,omitempty"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (d paymentResultDTO) toDomain() payment.PaymentResult {
	res := payment.PaymentResult{
		Success:       d.Success,
		TransactionID: d.TransactionID,
		Provider:      d.Provider,
		Error:         d.Error,
	}
	if d.PaymentIntent != nil {
		res.PaymentIntent = &payment.PaymentIntent{ID: d.PaymentIntent.ID}
	}
	return res
}

type depositRequestDTO struct {
	QuoteID       string           `json:"quoteId"`
	PaymentResult paymentResultDTO `json:"paymentResult"`
	Amount        float64          `json:"amount"`
	Currency      string           `json:"currency"`
}

type balanceRequestDTO struct {
	QuoteID       string           `json:"quoteId"`
	PaymentResult paymentResultDTO `json:"paymentResult"`
	Amount        float64          `json:"amount"`
	Currency      string           `json:"currency"`
	Token         string           `json:"token"`
}

type depositReceiptDTO struct {
	Success            bool      `json:"success"`
	OrderID            string    `json:"orderId"`
	QuoteID            string    `json:"quoteId"`
	Amount             float64   `json:"amount"`
	Currency           string    `json:"currency"`
	Status             string    `json:"status"`
	IsDuplicate        bool      `json:"isDuplicate"`
	BalancePaymentLink string    `json:"balancePaymentLink"`
	BalanceAmount      float64   `json:"balanceAmount"`
	EventDate          time.Time `json:"eventDate"`
}

type balanceReceiptDTO struct {
	Success        bool                    `json:"success"`
	OrderID        string                  `json:"orderId"`
	QuoteID        string                  `json:"quoteId"`
	Amount         float64                 `json:"amount"`
	Currency       string                  `json:"currency"`
	Status         string                  `json:"status"`
	IsDuplicate    bool                    `json:"isDuplicate"`
	TotalPaid      float64                 `json:"totalPaid"`
	DepositOrderID string                  `json:"depositOrderId"`
	BalanceOrderID string                  `json:"balanceOrderId"`
	EventDetails   quote.EventDetails      `json:"eventDetails"`
	Timeline       []payment.TimelineEntry `json:"timeline"`
}

type phaseStatusDTO struct {
	QuoteID   string  `json:"quoteId"`
	Phase     string  `json:"phase"`
	Status    string  `json:"status"`
	Paid      bool    `json:"paid"`
	OrderID   *string `json:"orderId"`
	AmountDue float64 `json:"amountDue"`
}

// PostDeposit handles POST /payments/deposit.
func (h *PaymentHandler) PostDeposit(w http.ResponseWriter, r *http.Request) {
	var dto depositRequestDTO
	if err := decodeBody(r, &dto); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	quoteID, err := uuid.Parse(dto.QuoteID)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quote id"})
		return
	}

	receipt, err := h.svc.ProcessDeposit(r.Context(), payment.DepositRequest{
		QuoteID:  quoteID,
		Result:   dto.PaymentResult.toDomain(),
		Amount:   dto.Amount,
		Currency: dto.Currency,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, depositReceiptDTO{
		Success:            true,
		OrderID:            receipt.OrderID,
		QuoteID:            receipt.QuoteID.String(),
		Amount:             receipt.Amount,
		Currency:           receipt.Currency,
		Status:             string(receipt.Status),
		IsDuplicate:        receipt.IsDuplicate,
		BalancePaymentLink: receipt.BalancePaymentLink,
		BalanceAmount:      receipt.BalanceAmount,
		EventDate:          receipt.EventDate,
	})
}

// PostBalance handles POST /payments/balance.
func (h *PaymentHandler) PostBalance(w http.ResponseWriter, r *http.Request) {
	var dto balanceRequestDTO
	if err := decodeBody(r, &dto); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	quoteID, err := uuid.Parse(dto.QuoteID)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quote id"})
		return
	}

	receipt, err := h.svc.ProcessBalance(r.Context(), payment.BalanceRequest{
		QuoteID:  quoteID,
		Result:   dto.PaymentResult.toDomain(),
		Amount:   dto.Amount,
		Currency: dto.Currency,
		Token:    dto.Token,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, balanceReceiptDTO{
		Success:        true,
		OrderID:        receipt.OrderID,
		QuoteID:        receipt.QuoteID.String(),
		Amount:         receipt.Amount,
		Currency:       receipt.Currency,
		Status:         string(receipt.Status),
		IsDuplicate:    receipt.IsDuplicate,
		TotalPaid:      receipt.TotalPaid,
		DepositOrderID: receipt.DepositOrderID,
		BalanceOrderID: receipt.BalanceOrderID,
		EventDetails:   receipt.Event,
		Timeline:       receipt.Timeline,
	})
}

// GetDepositStatus handles GET /payments/deposit?quoteId=...
func (h *PaymentHandler) GetDepositStatus(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(r.URL.Query().Get("quoteId"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quote id"})
		return
	}

	st, err := h.svc.DepositStatus(r.Context(), quoteID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toPhaseStatusDTO(st))
}

// GetBalanceStatus handles GET /payments/balance?quoteId=...&token=...
func (h *PaymentHandler) GetBalanceStatus(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(r.URL.Query().Get("quoteId"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid quote id"})
		return
	}

	st, err := h.svc.BalanceStatus(r.Context(), quoteID, r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toPhaseStatusDTO(st))
}

func toPhaseStatusDTO(st *payment.PhaseStatus) phaseStatusDTO {
	return phaseStatusDTO{
		QuoteID:   st.QuoteID.String(),
		Phase:     string(st.Phase),
		Status:    string(st.Status),
		Paid:      st.Paid,
		OrderID:   st.OrderID,
		AmountDue: st.AmountDue,
	}
}
