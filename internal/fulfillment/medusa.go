package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"oakfire-be/internal/logger"

	"go.uber.org/zap"
)

type medusaGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewMedusaGateway talks to the Medusa admin API that owns order
// fulfillment.
func NewMedusaGateway(baseURL, apiKey string) Gateway {
	if apiKey == "" {
		logger.L().Warn("Medusa API key is empty")
	}

	return &medusaGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type medusaLineItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type medusaOrderPayload struct {
	Email         string           `json:"email"`
	QuoteID       string           `json:"quote_id"`
	QuoteRef      string           `json:"quote_reference"`
	PaymentPhase  string           `json:"payment_phase"`
	TransactionID string           `json:"transaction_id"`
	Amount        int64            `json:"amount"`
	CurrencyCode  string           `json:"currency_code"`
	GuestCount    int              `json:"guest_count"`
	EventDate     string           `json:"event_date"`
	Items         []medusaLineItem `json:"items"`
}

type medusaOrderEnvelope struct {
	Order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"order"`
	Message string `json:"message"`
}

func (g *medusaGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("quote_id", req.QuoteID),
		zap.String("phase", req.Phase),
		zap.Int64("amount_cents", req.AmountCents),
	)

	items := make([]medusaLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, medusaLineItem{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPriceCents,
		})
	}

	payload := medusaOrderPayload{
		Email:         req.CustomerEmail,
		QuoteID:       req.QuoteID,
		QuoteRef:      req.QuoteRef,
		PaymentPhase:  req.Phase,
		TransactionID: req.TransactionID,
		Amount:        req.AmountCents,
		CurrencyCode:  req.Currency,
		GuestCount:    req.GuestCount,
		EventDate:     req.EventDate.Format(time.RFC3339),
		Items:         items,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/admin/catering-orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("order creation request failed", zap.Error(err))
		return nil, fmt.Errorf("order creation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	var envelope medusaOrderEnvelope
	_ = json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := envelope.Message
		if msg == "" {
			msg = string(raw)
		}
		log.Error("order creation rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, fmt.Errorf("order creation rejected (%d): %s", resp.StatusCode, msg)
	}

	if envelope.Order.ID == "" {
		return nil, fmt.Errorf("order response missing order id")
	}

	log.Info("external order created", zap.String("order_id", envelope.Order.ID))

	return &Order{ID: envelope.Order.ID, Status: envelope.Order.Status}, nil
}
