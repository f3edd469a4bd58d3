package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"oakfire-be/internal/logger"

	"go.uber.org/zap"
)

type webhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier posts confirmations to the mail service webhook.
// With an empty URL it degrades to log-only delivery.
func NewWebhookNotifier(url string) Notifier {
	return &webhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookPayload struct {
	Event         string `json:"event"`
	QuoteID       string `json:"quote_id"`
	QuoteRef      string `json:"quote_reference"`
	CustomerEmail string `json:"customer_email"`
	Phase         string `json:"phase"`
	AmountCents   int64  `json:"amount_cents"`
	OrderID       string `json:"order_id"`
	EventDate     string `json:"event_date"`
	BalanceLink   string `json:"balance_link,omitempty"`
}

func (n *webhookNotifier) PaymentConfirmed(ctx context.Context, note Notification) error {
	log := logger.FromCtx(ctx).With(
		zap.String("quote_id", note.QuoteID),
		zap.String("phase", note.Phase),
		zap.String("customer_email", note.CustomerEmail),
	)

	if n.url == "" {
		log.Info("payment confirmation (no webhook configured)")
		return nil
	}

	body, err := json.Marshal(webhookPayload{
		Event:         "payment_confirmed",
		QuoteID:       note.QuoteID,
		QuoteRef:      note.QuoteRef,
		CustomerEmail: note.CustomerEmail,
		Phase:         note.Phase,
		AmountCents:   note.AmountCents,
		OrderID:       note.OrderID,
		EventDate:     note.EventDate.Format(time.RFC3339),
		BalanceLink:   note.BalanceLink,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}
	return nil
}
