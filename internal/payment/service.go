package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"oakfire-be/internal/fulfillment"
	"oakfire-be/internal/kvstore"
	"oakfire-be/internal/logger"
	"oakfire-be/internal/metrics"
	"oakfire-be/internal/notify"
	"oakfire-be/internal/quote"
	"oakfire-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ProcessDeposit(ctx context.Context, req DepositRequest) (*DepositReceipt, error)
	ProcessBalance(ctx context.Context, req BalanceRequest) (*BalanceReceipt, error)

	DepositStatus(ctx context.Context, quoteID uuid.UUID) (*PhaseStatus, error)
	BalanceStatus(ctx context.Context, quoteID uuid.UUID, token string) (*PhaseStatus, error)
}

type service struct {
	quotes   quote.Repository
	attempts AttemptRepository
	gateway  fulfillment.Gateway
	tokens   *TokenIssuer
	notifier notify.Notifier
	cache    kvstore.Store
	metrics  *metrics.PaymentMetrics
	baseURL  string
}

func NewService(
	quotes quote.Repository,
	attempts AttemptRepository,
	gateway fulfillment.Gateway,
	tokens *TokenIssuer,
	notifier notify.Notifier,
	cache kvstore.Store,
	m *metrics.PaymentMetrics,
	publicBaseURL string,
) Service {
	return &service{
		quotes:   quotes,
		attempts: attempts,
		gateway:  gateway,
		tokens:   tokens,
		notifier: notifier,
		cache:    cache,
		metrics:  m,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
	}
}

const (
	// attemptCacheTTL bounds the Redis fast path. Postgres remains the
	// source of truth after expiry.
	attemptCacheTTL = 24 * time.Hour
	tokenUsedTTL    = 30 * 24 * time.Hour
)

func attemptCacheKey(quoteID uuid.UUID, phase Phase, txn string) string {
	return fmt.Sprintf("payment:done:%s:%s:%s", quoteID, phase, txn)
}

func tokenUsedKey(jti string) string {
	return "payment:token-used:" + jti
}

func (s *service) balanceLink(q *quote.Quote, token string) string {
	params := url.Values{}
	params.Set("quoteId", q.ID.String())
	params.Set("token", token)
	return s.baseURL + "/catering/balance?" + params.Encode()
}

func (s *service) ProcessDeposit(ctx context.Context, req DepositRequest) (*DepositReceipt, error) {
	timer := metrics.StartTimer()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProcessDeposit"),
		zap.String("quote_id", req.QuoteID.String()),
	)
	log.Info("deposit payment started")

	if err := VerifyCurrency(req.Currency); err != nil {
		return nil, err
	}

	q, err := s.quotes.GetByID(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}

	txn, err := VerifyResult(req.Result)
	if err != nil {
		log.Warn("deposit payment result rejected", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.String("transaction_id", txn))

	if err := VerifyAmount(PhaseDeposit, req.Amount, q.Pricing); err != nil {
		s.metrics.AmountMismatches.Inc()
		log.Warn("deposit amount rejected", zap.Error(err))
		return nil, err
	}

	// Idempotency: a completed attempt for this key short-circuits with
	// the prior result, before the state guard can object to the
	// already-advanced status.
	if receipt, ok := s.depositDuplicate(ctx, q, txn); ok {
		log.Info("duplicate deposit request short-circuited", zap.String("order_id", receipt.OrderID))
		return receipt, nil
	}

	attemptID, dup, err := s.attempts.Record(ctx, q.ID, PhaseDeposit, txn)
	if err != nil {
		return nil, err
	}
	if dup {
		prior, err := s.attempts.Get(ctx, q.ID, PhaseDeposit, txn)
		if err != nil {
			return nil, err
		}
		if prior.State == AttemptSucceeded && prior.OrderID != nil {
			s.metrics.Duplicates.Inc()
			return s.depositReceipt(q, *prior.OrderID, req, true)
		}
		if prior.State == AttemptPending {
			// A concurrent request holds this attempt. Only one caller
			// per transaction id may reach the order gateway.
			log.Warn("deposit attempt already in flight")
			return nil, ErrAttemptInFlight
		}
		// Only a failed attempt is retried, under its original id.
		attemptID = prior.ID
	}

	if !quote.CanAcceptDeposit(q.Status) {
		log.Warn("deposit rejected by status guard", zap.String("status", string(q.Status)))
		if err := s.attempts.MarkFailed(ctx, attemptID, fmt.Sprintf("status guard rejected status %s", q.Status)); err != nil {
			log.Error("failed to mark payment attempt failed", zap.Error(err))
		}
		return nil, &quote.InvalidTransitionError{Current: q.Status, Expected: quote.DepositStatuses}
	}

	order, err := s.gateway.CreateOrder(ctx, s.orderRequest(q, PhaseDeposit, q.Pricing.DepositCents, txn, req.Currency))
	if err != nil {
		return nil, s.reconciliationFailure(ctx, q, PhaseDeposit, txn, attemptID, err)
	}

	if err := s.quotes.SetDepositOrder(ctx, q.ID, order.ID); err != nil {
		return nil, s.reconciliationFailure(ctx, q, PhaseDeposit, txn, attemptID,
			fmt.Errorf("external order %s created but status update failed: %w", order.ID, err))
	}

	if err := s.attempts.MarkSucceeded(ctx, attemptID, order.ID); err != nil {
		// The quote already advanced; a retry will be absorbed by the
		// uniqueness constraint. Log and continue.
		log.Error("failed to mark payment attempt succeeded", zap.Error(err))
	}

	_ = s.cache.Set(ctx, attemptCacheKey(q.ID, PhaseDeposit, txn), order.ID, attemptCacheTTL)
	s.metrics.Processed.Inc()

	q.Status = quote.StatusDepositPaid
	q.DepositOrderID = &order.ID

	receipt, err := s.depositReceipt(q, order.ID, req, false)
	if err != nil {
		return nil, err
	}

	s.notifyBestEffort(ctx, q, PhaseDeposit, q.Pricing.DepositCents, order.ID, receipt.BalancePaymentLink)

	log.Info("deposit payment completed",
		zap.String("order_id", order.ID),
		zap.Duration("duration", timer.Duration()),
	)
	return receipt, nil
}

func (s *service) ProcessBalance(ctx context.Context, req BalanceRequest) (*BalanceReceipt, error) {
	timer := metrics.StartTimer()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProcessBalance"),
		zap.String("quote_id", req.QuoteID.String()),
	)
	log.Info("balance payment started")

	if err := VerifyCurrency(req.Currency); err != nil {
		return nil, err
	}

	q, err := s.quotes.GetByID(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}

	txn, err := VerifyResult(req.Result)
	if err != nil {
		log.Warn("balance payment result rejected", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.String("transaction_id", txn))

	if err := VerifyAmount(PhaseBalance, req.Amount, q.Pricing); err != nil {
		s.metrics.AmountMismatches.Inc()
		log.Warn("balance amount rejected", zap.Error(err))
		return nil, err
	}

	claims, err := s.tokens.VerifyForQuote(req.Token, q)
	if err != nil {
		log.Warn("balance token rejected", zap.Error(err))
		return nil, err
	}

	// Single-use: a consumed token is only honored again for the same
	// transaction id, which the idempotency guard then absorbs.
	if used, err := s.cache.Get(ctx, tokenUsedKey(claims.ID)); err == nil && used != txn {
		log.Warn("balance token already consumed by another transaction")
		return nil, fmt.Errorf("%w: token already used", ErrTokenInvalid)
	}

	if receipt, ok := s.balanceDuplicate(ctx, q, txn, req); ok {
		log.Info("duplicate balance request short-circuited", zap.String("order_id", receipt.OrderID))
		return receipt, nil
	}

	attemptID, dup, err := s.attempts.Record(ctx, q.ID, PhaseBalance, txn)
	if err != nil {
		return nil, err
	}
	if dup {
		prior, err := s.attempts.Get(ctx, q.ID, PhaseBalance, txn)
		if err != nil {
			return nil, err
		}
		if prior.State == AttemptSucceeded && prior.OrderID != nil {
			s.metrics.Duplicates.Inc()
			return s.balanceReceipt(q, *prior.OrderID, req, true), nil
		}
		if prior.State == AttemptPending {
			log.Warn("balance attempt already in flight")
			return nil, ErrAttemptInFlight
		}
		attemptID = prior.ID
	}

	if !quote.CanAcceptBalance(q.Status) {
		log.Warn("balance rejected by status guard", zap.String("status", string(q.Status)))
		if err := s.attempts.MarkFailed(ctx, attemptID, fmt.Sprintf("status guard rejected status %s", q.Status)); err != nil {
			log.Error("failed to mark payment attempt failed", zap.Error(err))
		}
		return nil, &quote.InvalidTransitionError{Current: q.Status, Expected: quote.BalanceStatuses}
	}

	// Claim the token for this transaction before any side effect. Two
	// racing submissions with the same token resolve here: only one
	// claim wins, and a lost claim is honored only when the stored
	// transaction id matches (a network retry).
	if ok, err := s.cache.SetNX(ctx, tokenUsedKey(claims.ID), txn, tokenUsedTTL); err == nil && !ok {
		if used, getErr := s.cache.Get(ctx, tokenUsedKey(claims.ID)); getErr != nil || used != txn {
			log.Warn("balance token claimed by a concurrent transaction")
			if err := s.attempts.MarkFailed(ctx, attemptID, "balance token claimed by a concurrent transaction"); err != nil {
				log.Error("failed to mark payment attempt failed", zap.Error(err))
			}
			return nil, fmt.Errorf("%w: token already used", ErrTokenInvalid)
		}
	}

	order, err := s.gateway.CreateOrder(ctx, s.orderRequest(q, PhaseBalance, q.Pricing.BalanceCents, txn, req.Currency))
	if err != nil {
		return nil, s.reconciliationFailure(ctx, q, PhaseBalance, txn, attemptID, err)
	}

	if err := s.quotes.SetBalanceOrder(ctx, q.ID, order.ID); err != nil {
		return nil, s.reconciliationFailure(ctx, q, PhaseBalance, txn, attemptID,
			fmt.Errorf("external order %s created but status update failed: %w", order.ID, err))
	}

	if err := s.attempts.MarkSucceeded(ctx, attemptID, order.ID); err != nil {
		log.Error("failed to mark payment attempt succeeded", zap.Error(err))
	}

	_ = s.cache.Set(ctx, attemptCacheKey(q.ID, PhaseBalance, txn), order.ID, attemptCacheTTL)
	s.metrics.Processed.Inc()

	q.Status = quote.StatusCompleted
	q.BalanceOrderID = &order.ID

	s.notifyBestEffort(ctx, q, PhaseBalance, q.Pricing.BalanceCents, order.ID, "")

	log.Info("balance payment completed",
		zap.String("order_id", order.ID),
		zap.Duration("duration", timer.Duration()),
	)
	return s.balanceReceipt(q, order.ID, req, false), nil
}

// depositDuplicate consults the Redis fast path only; the authoritative
// duplicate check happens against Postgres in Record.
func (s *service) depositDuplicate(ctx context.Context, q *quote.Quote, txn string) (*DepositReceipt, bool) {
	orderID, err := s.cache.Get(ctx, attemptCacheKey(q.ID, PhaseDeposit, txn))
	if err != nil {
		return nil, false
	}
	s.metrics.Duplicates.Inc()
	receipt, err := s.depositReceipt(q, orderID, DepositRequest{QuoteID: q.ID, Amount: utils.CentsToDollars(q.Pricing.DepositCents), Currency: "USD"}, true)
	if err != nil {
		return nil, false
	}
	return receipt, true
}

func (s *service) balanceDuplicate(ctx context.Context, q *quote.Quote, txn string, req BalanceRequest) (*BalanceReceipt, bool) {
	orderID, err := s.cache.Get(ctx, attemptCacheKey(q.ID, PhaseBalance, txn))
	if err != nil {
		return nil, false
	}
	s.metrics.Duplicates.Inc()
	return s.balanceReceipt(q, orderID, req, true), true
}

func (s *service) orderRequest(q *quote.Quote, phase Phase, amountCents int64, txn, currency string) fulfillment.OrderRequest {
	title := fmt.Sprintf("Catering %s payment for %s", phase, q.Reference)
	return fulfillment.OrderRequest{
		QuoteID:       q.ID.String(),
		QuoteRef:      q.Reference,
		CustomerEmail: q.CustomerEmail,
		Phase:         string(phase),
		AmountCents:   amountCents,
		Currency:      strings.ToUpper(currency),
		TransactionID: txn,
		GuestCount:    q.Event.GuestCount,
		EventDate:     q.Event.Date,
		Items:         []fulfillment.LineItem{{Title: title, Quantity: 1, UnitPriceCents: amountCents}},
	}
}

// reconciliationFailure handles the one failure mode that loses money if
// dropped: the charge succeeded but fulfillment did not. The quote
// status is left unadvanced and the full key set is logged for manual
// follow-up.
func (s *service) reconciliationFailure(ctx context.Context, q *quote.Quote, phase Phase, txn string, attemptID int64, cause error) error {
	s.metrics.ReconciliationFailures.Inc()

	logger.FromCtx(ctx).Error("payment captured but order creation failed",
		zap.String("quote_id", q.ID.String()),
		zap.String("quote_reference", q.Reference),
		zap.String("phase", string(phase)),
		zap.String("transaction_id", txn),
		zap.Int64("amount_cents", phaseAmount(q.Pricing, phase)),
		zap.Error(cause),
	)

	if err := s.attempts.MarkFailed(ctx, attemptID, cause.Error()); err != nil {
		logger.FromCtx(ctx).Error("failed to mark payment attempt failed", zap.Error(err))
	}

	return fmt.Errorf("%w: %v", ErrOrderCreation, cause)
}

func phaseAmount(p quote.Pricing, phase Phase) int64 {
	if phase == PhaseDeposit {
		return p.DepositCents
	}
	return p.BalanceCents
}

func (s *service) notifyBestEffort(ctx context.Context, q *quote.Quote, phase Phase, amountCents int64, orderID, balanceLink string) {
	err := s.notifier.PaymentConfirmed(ctx, notify.Notification{
		QuoteID:       q.ID.String(),
		QuoteRef:      q.Reference,
		CustomerEmail: q.CustomerEmail,
		Phase:         string(phase),
		AmountCents:   amountCents,
		OrderID:       orderID,
		EventDate:     q.Event.Date,
		BalanceLink:   balanceLink,
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("payment confirmation delivery failed",
			zap.String("quote_id", q.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) depositReceipt(q *quote.Quote, orderID string, req DepositRequest, duplicate bool) (*DepositReceipt, error) {
	token, err := s.tokens.Issue(q)
	if err != nil {
		return nil, fmt.Errorf("failed to issue balance token: %w", err)
	}

	status := q.Status
	if !duplicate {
		status = quote.StatusDepositPaid
	}

	return &DepositReceipt{
		OrderID:            orderID,
		QuoteID:            q.ID,
		Amount:             req.Amount,
		Currency:           strings.ToUpper(req.Currency),
		Status:             status,
		IsDuplicate:        duplicate,
		BalancePaymentLink: s.balanceLink(q, token),
		BalanceAmount:      utils.CentsToDollars(q.Pricing.BalanceCents),
		EventDate:          q.Event.Date,
	}, nil
}

func (s *service) balanceReceipt(q *quote.Quote, orderID string, req BalanceRequest, duplicate bool) *BalanceReceipt {
	depositOrderID := ""
	if q.DepositOrderID != nil {
		depositOrderID = *q.DepositOrderID
	}

	// On a retry the quote already completed and updated_at is the real
	// completion time; stamping time.Now() would drift per retry.
	completedAt := time.Now()
	if duplicate {
		completedAt = q.UpdatedAt
	}

	timeline := []TimelineEntry{
		{Status: string(quote.StatusPending), At: q.CreatedAt},
		{Status: string(quote.StatusDepositPaid), At: q.UpdatedAt},
		{Status: string(quote.StatusCompleted), At: completedAt},
	}

	return &BalanceReceipt{
		OrderID:        orderID,
		QuoteID:        q.ID,
		Amount:         req.Amount,
		Currency:       strings.ToUpper(req.Currency),
		Status:         quote.StatusCompleted,
		IsDuplicate:    duplicate,
		TotalPaid:      utils.CentsToDollars(q.Pricing.TotalCents),
		DepositOrderID: depositOrderID,
		BalanceOrderID: orderID,
		Event:          q.Event,
		Timeline:       timeline,
	}
}

func (s *service) DepositStatus(ctx context.Context, quoteID uuid.UUID) (*PhaseStatus, error) {
	q, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	paid := q.Status == quote.StatusDepositPaid ||
		q.Status == quote.StatusConfirmed ||
		q.Status == quote.StatusCompleted

	return &PhaseStatus{
		QuoteID:   q.ID,
		Phase:     PhaseDeposit,
		Status:    q.Status,
		Paid:      paid,
		OrderID:   q.DepositOrderID,
		AmountDue: utils.CentsToDollars(q.Pricing.DepositCents),
	}, nil
}

func (s *service) BalanceStatus(ctx context.Context, quoteID uuid.UUID, token string) (*PhaseStatus, error) {
	q, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if _, err := s.tokens.VerifyForQuote(token, q); err != nil {
		return nil, err
	}

	return &PhaseStatus{
		QuoteID:   q.ID,
		Phase:     PhaseBalance,
		Status:    q.Status,
		Paid:      q.Status == quote.StatusCompleted,
		OrderID:   q.BalanceOrderID,
		AmountDue: utils.CentsToDollars(q.Pricing.BalanceCents),
	}, nil
}
