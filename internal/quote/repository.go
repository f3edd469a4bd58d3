package quote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"oakfire-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// UpdateStatus is a compare-and-swap: the row is updated only while
	// its status is one of from. Zero rows affected yields
	// ErrStatusConflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) error

	// SetDepositOrder advances pending|approved -> deposit_paid and
	// records the external deposit order id, exactly once.
	SetDepositOrder(ctx context.Context, id uuid.UUID, orderID string) error

	// SetBalanceOrder advances deposit_paid -> completed and records the
	// external balance order id, exactly once.
	SetBalanceOrder(ctx context.Context, id uuid.UUID, orderID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *repository) Create(ctx context.Context, q *Quote) error {
	event, err := json.Marshal(q.Event)
	if err != nil {
		return fmt.Errorf("failed to marshal event details: %w", err)
	}
	selections, err := json.Marshal(q.MenuSelections)
	if err != nil {
		return fmt.Errorf("failed to marshal menu selections: %w", err)
	}
	addons, err := json.Marshal(q.Addons)
	if err != nil {
		return fmt.Errorf("failed to marshal add-ons: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO catering_quotes (
			id,
			reference,
			customer_email,
			event_details,
			menu_selections,
			add_ons,
			subtotal_cents,
			tax_cents,
			delivery_fee_cents,
			total_cents,
			deposit_cents,
			balance_cents,
			status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		q.ID, q.Reference, q.CustomerEmail, event, selections, addons,
		q.Pricing.SubtotalCents, q.Pricing.TaxCents, q.Pricing.DeliveryFeeCents,
		q.Pricing.TotalCents, q.Pricing.DepositCents, q.Pricing.BalanceCents,
		q.Status,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, reference, customer_email, event_details, menu_selections, add_ons,
			subtotal_cents, tax_cents, delivery_fee_cents, total_cents, deposit_cents, balance_cents,
			status, medusa_order_id, balance_order_id, created_at, updated_at
		FROM catering_quotes WHERE id = $1
	`, id)

	var (
		q                        Quote
		event, selections, adds  []byte
		depositOrd, balanceOrd   sql.NullString
	)

	err := row.Scan(
		&q.ID, &q.Reference, &q.CustomerEmail, &event, &selections, &adds,
		&q.Pricing.SubtotalCents, &q.Pricing.TaxCents, &q.Pricing.DeliveryFeeCents,
		&q.Pricing.TotalCents, &q.Pricing.DepositCents, &q.Pricing.BalanceCents,
		&q.Status, &depositOrd, &balanceOrd, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(event, &q.Event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event details: %w", err)
	}
	if err := json.Unmarshal(selections, &q.MenuSelections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu selections: %w", err)
	}
	if err := json.Unmarshal(adds, &q.Addons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal add-ons: %w", err)
	}

	if depositOrd.Valid {
		q.DepositOrderID = &depositOrd.String
	}
	if balanceOrd.Valid {
		q.BalanceOrderID = &balanceOrd.String
	}

	// A snapshot that fails its own invariants must never feed a payment
	// comparison.
	if err := q.Pricing.Validate(); err != nil {
		logger.FromCtx(ctx).Error("loaded quote with corrupt pricing",
			zap.String("quote_id", q.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return &q, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE catering_quotes
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)
	`, to, id, pq.Array(statusStrings(from)))
	if err != nil {
		return err
	}
	return r.requireRow(ctx, res, id)
}

func (r *repository) SetDepositOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE catering_quotes
		SET status = $1, medusa_order_id = $2, updated_at = now()
		WHERE id = $3 AND status = ANY($4) AND medusa_order_id IS NULL
	`, StatusDepositPaid, orderID, id, pq.Array(statusStrings(DepositStatuses)))
	if err != nil {
		return err
	}
	return r.requireRow(ctx, res, id)
}

func (r *repository) SetBalanceOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE catering_quotes
		SET status = $1, balance_order_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4 AND balance_order_id IS NULL
	`, StatusCompleted, orderID, id, StatusDepositPaid)
	if err != nil {
		return err
	}
	return r.requireRow(ctx, res, id)
}

func (r *repository) requireRow(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		logger.FromCtx(ctx).Warn("quote CAS update matched no rows",
			zap.String("quote_id", id.String()),
		)
		return ErrStatusConflict
	}
	return nil
}
