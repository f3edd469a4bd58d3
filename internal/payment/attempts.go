package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AttemptRepository is the durable idempotency guard. The
// UNIQUE(quote_id, phase, transaction_id) constraint in Postgres is the
// source of truth; any cache in front of it is advisory.
type AttemptRepository interface {
	// Record inserts the attempt before any external side effect. A
	// conflict on the uniqueness constraint reports duplicate=true with
	// no new row.
	Record(ctx context.Context, quoteID uuid.UUID, phase Phase, transactionID string) (id int64, duplicate bool, err error)

	Get(ctx context.Context, quoteID uuid.UUID, phase Phase, transactionID string) (*Attempt, error)

	MarkSucceeded(ctx context.Context, id int64, orderID string) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

type attemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Record(
	ctx context.Context,
	quoteID uuid.UUID,
	phase Phase,
	transactionID string,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_attempts (quote_id, phase, transaction_id, state)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (quote_id, phase, transaction_id)
	DO NOTHING
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(ctx, q, quoteID, phase, transactionID, AttemptPending).Scan(&id)
	if err != nil {
		// Duplicate attempt, the prior record stands
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *attemptRepository) Get(
	ctx context.Context,
	quoteID uuid.UUID,
	phase Phase,
	transactionID string,
) (*Attempt, error) {

	row := r.db.QueryRowContext(ctx, `
		SELECT id, quote_id, phase, transaction_id, order_id, state, fail_reason, processed_at, created_at
		FROM payment_attempts
		WHERE quote_id = $1 AND phase = $2 AND transaction_id = $3
	`, quoteID, phase, transactionID)

	var (
		a           Attempt
		orderID     sql.NullString
		failReason  sql.NullString
		processedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.QuoteID, &a.Phase, &a.TransactionID, &orderID, &a.State, &failReason, &processedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if orderID.Valid {
		a.OrderID = &orderID.String
	}
	if failReason.Valid {
		a.FailReason = &failReason.String
	}
	if processedAt.Valid {
		t := processedAt.Time
		a.ProcessedAt = &t
	}
	return &a, nil
}

func (r *attemptRepository) MarkSucceeded(ctx context.Context, id int64, orderID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_attempts
		SET state = $1, order_id = $2, processed_at = $3
		WHERE id = $4
	`, AttemptSucceeded, orderID, time.Now(), id)
	return err
}

// MarkFailed never downgrades a succeeded record: a racing loser must
// not erase the winner's outcome.
func (r *attemptRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_attempts
		SET state = $1, fail_reason = $2, processed_at = $3
		WHERE id = $4 AND state <> $5
	`, AttemptFailed, reason, time.Now(), id, AttemptSucceeded)
	return err
}
