package payment

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptRepository_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAttemptRepository(db)
	quoteID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_attempts`).
			WithArgs(quoteID, PhaseDeposit, "txn_123", AttemptPending).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

		id, dup, err := repo.Record(context.Background(), quoteID, PhaseDeposit, "txn_123")

		assert.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, int64(7), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate key returns no row", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_attempts`).
			WithArgs(quoteID, PhaseDeposit, "txn_123", AttemptPending).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, dup, err := repo.Record(context.Background(), quoteID, PhaseDeposit, "txn_123")

		assert.NoError(t, err)
		assert.True(t, dup)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_attempts`).
			WillReturnError(errors.New("connection reset"))

		_, _, err := repo.Record(context.Background(), quoteID, PhaseDeposit, "txn_123")

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAttemptRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAttemptRepository(db)
	quoteID := uuid.New()

	columns := []string{
		"id", "quote_id", "phase", "transaction_id",
		"order_id", "state", "fail_reason", "processed_at", "created_at",
	}

	t.Run("Succeeded attempt with order id", func(t *testing.T) {
		processed := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM payment_attempts`).
			WithArgs(quoteID, PhaseBalance, "txn_9").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(3), quoteID.String(), string(PhaseBalance), "txn_9",
				"order_abc", string(AttemptSucceeded), nil, processed, time.Now(),
			))

		a, err := repo.Get(context.Background(), quoteID, PhaseBalance, "txn_9")

		require.NoError(t, err)
		assert.Equal(t, int64(3), a.ID)
		assert.Equal(t, AttemptSucceeded, a.State)
		require.NotNil(t, a.OrderID)
		assert.Equal(t, "order_abc", *a.OrderID)
		assert.Nil(t, a.FailReason)
		require.NotNil(t, a.ProcessedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pending attempt has nullable fields unset", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM payment_attempts`).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(4), quoteID.String(), string(PhaseDeposit), "txn_10",
				nil, string(AttemptPending), nil, nil, time.Now(),
			))

		a, err := repo.Get(context.Background(), quoteID, PhaseDeposit, "txn_10")

		require.NoError(t, err)
		assert.Equal(t, AttemptPending, a.State)
		assert.Nil(t, a.OrderID)
		assert.Nil(t, a.ProcessedAt)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM payment_attempts`).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Get(context.Background(), quoteID, PhaseDeposit, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestAttemptRepository_MarkSucceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAttemptRepository(db)

	mock.ExpectExec(`UPDATE payment_attempts`).
		WithArgs(AttemptSucceeded, "order_abc", sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkSucceeded(context.Background(), 3, "order_abc")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAttemptRepository(db)

	t.Run("Marks a pending attempt failed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_attempts`).
			WithArgs(AttemptFailed, "order creation failed", sqlmock.AnyArg(), int64(3), AttemptSucceeded).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.MarkFailed(context.Background(), 3, "order creation failed")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Never downgrades a succeeded attempt", func(t *testing.T) {
		// The state filter leaves the succeeded row untouched.
		mock.ExpectExec(`UPDATE payment_attempts`).
			WithArgs(AttemptFailed, "status update failed", sqlmock.AnyArg(), int64(3), AttemptSucceeded).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.MarkFailed(context.Background(), 3, "status update failed")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
