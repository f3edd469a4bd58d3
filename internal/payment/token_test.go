package payment

import (
	"testing"
	"time"

	"oakfire-be/internal/quote"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTestQuote() *quote.Quote {
	return &quote.Quote{
		ID:            uuid.New(),
		Reference:     "CQ-20260815-120000-0042",
		CustomerEmail: "jordan@example.com",
		Pricing: quote.Pricing{
			TotalCents:   17655,
			DepositCents: 3531,
			BalanceCents: 14124,
		},
		Status: quote.StatusDepositPaid,
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	q := tokenTestQuote()

	token, err := issuer.Issue(q)
	require.NoError(t, err)

	claims, err := issuer.VerifyForQuote(token, q)
	require.NoError(t, err)

	assert.Equal(t, q.ID.String(), claims.QuoteID)
	assert.Equal(t, q.CustomerEmail, claims.CustomerEmail)
	assert.Equal(t, PurposeBalancePayment, claims.Purpose)
	assert.Equal(t, q.Pricing.BalanceCents, claims.AmountCents)
	assert.NotEmpty(t, claims.ID, "jti must be set for the single-use marker")
}

func TestTokenVerifyRejections(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	q := tokenTestQuote()

	t.Run("Garbage token", func(t *testing.T) {
		_, err := issuer.VerifyForQuote("not.a.jwt", q)

		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Wrong signing secret", func(t *testing.T) {
		forged, err := NewTokenIssuer("other-secret", time.Hour).Issue(q)
		require.NoError(t, err)

		_, err = issuer.VerifyForQuote(forged, q)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Expired token", func(t *testing.T) {
		expired, err := NewTokenIssuer("test-secret", -time.Minute).Issue(q)
		require.NoError(t, err)

		_, err = issuer.VerifyForQuote(expired, q)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("Token bound to a different quote", func(t *testing.T) {
		token, err := issuer.Issue(q)
		require.NoError(t, err)

		other := tokenTestQuote()
		other.ID = uuid.New()

		_, err = issuer.VerifyForQuote(token, other)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Token bound to a different customer", func(t *testing.T) {
		token, err := issuer.Issue(q)
		require.NoError(t, err)

		other := tokenTestQuote()
		other.ID = q.ID
		other.CustomerEmail = "someone.else@example.com"

		_, err = issuer.VerifyForQuote(token, other)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Email comparison is case-insensitive", func(t *testing.T) {
		token, err := issuer.Issue(q)
		require.NoError(t, err)

		upper := tokenTestQuote()
		upper.ID = q.ID
		upper.CustomerEmail = "JORDAN@Example.COM"

		_, err = issuer.VerifyForQuote(token, upper)
		assert.NoError(t, err)
	})

	t.Run("Repriced quote makes the token stale", func(t *testing.T) {
		token, err := issuer.Issue(q)
		require.NoError(t, err)

		repriced := tokenTestQuote()
		repriced.ID = q.ID
		repriced.Pricing.BalanceCents = 15000

		_, err = issuer.VerifyForQuote(token, repriced)
		assert.ErrorIs(t, err, ErrTokenStale)
	})

	t.Run("Balance drift within a cent still verifies", func(t *testing.T) {
		token, err := issuer.Issue(q)
		require.NoError(t, err)

		drifted := tokenTestQuote()
		drifted.ID = q.ID
		drifted.Pricing.BalanceCents = q.Pricing.BalanceCents + 1

		_, err = issuer.VerifyForQuote(token, drifted)
		assert.NoError(t, err)
	})
}

func TestTokenIssuerMissingSecret(t *testing.T) {
	issuer := NewTokenIssuer("", time.Hour)

	_, err := issuer.Issue(tokenTestQuote())
	assert.Error(t, err)
}
