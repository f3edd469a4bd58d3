package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"oakfire-be/internal/quote"
	"oakfire-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const PurposeBalancePayment = "balance_payment"

// BalanceTokenClaims is the signed payload mailed to the customer with
// their deposit confirmation. Verified statelessly; the jti backs the
// single-use marker.
type BalanceTokenClaims struct {
	QuoteID       string `json:"quote_id"`
	CustomerEmail string `json:"customer_email"`
	Purpose       string `json:"purpose"`
	AmountCents   int64  `json:"amount_cents"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *TokenIssuer) Issue(q *quote.Quote) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("balance token secret is not set")
	}

	claims := BalanceTokenClaims{
		QuoteID:       q.ID.String(),
		CustomerEmail: q.CustomerEmail,
		Purpose:       PurposeBalancePayment,
		AmountCents:   q.Pricing.BalanceCents,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) parse(tokenStr string) (*BalanceTokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&BalanceTokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return i.secret, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*BalanceTokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyForQuote validates signature and expiry, then binds the claims
// to the quote: id, customer email and purpose must match, and the
// embedded amount must still equal the current balance. A re-priced
// quote invalidates outstanding tokens as stale rather than accepting a
// wrong amount.
func (i *TokenIssuer) VerifyForQuote(tokenStr string, q *quote.Quote) (*BalanceTokenClaims, error) {
	claims, err := i.parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if claims.Purpose != PurposeBalancePayment {
		return nil, fmt.Errorf("%w: wrong purpose %q", ErrTokenInvalid, claims.Purpose)
	}
	if claims.QuoteID != q.ID.String() {
		return nil, fmt.Errorf("%w: token issued for a different quote", ErrTokenInvalid)
	}
	if !strings.EqualFold(claims.CustomerEmail, q.CustomerEmail) {
		return nil, fmt.Errorf("%w: token issued for a different customer", ErrTokenInvalid)
	}
	if !utils.WithinCentTolerance(claims.AmountCents, q.Pricing.BalanceCents, AmountToleranceCents) {
		return nil, ErrTokenStale
	}

	return claims, nil
}
