package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDollarsToCents(t *testing.T) {
	t.Run("Exact", func(t *testing.T) {
		assert.Equal(t, int64(3000), DollarsToCents(30.00))
	})

	t.Run("Rounds float noise", func(t *testing.T) {
		// 149.99999999 from a float round-trip should land on 15000
		assert.Equal(t, int64(15000), DollarsToCents(149.999999999))
		assert.Equal(t, int64(1001), DollarsToCents(10.005))
	})

	t.Run("Zero", func(t *testing.T) {
		assert.Equal(t, int64(0), DollarsToCents(0))
	})
}

func TestCentsToDollars(t *testing.T) {
	assert.Equal(t, 150.0, CentsToDollars(15000))
	assert.Equal(t, 0.01, CentsToDollars(1))
}

func TestWithinCentTolerance(t *testing.T) {
	assert.True(t, WithinCentTolerance(3000, 3000, 1))
	assert.True(t, WithinCentTolerance(3000, 3001, 1))
	assert.True(t, WithinCentTolerance(3001, 3000, 1))
	assert.False(t, WithinCentTolerance(3000, 3002, 1))
	assert.False(t, WithinCentTolerance(3000, 2998, 1))
}

func TestGenerateQuoteReference(t *testing.T) {
	ref := GenerateQuoteReference()
	assert.True(t, strings.HasPrefix(ref, "CQ-"))
	// CQ-20060102-150405-NNNN
	assert.Len(t, ref, len("CQ-20060102-150405-0000"))
}

func TestAdminContext(t *testing.T) {
	ctx := SetAdminContext(context.Background(), 7, "ops@oakfire.test", "ADMIN")

	id, ok := GetAdminIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
	assert.Equal(t, "ops@oakfire.test", GetAdminEmailFromContext(ctx))
	assert.Equal(t, "ADMIN", GetAdminRoleFromContext(ctx))

	_, ok = GetAdminIDFromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, GetAdminRoleFromContext(context.Background()))
}
