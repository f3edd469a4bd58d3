package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateQuoteReference builds a human-readable quote reference, e.g.
// CQ-20250114-093012-4821.
func GenerateQuoteReference() string {
	now := time.Now().UTC()

	datePart := now.Format("20060102-150405")

	// 4-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("CQ-%s-%04d", datePart, n.Int64())
}
