package utils

import "math"

// DollarsToCents converts a client-submitted decimal dollar amount into
// integer cents, rounding half away from zero.
func DollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

// WithinCentTolerance reports whether two cent amounts differ by at most
// tol cents. Comparisons are done at cent scale so an off-by-a-cent
// underpayment is never absorbed by dollar-scale rounding.
func WithinCentTolerance(a, b, tol int64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tol
}
