package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// PaymentMetrics counts payment-pipeline outcomes. ReconciliationFailures
// in particular tracks payments that were captured but whose external
// order creation failed; it should stay at zero.
type PaymentMetrics struct {
	Processed              Counter
	Duplicates             Counter
	AmountMismatches       Counter
	ReconciliationFailures Counter
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{}
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
