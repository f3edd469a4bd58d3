package kvstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Store is a shared key-value store injected into anything that would
// otherwise reach for a process-local map. In a multi-instance
// deployment it must be backed by Redis (or the database); the in-memory
// implementation exists for tests and single-node development.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX sets key only if it is absent and reports whether the write
	// happened. Used as an atomic claim (single-use token markers).
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareAndSwap replaces the value only if the current value equals
	// old. A missing key never matches.
	CompareAndSwap(ctx context.Context, key, old, new string, ttl time.Duration) (bool, error)
}
