// Package store provides window store backends for the sliding-window rate
// limiter: a Redis implementation shared across gateway instances and an
// in-memory implementation for tests and single-instance runs.
package store

import (
	"context"
	"time"
)

// Store records request timestamps per key and counts the ones still inside
// the trailing window. Implementations must make RecordAndCount atomic with
// respect to concurrent callers on the same key.
type Store interface {
	// RecordAndCount appends now to the key's window, drops entries at or
	// older than now-window, and returns the resulting count together with
	// the oldest retained timestamp. The recorded entry is never rolled
	// back: denied requests still count toward future windows.
	RecordAndCount(ctx context.Context, key string, now time.Time, window time.Duration) (count int64, oldest time.Time, err error)

	// CheckHealth reports whether the backend is reachable.
	CheckHealth(ctx context.Context) error
}
