// Package ratelimit implements per-client sliding-window rate limiting on
// top of a shared window store. The limiter holds no counter state of its
// own: the store is the single shared mutable resource, injected at
// construction so tests can substitute an in-memory fake.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prooflens/prooflens/internal/ratelimit/store"
)

// Policy is a per-route rate limit: at most Limit requests per trailing
// Window per client key.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one limiter check, derived fresh per call.
// Reset is the instant the oldest counted entry leaves the window.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides allow/deny per (route, client key) against a window store.
type Limiter struct {
	store    store.Store
	failOpen bool
	now      func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithFailOpen sets the direction taken when the window store is
// unreachable: true allows (availability over protection), false denies.
// The default is fail-closed.
func WithFailOpen(failOpen bool) Option {
	return func(l *Limiter) { l.failOpen = failOpen }
}

// withClock overrides the limiter's clock. Test hook.
func withClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter backed by the given window store.
func New(st store.Store, opts ...Option) *Limiter {
	l := &Limiter{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records the current request against (route, clientKey) and decides
// whether it is within policy. Every call consumes quota, denied calls
// included, so a throttled client hammering the gateway keeps pushing its
// reset time out.
//
// On store failure the returned error is non-nil and the decision follows
// the configured fail direction; the decision is always usable for headers.
func (l *Limiter) Check(ctx context.Context, route, clientKey string, p Policy) (Decision, error) {
	now := l.now()
	key := windowKey(route, clientKey)

	count, oldest, err := l.store.RecordAndCount(ctx, key, now, p.Window)
	if err != nil {
		return Decision{
			Allowed:   l.failOpen,
			Limit:     p.Limit,
			Remaining: 0,
			Reset:     now.Add(p.Window),
		}, fmt.Errorf("window store: %w", err)
	}

	remaining := p.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	reset := now.Add(p.Window)
	if !oldest.IsZero() {
		reset = oldest.Add(p.Window)
	}

	return Decision{
		Allowed:   count <= int64(p.Limit),
		Limit:     p.Limit,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// windowKey partitions counters by route first, so the same client on two
// routes never shares a window.
func windowKey(route, clientKey string) string {
	return "ratelimit:" + route + ":ip:" + clientKey
}
