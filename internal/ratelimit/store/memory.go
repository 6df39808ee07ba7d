package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store.
//
// It keeps an ascending slice of timestamps per key under a single mutex and
// optionally runs a background cleanup goroutine to drop keys that have gone
// quiet. Suitable for tests and single-instance runs; distributed
// deployments use RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]int64 // unix milliseconds, ascending
}

// NewMemory creates a MemoryStore.
//
// ctx bounds the lifetime of the background cleanup goroutine;
// cleanupInterval 0 disables cleanup.
func NewMemory(ctx context.Context, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string][]int64),
	}

	if cleanupInterval > 0 {
		go s.runCleanup(ctx, cleanupInterval)
	}

	return s
}

// RecordAndCount appends now to the key's window and counts entries newer
// than now-window, all under one lock.
func (s *MemoryStore) RecordAndCount(ctx context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	nowMs := now.UnixMilli()
	cutoff := nowMs - window.Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := s.windows[key]
	start := 0
	for start < len(stamps) && stamps[start] <= cutoff {
		start++
	}
	stamps = append(stamps[start:len(stamps):len(stamps)], nowMs)
	s.windows[key] = stamps

	return int64(len(stamps)), time.UnixMilli(stamps[0]), nil
}

// CheckHealth always succeeds for the in-memory backend.
func (s *MemoryStore) CheckHealth(ctx context.Context) error {
	return nil
}

// runCleanup periodically drops keys whose newest entry is stale. A key is
// considered stale after 10 cleanup intervals without a hit, mirroring the
// TTL behavior of the Redis backend.
func (s *MemoryStore) runCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	staleThreshold := (interval * 10).Milliseconds()

	for {
		select {
		case <-ticker.C:
			nowMs := time.Now().UnixMilli()
			s.mu.Lock()
			for key, stamps := range s.windows {
				if len(stamps) == 0 || nowMs-stamps[len(stamps)-1] > staleThreshold {
					delete(s.windows, key)
				}
			}
			s.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
