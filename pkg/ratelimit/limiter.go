// Package ratelimit implements fixed-window request counting per client key
// over a pluggable Store.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Window is the state of one client's current window after an increment.
type Window struct {
	Start time.Time
	Count int
}

// Store owns the per-client windows. Increment must be atomic per key: two
// concurrent calls for the same key never observe the same count.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (Window, error)
	Reset(ctx context.Context, key string) error
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter struct {
	store  Store
	max    int
	window time.Duration
}

func New(store Store, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

func (l *Limiter) Max() int {
	return l.max
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow counts one request for key. The request that pushes the count past
// the maximum, and every later one in the same window, is rejected.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	w, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit window: %w", err)
	}

	remaining := l.max - w.Count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   w.Count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   w.Start.Add(l.window),
	}, nil
}

// Reset clears the window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
