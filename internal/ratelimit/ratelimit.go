// Package ratelimit spaces outbound LLM API calls to stay inside a
// requests-per-minute quota. A single shared limiter is injected into
// every client that talks to the API; there is no global state.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter grants call slots spaced evenly across a per-minute quota.
// Grants are serialized: under concurrency, callers queue on the mutex
// and each departs one interval after the previous grant.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// New builds a Limiter for the given requests-per-minute quota.
// rpm <= 0 disables limiting.
func New(rpm int) *Limiter {
	if rpm <= 0 {
		return &Limiter{}
	}
	return &Limiter{interval: time.Minute / time.Duration(rpm)}
}

// Acquire blocks until the caller may proceed or ctx is done. The slot
// is consumed even when the subsequent API call fails; failed calls
// still count against the quota.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.interval == 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	wait := l.interval - now.Sub(l.last)
	if wait <= 0 {
		l.last = now
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		l.last = time.Now()
		return nil
	}
}
