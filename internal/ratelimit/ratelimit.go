package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces out requests to a host with implicit rate limits.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelayLimiter enforces a minimum gap between consecutive actions.
// The first Wait after construction returns immediately.
type FixedDelayLimiter struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedDelayLimiter(delay time.Duration) *FixedDelayLimiter {
	return &FixedDelayLimiter{delay: delay}
}

func (l *FixedDelayLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastAction.IsZero() {
		if remaining := l.delay - time.Since(l.lastAction); remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(remaining):
			}
		}
	}

	l.lastAction = time.Now()
	return nil
}
