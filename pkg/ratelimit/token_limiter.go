package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter throttles consumption of a per-minute token budget. The window
// is fixed: the budget resets a minute after the first consumption in it.
type TokenLimiter struct {
	mu           sync.Mutex
	maxPerMinute int
	remaining    int
	windowStart  time.Time
}

// NewTokenLimiter creates a limiter with the given per-minute budget.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMinute: maxPerMinute,
		remaining:    maxPerMinute,
	}
}

// Wait blocks until tokens can be consumed from the current window or the
// context is done. Requests larger than the whole budget are allowed through
// on a fresh window rather than blocking forever.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		now := time.Now()
		if l.windowStart.IsZero() || now.Sub(l.windowStart) >= time.Minute {
			l.windowStart = now
			l.remaining = l.maxPerMinute
		}
		if tokens >= l.maxPerMinute && l.remaining == l.maxPerMinute {
			l.remaining = 0
			l.mu.Unlock()
			return nil
		}
		if tokens <= l.remaining {
			l.remaining -= tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Minute - now.Sub(l.windowStart)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.windowStart.IsZero() && time.Since(l.windowStart) >= time.Minute {
		return l.maxPerMinute
	}
	return l.remaining
}
