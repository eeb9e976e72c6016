// Package session enforces the outbound request budgets shared by every
// source adapter: a global per-session quota and per-domain pacing.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default budget values, overridable through configuration.
const (
	DefaultMaxRequests   = 50
	DefaultWindow        = 30 * time.Minute
	DefaultResetCooldown = time.Minute
)

// Limiter caps the total number of outbound requests in a rolling session
// window. The check and the increment happen under one lock so concurrent
// adapters cannot overshoot the ceiling.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	cooldown    time.Duration

	count       int
	windowStart time.Time
	lastReset   time.Time

	now func() time.Time // injectable for testing
}

// NewLimiter creates a session limiter. Non-positive arguments fall back to
// the package defaults.
func NewLimiter(maxRequests int, window, cooldown time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if cooldown <= 0 {
		cooldown = DefaultResetCooldown
	}
	l := &Limiter{
		maxRequests: maxRequests,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
	}
	l.windowStart = l.now()
	return l
}

// WithNow fixes the clock for testing.
func (l *Limiter) WithNow(now func() time.Time) *Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	l.windowStart = now()
	return l
}

// TryConsume atomically claims one request slot. It returns false when the
// session ceiling is reached, or when the window has elapsed but a reset is
// still inside the cooldown period (the prior counter state is kept).
func (l *Limiter) TryConsume() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.windowStart) > l.window {
		// A reset during cooldown is rejected outright to stop rapid
		// reset abuse from laundering extra requests.
		if now.Sub(l.lastReset) <= l.cooldown {
			return false
		}
		l.count = 0
		l.windowStart = now
		l.lastReset = now
		zap.L().Debug("session: request window reset")
	}

	if l.count >= l.maxRequests {
		return false
	}
	l.count++
	return true
}

// Used returns the number of slots consumed in the current window.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Remaining returns the number of slots left in the current window.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count >= l.maxRequests {
		return 0
	}
	return l.maxRequests - l.count
}
