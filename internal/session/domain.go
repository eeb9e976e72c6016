package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Per-domain pacing defaults.
const (
	DefaultMinDelay     = 6 * time.Second
	DefaultPerMinute    = 10
	domainHistoryWindow = time.Minute
)

// DomainLimiter paces requests to individual domains: a minimum delay
// between consecutive requests, and a sliding-window per-minute ceiling.
type DomainLimiter struct {
	mu        sync.Mutex
	minDelay  time.Duration
	perMinute int
	limiters  map[string]*rate.Limiter
	history   map[string][]time.Time

	now func() time.Time // injectable for testing
}

// NewDomainLimiter creates a per-domain limiter. Non-positive arguments fall
// back to the package defaults.
func NewDomainLimiter(minDelay time.Duration, perMinute int) *DomainLimiter {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	return &DomainLimiter{
		minDelay:  minDelay,
		perMinute: perMinute,
		limiters:  make(map[string]*rate.Limiter),
		history:   make(map[string][]time.Time),
		now:       time.Now,
	}
}

// WithNow fixes the clock used by the sliding window for testing. The
// minimum-delay limiter still runs on the wall clock.
func (d *DomainLimiter) WithNow(now func() time.Time) *DomainLimiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
	return d
}

// Allow records a request against the domain's sliding per-minute window.
// Entries older than the window are purged before the ceiling is evaluated.
func (d *DomainLimiter) Allow(domain string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	kept := d.history[domain][:0]
	for _, t := range d.history[domain] {
		if now.Sub(t) < domainHistoryWindow {
			kept = append(kept, t)
		}
	}

	if len(kept) >= d.perMinute {
		d.history[domain] = kept
		return false
	}

	d.history[domain] = append(kept, now)
	return true
}

// EnforceDelay blocks until the minimum inter-request delay for the domain
// has elapsed. Waiting here is expected behavior, not a failure; the only
// error returned is context cancellation.
func (d *DomainLimiter) EnforceDelay(ctx context.Context, domain string) error {
	d.mu.Lock()
	lim, ok := d.limiters[domain]
	if !ok {
		lim = rate.NewLimiter(rate.Every(d.minDelay), 1)
		d.limiters[domain] = lim
	}
	d.mu.Unlock()

	return lim.Wait(ctx)
}
