package enrich

import "time"

// Budget is the wall-clock allowance for one enrichment batch. The
// orchestrator checks it before starting each facility; a facility
// whose enrichment is already in flight when the budget runs out is
// allowed to finish under its own adapter timeouts.
type Budget struct {
	deadline time.Time
	now      func() time.Time
}

// NewBudget starts a budget of the given duration measured from now.
func NewBudget(d time.Duration) *Budget {
	b := &Budget{now: time.Now}
	b.deadline = b.now().Add(d)
	return b
}

// WithNow swaps the clock. Test hook.
func (b *Budget) WithNow(now func() time.Time) *Budget {
	elapsed := b.deadline.Sub(b.now())
	b.now = now
	b.deadline = now().Add(elapsed)
	return b
}

// Remaining returns the time left, or zero once exhausted.
func (b *Budget) Remaining() time.Duration {
	if r := b.deadline.Sub(b.now()); r > 0 {
		return r
	}
	return 0
}

// Exhausted reports whether the deadline has passed.
func (b *Budget) Exhausted() bool {
	return b.Remaining() == 0
}
