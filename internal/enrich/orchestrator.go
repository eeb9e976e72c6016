package enrich

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/source"
)

// DefaultAdapterTimeout bounds one provider lookup.
const DefaultAdapterTimeout = 8 * time.Second

// Orchestrator fans a facility out to every configured source, waits
// for all of them, then merges the results under the policy. Facilities
// in a batch are processed sequentially; adapters within one facility
// run in parallel.
type Orchestrator struct {
	policy         *Policy
	sources        []source.Source
	adapterTimeout time.Duration
	log            *zap.Logger
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithAdapterTimeout overrides the per-lookup timeout.
func WithAdapterTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.adapterTimeout = d }
}

// NewOrchestrator creates an orchestrator. Sources whose name is not
// in the policy precedence never contribute to a merge, so passing one
// is a wiring mistake.
func NewOrchestrator(policy *Policy, sources []source.Source, opts ...Option) (*Orchestrator, error) {
	if policy == nil {
		return nil, eris.New("enrich: nil policy")
	}
	if err := policy.Validate(); err != nil {
		return nil, eris.Wrap(err, "enrich: policy")
	}
	ranked := make(map[string]bool, len(policy.Precedence))
	for _, name := range policy.Precedence {
		ranked[name] = true
	}
	for _, s := range sources {
		if !ranked[s.Name()] {
			return nil, eris.Errorf("enrich: source %q missing from precedence order", s.Name())
		}
	}

	o := &Orchestrator{
		policy:         policy,
		sources:        sources,
		adapterTimeout: DefaultAdapterTimeout,
		log:            zap.L().With(zap.String("component", "orchestrator")),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// EnrichBatch enriches each facility in order while the budget lasts.
// Once the budget is exhausted the remaining facilities come back
// unenriched; partial completion is the contract, not an error.
func (o *Orchestrator) EnrichBatch(ctx context.Context, facilities []*model.Facility, budget *Budget) ([]model.EnrichmentOutcome, error) {
	if budget == nil {
		return nil, eris.New("enrich: nil budget")
	}

	outcomes := make([]model.EnrichmentOutcome, 0, len(facilities))
	for _, fac := range facilities {
		if budget.Exhausted() || ctx.Err() != nil {
			o.log.Info("budget exhausted, returning remainder unenriched",
				zap.Int("done", len(outcomes)),
				zap.Int("total", len(facilities)))
			outcomes = append(outcomes, unenriched(fac))
			continue
		}
		outcomes = append(outcomes, o.enrichOne(ctx, fac))
	}
	return outcomes, nil
}

func (o *Orchestrator) enrichOne(ctx context.Context, fac *model.Facility) model.EnrichmentOutcome {
	if fac.Name == "" {
		return unenriched(fac)
	}

	start := time.Now()
	results := make(map[string]*model.SourceResult, len(o.sources))
	var mu sync.Mutex

	// Wait for every adapter before merging so precedence, not
	// completion order, decides the outcome.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(o.sources))
	for _, s := range o.sources {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, o.adapterTimeout)
			defer cancel()

			res, err := s.Lookup(actx, fac)
			if err != nil {
				if errors.Is(err, source.ErrComplianceBlocked) || errors.Is(err, source.ErrSessionBudget) {
					o.log.Info("source skipped",
						zap.String("source", s.Name()),
						zap.String("reason", err.Error()))
				} else {
					o.log.Warn("source lookup failed",
						zap.String("source", s.Name()),
						zap.Error(err))
				}
				return nil
			}
			if res.Empty() {
				return nil
			}
			mu.Lock()
			results[s.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck

	used := mergeResults(fac, results, o.policy.Precedence)

	confidence := 0.0
	for _, name := range used {
		confidence += results[name].Weight
	}
	if confidence > 1 {
		confidence = 1
	}
	tier := o.policy.TierFor(QualityScore(fac, len(used)))

	o.log.Debug("facility enriched",
		zap.String("place_id", fac.PlaceID),
		zap.Strings("sources", used),
		zap.Float64("confidence", confidence),
		zap.String("tier", string(tier)),
		zap.Duration("took", time.Since(start)))

	return model.EnrichmentOutcome{
		Facility:        *fac,
		SourcesUsed:     used,
		ConfidenceScore: confidence,
		QualityTier:     tier,
	}
}

// unenriched wraps a provisional facility that was never sent to any
// source.
func unenriched(fac *model.Facility) model.EnrichmentOutcome {
	return model.EnrichmentOutcome{
		Facility:    *fac,
		QualityTier: model.TierPoor,
	}
}
