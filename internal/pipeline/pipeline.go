// Package pipeline wires search, enrichment, and persistence into the
// end-to-end facility-finding flow.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/compliance"
	"github.com/justlist/facility-finder/internal/config"
	"github.com/justlist/facility-finder/internal/enrich"
	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
	"github.com/justlist/facility-finder/internal/source"
	"github.com/justlist/facility-finder/internal/store"
	"github.com/justlist/facility-finder/pkg/foursquare"
	"github.com/justlist/facility-finder/pkg/overpass"
	"github.com/justlist/facility-finder/pkg/places"
	"github.com/justlist/facility-finder/pkg/yelp"
)

// maxSearchPages caps text-search pagination; the provider serves at
// most three pages of twenty.
const maxSearchPages = 3

// pageTokenDelay is how long a next-page token takes to become valid
// on the provider side.
const pageTokenDelay = 2 * time.Second

// Result is one completed run with its per-facility outcomes.
type Result struct {
	Run      *model.Run                `json:"run"`
	Outcomes []model.EnrichmentOutcome `json:"outcomes"`
}

// Pipeline executes search runs. Safe for concurrent use; the session
// and domain limiters are shared across runs.
type Pipeline struct {
	cfg     *config.Config
	store   store.Store
	places  places.Client
	yelp    yelp.Client
	fsq     foursquare.Client
	osm     overpass.Client
	sess    *session.Limiter
	domains *session.DomainLimiter
	gate    *compliance.Gate
	policy  *enrich.Policy
	log     *zap.Logger

	// tokenDelay is swappable so tests do not wait out the real
	// provider pause.
	tokenDelay time.Duration
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithPlacesClient overrides the primary search client.
func WithPlacesClient(c places.Client) Option {
	return func(p *Pipeline) { p.places = c }
}

// WithYelpClient overrides the Yelp client.
func WithYelpClient(c yelp.Client) Option {
	return func(p *Pipeline) { p.yelp = c }
}

// WithFoursquareClient overrides the Foursquare client.
func WithFoursquareClient(c foursquare.Client) Option {
	return func(p *Pipeline) { p.fsq = c }
}

// WithOverpassClient overrides the Overpass client.
func WithOverpassClient(c overpass.Client) Option {
	return func(p *Pipeline) { p.osm = c }
}

// WithTokenDelay overrides the pagination token pause.
func WithTokenDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.tokenDelay = d }
}

// New builds a pipeline from configuration. The primary provider key
// is mandatory; secondary sources without credentials are skipped
// silently at fan-out time.
func New(cfg *config.Config, st store.Store, opts ...Option) (*Pipeline, error) {
	if cfg.Places.Key == "" {
		return nil, eris.New("pipeline: places api key is required")
	}

	policy, err := enrich.LoadPolicy(cfg.Enrich.PolicyFile)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load policy")
	}

	domains := session.NewDomainLimiter(cfg.Domain.MinDelay(), cfg.Domain.PerMinute)

	p := &Pipeline{
		cfg:     cfg,
		store:   st,
		places:  places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL)),
		sess:    session.NewLimiter(cfg.Session.MaxRequests, cfg.Session.Window(), cfg.Session.Cooldown()),
		domains: domains,
		gate: compliance.NewGate(
			compliance.WithDomainLimiter(domains),
			compliance.WithUserAgent(cfg.Compliance.UserAgent),
		),
		policy:     policy,
		log:        zap.L().With(zap.String("component", "pipeline")),
		tokenDelay: pageTokenDelay,
	}
	if cfg.Yelp.Key != "" {
		p.yelp = yelp.NewClient(cfg.Yelp.Key, yelp.WithBaseURL(cfg.Yelp.BaseURL))
	}
	if cfg.Foursquare.Key != "" {
		p.fsq = foursquare.NewClient(cfg.Foursquare.Key, foursquare.WithBaseURL(cfg.Foursquare.BaseURL))
	}
	if cfg.Overpass.Enabled {
		p.osm = overpass.NewClient(overpass.WithBaseURL(cfg.Overpass.BaseURL))
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Run executes one search: find facilities, enrich them under the
// batch budget, persist the run and its leads.
func (p *Pipeline) Run(ctx context.Context, query model.SearchQuery) (*Result, error) {
	query = query.Sanitize()
	if err := query.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: query")
	}

	run, err := p.store.CreateRun(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	p.log.Info("run started",
		zap.String("run_id", run.ID),
		zap.String("query", query.Text()))

	facilities, err := p.search(ctx, query)
	if err != nil {
		p.failRun(ctx, run.ID)
		return nil, eris.Wrap(err, "pipeline: search")
	}

	outcomes, err := p.Enrich(ctx, facilities, query.Location())
	if err != nil {
		p.failRun(ctx, run.ID)
		return nil, err
	}

	if _, err := p.store.SaveLeads(ctx, run.ID, outcomes); err != nil {
		p.failRun(ctx, run.ID)
		return nil, eris.Wrap(err, "pipeline: save leads")
	}
	if err := p.store.UpdateRunStatus(ctx, run.ID, model.RunCompleted, len(outcomes)); err != nil {
		return nil, eris.Wrap(err, "pipeline: complete run")
	}

	run.Status = model.RunCompleted
	run.FacilityCount = len(outcomes)
	p.log.Info("run completed",
		zap.String("run_id", run.ID),
		zap.Int("facilities", len(outcomes)))
	return &Result{Run: run, Outcomes: outcomes}, nil
}

// Enrich fans the facilities out to every available source under the
// configured batch budget. Exposed separately so pre-existing records
// can be enriched without a fresh search.
func (p *Pipeline) Enrich(ctx context.Context, facilities []*model.Facility, location string) ([]model.EnrichmentOutcome, error) {
	orch, err := enrich.NewOrchestrator(p.policy, p.buildSources(location),
		enrich.WithAdapterTimeout(p.cfg.Enrich.AdapterTimeout()))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: orchestrator")
	}
	outcomes, err := orch.EnrichBatch(ctx, facilities, enrich.NewBudget(p.cfg.Enrich.BatchBudget()))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: enrich")
	}
	return outcomes, nil
}

// search pages through the text-search results up to the requested
// maximum, mapping each hit to a provisional facility.
func (p *Pipeline) search(ctx context.Context, query model.SearchQuery) ([]*model.Facility, error) {
	var facilities []*model.Facility
	seen := make(map[string]bool)

	pageToken := ""
	for page := 0; page < maxSearchPages; page++ {
		if page > 0 {
			// The provider rejects a next-page token used too soon.
			select {
			case <-time.After(p.tokenDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if !p.sess.TryConsume() {
			p.log.Warn("session budget reached during search",
				zap.Int("collected", len(facilities)))
			break
		}

		resp, err := p.places.TextSearch(ctx, query.Text(), pageToken)
		if err != nil {
			return nil, err
		}
		for i := range resp.Results {
			place := &resp.Results[i]
			if place.PlaceID == "" || seen[place.PlaceID] {
				continue
			}
			seen[place.PlaceID] = true
			facilities = append(facilities, provisionalFacility(place))
			if len(facilities) >= query.MaxResults {
				return facilities, nil
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return facilities, nil
}

// buildSources assembles the adapter set for one run, dropping
// secondary sources that have no credential.
func (p *Pipeline) buildSources(location string) []source.Source {
	sources := []source.Source{
		source.NewPlaces(p.places, p.sess, p.policy.Weight("places")),
	}
	if p.yelp != nil {
		sources = append(sources, source.NewYelp(p.yelp, p.sess, location, p.policy.Weight("yelp")))
	}
	if p.fsq != nil {
		sources = append(sources, source.NewFoursquare(p.fsq, p.sess, location, p.policy.Weight("foursquare")))
	}
	if p.osm != nil {
		sources = append(sources, source.NewOSM(p.osm, p.sess, p.policy.Weight("osm")))
	}
	sources = append(sources, source.NewWebsite(p.gate, p.domains, p.sess, p.policy.Weight("website"),
		source.WithWebsiteUserAgent(p.cfg.Compliance.UserAgent)))
	return sources
}

func (p *Pipeline) failRun(ctx context.Context, runID string) {
	if err := p.store.UpdateRunStatus(ctx, runID, model.RunFailed, 0); err != nil {
		p.log.Warn("mark run failed", zap.String("run_id", runID), zap.Error(err))
	}
}

// provisionalFacility maps a text-search hit to the minimal record the
// orchestrator starts from.
func provisionalFacility(place *places.Place) *model.Facility {
	fac := &model.Facility{
		PlaceID:          place.PlaceID,
		Name:             place.Name,
		FormattedAddress: place.FormattedAddress,
		Vicinity:         place.Vicinity,
		Rating:           place.Rating,
		UserRatingsTotal: place.UserRatingsTotal,
		PriceLevel:       place.PriceLevel,
		BusinessStatus:   place.BusinessStatus,
		Types:            place.Types,
	}
	if place.Geometry != nil {
		fac.Latitude = place.Geometry.Location.Lat
		fac.Longitude = place.Geometry.Location.Lng
	}
	return fac
}
