// Package compliance decides whether fetching a page is permissible before
// any scraping request goes out: robots directives, authentication walls,
// terms-of-service heuristics, and request-rate bookkeeping.
package compliance

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/session"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; FacilityFinderBot/1.0)"

// Decision is the outcome of evaluating one URL. Warnings annotate but never
// block; only hard violations make IsAllowed false.
type Decision struct {
	Domain     string   `json:"domain"`
	IsAllowed  bool     `json:"is_allowed"`
	Violations []string `json:"violations,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Gate performs compliance evaluation with a per-process robots cache.
type Gate struct {
	http      *http.Client
	domains   *session.DomainLimiter
	userAgent string
	robots    *robotsCache
}

// Option configures the gate.
type Option func(*Gate)

// WithHTTPClient overrides the probe/robots/ToS HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gate) { g.http = hc }
}

// WithUserAgent overrides the probe user agent.
func WithUserAgent(ua string) Option {
	return func(g *Gate) { g.userAgent = ua }
}

// WithDomainLimiter enables request-rate bookkeeping against the shared
// per-domain limiter.
func WithDomainLimiter(d *session.DomainLimiter) Option {
	return func(g *Gate) { g.domains = d }
}

// NewGate creates a compliance gate.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
		userAgent: defaultUserAgent,
		robots:    newRobotsCache(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Evaluate runs the full compliance check for a URL. Transient failures in
// any individual check degrade to a warning; the hard violations are a
// blanket robots disallow and an authentication requirement.
func (g *Gate) Evaluate(ctx context.Context, rawURL string) Decision {
	d := Decision{}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		d.Violations = append(d.Violations, "URL is not parseable")
		return d
	}
	d.Domain = u.Host

	// 1. Robots directives, cached per domain for the process lifetime.
	robots := g.robots.get(ctx, g, u)
	if robots.disallowAll {
		d.Violations = append(d.Violations, "robots.txt disallows all scraping for "+d.Domain)
	}
	d.Warnings = append(d.Warnings, robots.warnings...)

	// 2. Unauthenticated reachability probe.
	if requiresAuth, warn := g.probeAuth(ctx, rawURL); requiresAuth {
		d.Violations = append(d.Violations, "URL requires authentication: "+rawURL)
	} else if warn != "" {
		d.Warnings = append(d.Warnings, warn)
	}

	// 3. Sensitive path patterns annotate only.
	d.Warnings = append(d.Warnings, sensitivePathWarnings(u.Path)...)

	// 4. Request-rate bookkeeping.
	if g.domains != nil && !g.domains.Allow(d.Domain) {
		d.Warnings = append(d.Warnings, "rate limit exceeded for "+d.Domain)
	}

	// 5. Terms-of-service heuristic, best effort.
	d.Warnings = append(d.Warnings, g.checkTermsOfService(ctx, u)...)

	d.IsAllowed = len(d.Violations) == 0

	if !d.IsAllowed {
		zap.L().Info("compliance: fetch disallowed",
			zap.String("domain", d.Domain),
			zap.Strings("violations", d.Violations),
		)
	}
	return d
}

// probeAuth checks whether the URL answers without credentials. A 401/403 or
// a WWW-Authenticate challenge is an authentication wall. Network errors are
// reported as a warning, never a violation.
func (g *Gate) probeAuth(ctx context.Context, rawURL string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, "could not probe " + rawURL
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return false, eris.Wrap(err, "reachability probe failed").Error()
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return true, ""
	}
	if resp.Header.Get("WWW-Authenticate") != "" {
		return true, ""
	}
	return false, ""
}
