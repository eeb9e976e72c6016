package source

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/compliance"
	"github.com/justlist/facility-finder/internal/extract"
	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
)

// ErrComplianceBlocked is returned when the compliance gate vetoes a
// website fetch. The orchestrator records it and moves on; it is not a
// provider failure.
var ErrComplianceBlocked = eris.New("source: website blocked by compliance gate")

// maxPageBytes caps how much of a page the extractor reads.
const maxPageBytes = 2 << 20

// blockMarkers are body fragments that mean the site served a bot wall
// instead of content.
var blockMarkers = []string{
	"captcha",
	"access denied",
	"are you a robot",
	"enable javascript and cookies",
}

// Website fetches the facility's own site and pulls contact and
// profile details out of the HTML. Every fetch passes the compliance
// gate first and honors the per-domain delay.
type Website struct {
	gate      *compliance.Gate
	domains   *session.DomainLimiter
	sess      *session.Limiter
	http      *http.Client
	userAgent string
	weight    float64
	log       *zap.Logger
}

// WebsiteOption configures the website adapter.
type WebsiteOption func(*Website)

// WithWebsiteHTTPClient overrides the page-fetch HTTP client.
func WithWebsiteHTTPClient(hc *http.Client) WebsiteOption {
	return func(w *Website) { w.http = hc }
}

// WithWebsiteUserAgent overrides the fetch User-Agent.
func WithWebsiteUserAgent(ua string) WebsiteOption {
	return func(w *Website) { w.userAgent = ua }
}

// NewWebsite creates the website adapter. The domain limiter should be
// the same instance the gate uses so rate bookkeeping stays coherent.
func NewWebsite(gate *compliance.Gate, domains *session.DomainLimiter, sess *session.Limiter, weight float64, opts ...WebsiteOption) *Website {
	w := &Website{
		gate:      gate,
		domains:   domains,
		sess:      sess,
		http:      &http.Client{Timeout: 15 * time.Second},
		userAgent: "Mozilla/5.0 (compatible; FacilityFinderBot/1.0)",
		weight:    weight,
		log:       zap.L().With(zap.String("component", "source.website")),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Website) Name() string { return "website" }

func (w *Website) Weight() float64 { return w.weight }

func (w *Website) Lookup(ctx context.Context, fac *model.Facility) (*model.SourceResult, error) {
	if fac.Website == "" {
		return nil, eris.New("website: facility has no website")
	}

	decision := w.gate.Evaluate(ctx, fac.Website)
	if !decision.IsAllowed {
		w.log.Info("fetch vetoed",
			zap.String("domain", decision.Domain),
			zap.Strings("violations", decision.Violations))
		return nil, eris.Wrapf(ErrComplianceBlocked, "domain %s: %s",
			decision.Domain, strings.Join(decision.Violations, "; "))
	}
	for _, warn := range decision.Warnings {
		w.log.Warn("compliance warning",
			zap.String("domain", decision.Domain),
			zap.String("warning", warn))
	}

	if err := consume(w.sess); err != nil {
		return nil, err
	}
	if w.domains != nil {
		if err := w.domains.EnforceDelay(ctx, decision.Domain); err != nil {
			return nil, eris.Wrap(err, "website: domain delay")
		}
	}

	html, err := w.fetch(ctx, fac.Website)
	if err != nil {
		return nil, err
	}

	res, err := extract.FromHTML(html)
	if err != nil {
		return nil, eris.Wrapf(err, "website: parse %s", fac.Website)
	}

	fields := map[string]any{}
	put(fields, model.FieldEmail, res.Email)
	put(fields, model.FieldWhatsApp, res.WhatsApp)
	put(fields, model.FieldInstagram, res.Instagram)
	put(fields, model.FieldFacebook, res.Facebook)
	put(fields, model.FieldTwitter, res.Twitter)
	put(fields, model.FieldLinkedIn, res.LinkedIn)
	put(fields, model.FieldYouTube, res.YouTube)
	put(fields, model.FieldEstablishedYear, res.EstablishedYear)
	put(fields, model.FieldPhone, strings.Join(res.Phones, ", "))
	put(fields, model.FieldAddress, res.Address)
	put(fields, model.FieldHours, res.Hours)
	put(fields, model.FieldDescription, res.Description)

	return &model.SourceResult{SourceName: w.Name(), Fields: fields, Weight: w.weight}, nil
}

func (w *Website) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrapf(err, "website: build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := w.http.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "website: fetch %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return "", eris.Errorf("website: fetch %s blocked with status %d", rawURL, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.Errorf("website: fetch %s returned status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", eris.Wrapf(err, "website: read %s", rawURL)
	}

	if marker := blockedBy(body); marker != "" {
		return "", eris.Errorf("website: fetch %s blocked by bot wall (%q)", rawURL, marker)
	}
	return string(body), nil
}

// blockedBy scans the leading portion of a page for bot-wall markers.
func blockedBy(body []byte) string {
	head := body
	if len(head) > 4096 {
		head = head[:4096]
	}
	lower := strings.ToLower(string(head))
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return marker
		}
	}
	return ""
}
