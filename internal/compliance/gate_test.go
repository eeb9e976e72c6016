package compliance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justlist/facility-finder/internal/session"
)

// complianceServer fakes a website with configurable robots.txt, ToS page,
// and page status.
func complianceServer(t *testing.T, robots string, robotsStatus int, tos string, pageStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.WriteHeader(robotsStatus)
			_, _ = w.Write([]byte(robots))
		case "/terms":
			if tos == "" {
				w.WriteHeader(404)
				return
			}
			_, _ = w.Write([]byte(tos))
		default:
			w.WriteHeader(pageStatus)
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGate_BlanketDisallow(t *testing.T) {
	srv := complianceServer(t, "User-agent: *\nDisallow: /\n", 200, "", 200)

	g := NewGate()
	d := g.Evaluate(context.Background(), srv.URL+"/about")

	assert.False(t, d.IsAllowed)
	require.NotEmpty(t, d.Violations)
	assert.Contains(t, d.Violations[0], "disallows all scraping")
}

func TestGate_PermissiveRobotsWithWarnings(t *testing.T) {
	robots := "User-agent: *\nDisallow: /admin\nDisallow: /tmp\nCrawl-delay: 10\n"
	srv := complianceServer(t, robots, 200, "", 200)

	g := NewGate()
	d := g.Evaluate(context.Background(), srv.URL+"/about")

	assert.True(t, d.IsAllowed, "partial disallows and crawl delays never block")
	assert.Empty(t, d.Violations)

	var sawDelay, sawRules bool
	for _, w := range d.Warnings {
		if w == "robots.txt specifies crawl delay of 10s" {
			sawDelay = true
		}
		if w == "robots.txt has 2 disallow rule(s)" {
			sawRules = true
		}
	}
	assert.True(t, sawDelay, "crawl delay warning expected: %v", d.Warnings)
	assert.True(t, sawRules, "disallow rule warning expected: %v", d.Warnings)
}

func TestGate_MissingRobotsAssumesAllowed(t *testing.T) {
	srv := complianceServer(t, "", 404, "", 200)

	g := NewGate()
	d := g.Evaluate(context.Background(), srv.URL+"/about")

	assert.True(t, d.IsAllowed)
	assert.NotEmpty(t, d.Warnings)
}

func TestGate_AuthWallIsViolation(t *testing.T) {
	srv := complianceServer(t, "User-agent: *\nAllow: /\n", 200, "", 401)

	g := NewGate()
	d := g.Evaluate(context.Background(), srv.URL+"/members")

	assert.False(t, d.IsAllowed)
	require.NotEmpty(t, d.Violations)
	assert.Contains(t, d.Violations[0], "requires authentication")
}

func TestGate_SensitivePathIsWarningOnly(t *testing.T) {
	srv := complianceServer(t, "User-agent: *\nAllow: /\n", 200, "", 200)

	g := NewGate()
	d := g.Evaluate(context.Background(), srv.URL+"/account/settings")

	assert.True(t, d.IsAllowed)
	found := false
	for _, w := range d.Warnings {
		if w == "URL contains potentially sensitive pattern: /account/" {
			found = true
		}
	}
	assert.True(t, found, "sensitive path warning expected: %v", d.Warnings)
}

func TestGate_TermsOfServiceWarning(t *testing.T) {
	tos := "<html><body>Use of this site is subject to these terms. No scraping permitted.</body></html>"
	srv := complianceServer(t, "User-agent: *\nAllow: /\n", 200, tos, 200)

	g := NewGate()
	d := g.Evaluate(context.Background(), srv.URL+"/about")

	assert.True(t, d.IsAllowed, "ToS phrases warn but never block")
	found := false
	for _, w := range d.Warnings {
		if w == "terms of service may restrict scraping: no scraping" {
			found = true
		}
	}
	assert.True(t, found, "ToS warning expected: %v", d.Warnings)
}

func TestGate_RobotsCachedPerDomain(t *testing.T) {
	var robotsFetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetches.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	g := NewGate()
	g.Evaluate(context.Background(), srv.URL+"/a")
	g.Evaluate(context.Background(), srv.URL+"/b")
	g.Evaluate(context.Background(), srv.URL+"/c")

	assert.Equal(t, int64(1), robotsFetches.Load())
}

func TestGate_RateBookkeeping(t *testing.T) {
	srv := complianceServer(t, "User-agent: *\nAllow: /\n", 200, "", 200)

	limiter := session.NewDomainLimiter(time.Millisecond, 1)
	g := NewGate(WithDomainLimiter(limiter))

	first := g.Evaluate(context.Background(), srv.URL+"/a")
	second := g.Evaluate(context.Background(), srv.URL+"/b")

	assert.True(t, first.IsAllowed)
	assert.True(t, second.IsAllowed, "rate pressure warns, it does not block")
	found := false
	for _, w := range second.Warnings {
		if w == "rate limit exceeded for "+second.Domain {
			found = true
		}
	}
	assert.True(t, found, "rate warning expected: %v", second.Warnings)
}

func TestGate_UnparseableURL(t *testing.T) {
	g := NewGate()
	d := g.Evaluate(context.Background(), "not a url")

	assert.False(t, d.IsAllowed)
	require.NotEmpty(t, d.Violations)
}

func TestGate_UnreachableHostDegradesToWarnings(t *testing.T) {
	g := NewGate(WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	d := g.Evaluate(context.Background(), "http://127.0.0.1:1/page")

	// Network failure on every check: assume allowed, annotate.
	assert.True(t, d.IsAllowed)
	assert.NotEmpty(t, d.Warnings)
}
