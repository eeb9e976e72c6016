package compliance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// robotsVerdict is the cached directive summary for one domain.
type robotsVerdict struct {
	disallowAll bool
	warnings    []string
}

// robotsCache holds one verdict per domain for the process lifetime so the
// robots file is fetched at most once per domain. Read-mostly.
type robotsCache struct {
	mu       sync.RWMutex
	verdicts map[string]robotsVerdict
}

func newRobotsCache() *robotsCache {
	return &robotsCache{verdicts: make(map[string]robotsVerdict)}
}

func (c *robotsCache) get(ctx context.Context, g *Gate, target *url.URL) robotsVerdict {
	c.mu.RLock()
	v, ok := c.verdicts[target.Host]
	c.mu.RUnlock()
	if ok {
		return v
	}

	v = g.fetchRobots(ctx, target)

	c.mu.Lock()
	c.verdicts[target.Host] = v
	c.mu.Unlock()
	return v
}

// fetchRobots downloads and interprets the domain's robots.txt. Missing or
// unreadable robots files assume permission with a warning.
func (g *Gate) fetchRobots(ctx context.Context, target *url.URL) robotsVerdict {
	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return robotsVerdict{warnings: []string{"could not check robots.txt for " + target.Host}}
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		zap.L().Debug("compliance: robots fetch failed",
			zap.String("domain", target.Host),
			zap.Error(err),
		)
		return robotsVerdict{warnings: []string{"could not fetch robots.txt for " + target.Host}}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return robotsVerdict{warnings: []string{"could not read robots.txt for " + target.Host}}
	}

	if resp.StatusCode != http.StatusOK {
		return robotsVerdict{warnings: []string{"no robots.txt found for " + target.Host}}
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return robotsVerdict{warnings: []string{"robots.txt for " + target.Host + " is not parseable"}}
	}

	var v robotsVerdict
	group := data.FindGroup(g.userAgent)

	// Blanket disallow is the hard case; partial rules annotate only.
	if !group.Test("/") {
		v.disallowAll = true
		return v
	}

	if delay := group.CrawlDelay; delay > 0 {
		v.warnings = append(v.warnings, fmt.Sprintf("robots.txt specifies crawl delay of %s", delay))
	}

	if n := countDisallowRules(string(body)); n > 0 {
		v.warnings = append(v.warnings, fmt.Sprintf("robots.txt has %d disallow rule(s)", n))
	}

	return v
}

// countDisallowRules counts non-empty Disallow directives across the file.
func countDisallowRules(body string) int {
	n := 0
	for line := range strings.Lines(body) {
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(key), "disallow") {
			continue
		}
		if strings.TrimSpace(val) != "" {
			n++
		}
	}
	return n
}
