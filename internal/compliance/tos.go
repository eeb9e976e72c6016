package compliance

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Conventional locations for terms-of-service documents.
var tosPaths = []string{
	"/terms",
	"/terms-of-service",
	"/tos",
	"/legal",
}

// Phrases in a ToS document that suggest automated access is restricted.
var tosRestrictions = []string{
	"no scraping",
	"no automated access",
	"no data mining",
	"prohibited use",
	"unauthorized access",
}

// checkTermsOfService fetches the first reachable conventional ToS path and
// scans it for restrictive phrases. Everything here is best effort: fetch
// failures and absent documents are non-blocking.
func (g *Gate) checkTermsOfService(ctx context.Context, target *url.URL) []string {
	var warnings []string

	for _, p := range tosPaths {
		tosURL := target.Scheme + "://" + target.Host + p

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, tosURL, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", g.userAgent)

		resp, err := g.http.Do(req)
		if err != nil {
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
		_ = resp.Body.Close()
		if readErr != nil || resp.StatusCode != http.StatusOK {
			continue
		}

		content := strings.ToLower(string(body))
		for _, phrase := range tosRestrictions {
			if strings.Contains(content, phrase) {
				warnings = append(warnings, "terms of service may restrict scraping: "+phrase)
			}
		}
		break // first reachable document decides
	}

	return warnings
}
