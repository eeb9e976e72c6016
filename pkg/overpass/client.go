// Package overpass provides a client for the OpenStreetMap Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/justlist/facility-finder/internal/resilience"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// Client queries OpenStreetMap through the Overpass API.
type Client interface {
	// FindShops finds shop-tagged nodes/ways whose name matches, case
	// insensitively.
	FindShops(ctx context.Context, name string) (*Response, error)
}

// Response is the parsed Overpass response.
type Response struct {
	Elements []Element `json:"elements"`
}

// Element is one OSM node, way, or relation with its tag map.
type Element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default interpreter URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates an Overpass client. No credential is required; the
// public interpreter accepts anonymous queries.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("osm", "query")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FindShops(ctx context.Context, name string) (*Response, error) {
	query := buildShopQuery(name)

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		form := url.Values{}
		form.Set("data", query)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
			strings.NewReader(form.Encode()))
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "read response")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "overpass: query")
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "overpass: unmarshal response")
	}

	return &result, nil
}

// buildShopQuery renders the Overpass QL for a case-insensitive name match
// on shop-tagged elements. Quotes in the name are stripped to keep the QL
// well formed.
func buildShopQuery(name string) string {
	name = strings.NewReplacer(`"`, "", `\`, "").Replace(name)
	return fmt.Sprintf(`[out:json][timeout:10];
(
  node["name"~"%[1]s",i]["shop"~".*"];
  way["name"~"%[1]s",i]["shop"~".*"];
);
out center;`, name)
}
