// Package yelp provides a client for the Yelp Fusion business search API.
package yelp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/justlist/facility-finder/internal/resilience"
)

const defaultBaseURL = "https://api.yelp.com/v3"

// Client performs Yelp business searches.
type Client interface {
	// Search finds businesses matching a term near a location.
	Search(ctx context.Context, term, location string, limit int) (*SearchResponse, error)
}

// SearchResponse is the parsed business search response.
type SearchResponse struct {
	Businesses []Business `json:"businesses"`
	Total      int        `json:"total"`
}

// Business is one Yelp business record.
type Business struct {
	Name         string     `json:"name"`
	Rating       float64    `json:"rating"`
	Price        string     `json:"price"`
	Phone        string     `json:"phone"`
	DisplayPhone string     `json:"display_phone"`
	URL          string     `json:"url"`
	Categories   []Category `json:"categories"`
	Location     Location   `json:"location"`
}

// Category labels the kind of business.
type Category struct {
	Title string `json:"title"`
}

// Location is the business's address data.
type Location struct {
	Address1       string   `json:"address1"`
	Address2       string   `json:"address2"`
	City           string   `json:"city"`
	DisplayAddress []string `json:"display_address"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Yelp Fusion client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("yelp", "search")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, term, location string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = 1
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("location", location)
	params.Set("limit", strconv.Itoa(limit))
	reqURL := c.baseURL + "/businesses/search?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

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
		return nil, eris.Wrap(err, "yelp: search")
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "yelp: unmarshal response")
	}

	return &result, nil
}

// PriceLevel converts Yelp's "$"-notation into a numeric 0-4 level.
func (b *Business) PriceLevel() int {
	return len(b.Price)
}
