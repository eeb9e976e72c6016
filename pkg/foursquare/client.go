// Package foursquare provides a client for the Foursquare Places search API.
package foursquare

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

const defaultBaseURL = "https://api.foursquare.com/v3"

// searchFields is the field list requested on every search.
const searchFields = "name,location,rating,price,categories,tel,website,hours"

// Client performs Foursquare place searches.
type Client interface {
	// Search finds places matching a name near a location.
	Search(ctx context.Context, query, near string, limit int) (*SearchResponse, error)
}

// SearchResponse is the parsed search response.
type SearchResponse struct {
	Results []Place `json:"results"`
}

// Place is one Foursquare place record.
type Place struct {
	Name       string     `json:"name"`
	Location   Location   `json:"location"`
	Rating     float64    `json:"rating"`
	Price      int        `json:"price"`
	Categories []Category `json:"categories"`
	Tel        string     `json:"tel"`
	Website    string     `json:"website"`
	Hours      *Hours     `json:"hours"`
}

// Location is the place's address data.
type Location struct {
	Address          string `json:"address"`
	FormattedAddress string `json:"formatted_address"`
	Locality         string `json:"locality"`
}

// Category labels the kind of business.
type Category struct {
	Name string `json:"name"`
}

// Hours holds the display form of opening hours.
type Hours struct {
	Display string `json:"display"`
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

// NewClient creates a Foursquare client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("foursquare", "search")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query, near string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("near", near)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)
	reqURL := c.baseURL + "/places/search?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("Authorization", c.apiKey)
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
		return nil, eris.Wrap(err, "foursquare: search")
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "foursquare: unmarshal response")
	}

	return &result, nil
}
