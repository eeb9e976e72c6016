// Package places provides a client for the Google Places API text search
// and place details endpoints.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/justlist/facility-finder/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailFields is the field mask requested on every details call.
var detailFields = []string{
	"name", "place_id", "formatted_address", "international_phone_number",
	"formatted_phone_number", "website", "rating", "user_ratings_total",
	"price_level", "business_status", "types", "opening_hours",
	"vicinity", "geometry",
}

// Client performs Places API operations.
type Client interface {
	// TextSearch runs a free-text search, optionally resuming a prior page.
	TextSearch(ctx context.Context, query, pageToken string) (*TextSearchResponse, error)
	// Details fetches the full record for a place identifier.
	Details(ctx context.Context, placeID string) (*Place, error)
}

// TextSearchResponse is one page of text search results.
type TextSearchResponse struct {
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
	Status        string  `json:"status"`
}

// Place is a single place record. Text search populates a subset; details
// calls fill out the rest.
type Place struct {
	PlaceID                  string        `json:"place_id"`
	Name                     string        `json:"name"`
	FormattedAddress         string        `json:"formatted_address"`
	Vicinity                 string        `json:"vicinity"`
	InternationalPhoneNumber string        `json:"international_phone_number"`
	FormattedPhoneNumber     string        `json:"formatted_phone_number"`
	Website                  string        `json:"website"`
	Rating                   float64       `json:"rating"`
	UserRatingsTotal         int           `json:"user_ratings_total"`
	PriceLevel               int           `json:"price_level"`
	BusinessStatus           string        `json:"business_status"`
	Types                    []string      `json:"types"`
	OpeningHours             *OpeningHours `json:"opening_hours"`
	Geometry                 *Geometry     `json:"geometry"`
}

// OpeningHours holds the weekly hours text.
type OpeningHours struct {
	WeekdayText []string `json:"weekday_text"`
}

// Geometry holds the place coordinates.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type detailsResponse struct {
	Result *Place `json:"result"`
	Status string `json:"status"`
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

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("places", "request")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TextSearch(ctx context.Context, query, pageToken string) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	body, err := c.get(ctx, "/textsearch/json", params)
	if err != nil {
		return nil, eris.Wrap(err, "places: text search")
	}

	var result TextSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal text search response")
	}
	if err := checkStatus(result.Status); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*Place, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(detailFields, ","))
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, "/details/json", params)
	if err != nil {
		return nil, eris.Wrap(err, "places: details")
	}

	var result detailsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal details response")
	}
	if err := checkStatus(result.Status); err != nil {
		return nil, err
	}
	if result.Result == nil {
		return nil, eris.Errorf("places: no result for place %s", placeID)
	}

	return result.Result, nil
}

// get performs a GET with transient-error retry and returns the raw body.
func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}

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
}

// checkStatus maps the API's embedded status field to an error. ZERO_RESULTS
// is not an error; the caller sees an empty result set.
func checkStatus(status string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	default:
		return eris.Errorf("places: api status %s", status)
	}
}
