package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// SearchQuery describes one facility search against the places provider.
type SearchQuery struct {
	PlaceType  string `json:"place_type"`
	City       string `json:"city"`
	Country    string `json:"country"`
	MaxResults int    `json:"max_results"`
}

const (
	// MaxResultsLimit is the provider-imposed ceiling per text search.
	MaxResultsLimit = 60
	// DefaultMaxResults is used when the caller does not specify a cap.
	DefaultMaxResults = 20
)

var (
	locationRe     = regexp.MustCompile(`^[a-zA-Z0-9\s.,\-'()]+$`)
	businessTypeRe = regexp.MustCompile(`^[a-zA-Z0-9\s.,\-'&]+$`)
	dangerousRe    = regexp.MustCompile(`[<>"';\\&]`)
	controlRe      = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
)

// Sanitize strips dangerous and control characters from user input and caps
// its length. Empty input stays empty.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	text = dangerousRe.ReplaceAllString(text, "")
	text = controlRe.ReplaceAllString(text, "")
	if len(text) > 100 {
		text = text[:100]
	}
	return text
}

// Validate checks the query parameters, returning a caller-facing error for
// the first problem found.
func (q SearchQuery) Validate() error {
	pt := strings.TrimSpace(q.PlaceType)
	if pt == "" {
		return eris.New("business type is required")
	}
	if len(pt) < 2 || len(pt) > 50 {
		return eris.New("business type must be between 2 and 50 characters")
	}
	if !businessTypeRe.MatchString(pt) {
		return eris.New("business type contains invalid characters")
	}

	for _, loc := range []struct{ label, val string }{
		{"city", q.City},
		{"country", q.Country},
	} {
		v := strings.TrimSpace(loc.val)
		if v == "" {
			return eris.Errorf("%s is required", loc.label)
		}
		if len(v) < 2 || len(v) > 100 {
			return eris.Errorf("%s must be between 2 and 100 characters", loc.label)
		}
		if !locationRe.MatchString(v) {
			return eris.Errorf("%s contains invalid characters", loc.label)
		}
	}

	if q.MaxResults < 1 || q.MaxResults > MaxResultsLimit {
		return eris.Errorf("max results must be between 1 and %d", MaxResultsLimit)
	}

	return nil
}

// Sanitize returns a copy with user input cleaned and the result cap
// defaulted.
func (q SearchQuery) Sanitize() SearchQuery {
	q.PlaceType = Sanitize(q.PlaceType)
	q.City = Sanitize(q.City)
	q.Country = Sanitize(q.Country)
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
	return q
}

// Text renders the query in the provider's free-text format.
func (q SearchQuery) Text() string {
	return fmt.Sprintf("%s in %s, %s", q.PlaceType, q.City, q.Country)
}

// Location renders the city/country pair used by secondary source
// searches.
func (q SearchQuery) Location() string {
	return fmt.Sprintf("%s, %s", q.City, q.Country)
}
