package yelp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/businesses/search", r.URL.Path)
		assert.Equal(t, "Bearer yelp-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Acme Gym", r.URL.Query().Get("term"))
		assert.Equal(t, "Manama, Bahrain", r.URL.Query().Get("location"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		_ = json.NewEncoder(w).Encode(SearchResponse{Businesses: []Business{
			{
				Name:         "Acme Gym",
				Rating:       4.6,
				Price:        "$$",
				Phone:        "+97317000000",
				DisplayPhone: "+973 1700 0000",
				URL:          "https://yelp.test/acme-gym",
				Categories:   []Category{{Title: "Gyms"}},
				Location: Location{
					Address1:       "12 Main St",
					City:           "Manama",
					DisplayAddress: []string{"12 Main St", "Manama"},
				},
			},
		}})
	}))
	defer srv.Close()

	client := NewClient("yelp-key", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "Acme Gym", "Manama, Bahrain", 5)

	require.NoError(t, err)
	require.Len(t, resp.Businesses, 1)
	biz := resp.Businesses[0]
	assert.InDelta(t, 4.6, biz.Rating, 0.001)
	assert.Equal(t, "Gyms", biz.Categories[0].Title)
	assert.Equal(t, []string{"12 Main St", "Manama"}, biz.Location.DisplayAddress)
}

func TestBusiness_PriceLevel(t *testing.T) {
	tests := []struct {
		price string
		want  int
	}{
		{"", 0},
		{"$", 1},
		{"$$", 2},
		{"$$$$", 4},
	}
	for _, tt := range tests {
		b := Business{Price: tt.price}
		assert.Equal(t, tt.want, b.PriceLevel(), "price %q", tt.price)
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer srv.Close()

	client := NewClient("yelp-key", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "nothing", "nowhere", 5)

	require.NoError(t, err)
	assert.Empty(t, resp.Businesses)
}

func TestSearch_RateLimitedThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer srv.Close()

	client := NewClient("yelp-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "gym", "Manama", 5)

	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestSearch_Forbidden(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "gym", "Manama", 5)

	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
}
