package overpass

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

func TestFindShops_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		query := r.PostFormValue("data")
		assert.Contains(t, query, "Acme Gym")
		assert.Contains(t, query, `"shop"`)

		_ = json.NewEncoder(w).Encode(Response{Elements: []Element{
			{
				Type: "node",
				ID:   42,
				Lat:  26.22,
				Lon:  50.58,
				Tags: map[string]string{
					"name":          "Acme Gym",
					"phone":         "+973 1700 0000",
					"website":       "https://acme.test",
					"opening_hours": "Mo-Fr 06:00-22:00",
				},
			},
		}})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	resp, err := client.FindShops(context.Background(), "Acme Gym")

	require.NoError(t, err)
	require.Len(t, resp.Elements, 1)
	el := resp.Elements[0]
	assert.Equal(t, "Acme Gym", el.Tags["name"])
	assert.InDelta(t, 26.22, el.Lat, 0.001)
	assert.Equal(t, "Mo-Fr 06:00-22:00", el.Tags["opening_hours"])
}

func TestFindShops_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	resp, err := client.FindShops(context.Background(), "nothing")

	require.NoError(t, err)
	assert.Empty(t, resp.Elements)
}

func TestFindShops_RetriesGatewayTimeout(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		_ = json.NewEncoder(w).Encode(Response{})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FindShops(context.Background(), "gym")

	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestBuildShopQuery_StripsQuotes(t *testing.T) {
	query := buildShopQuery(`Acme "Power" Gym`)

	assert.NotContains(t, query, `"Power"`)
	assert.Contains(t, query, "Acme Power Gym")
}
