package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery_Validate(t *testing.T) {
	valid := SearchQuery{PlaceType: "gym", City: "Manama", Country: "Bahrain", MaxResults: 20}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*SearchQuery)
		wantErr string
	}{
		{"missing type", func(q *SearchQuery) { q.PlaceType = "" }, "business type is required"},
		{"type too short", func(q *SearchQuery) { q.PlaceType = "g" }, "between 2 and 50"},
		{"type bad chars", func(q *SearchQuery) { q.PlaceType = "gym<script>" }, "invalid characters"},
		{"missing city", func(q *SearchQuery) { q.City = "  " }, "city is required"},
		{"missing country", func(q *SearchQuery) { q.Country = "" }, "country is required"},
		{"city bad chars", func(q *SearchQuery) { q.City = "Manama;drop" }, "invalid characters"},
		{"zero results", func(q *SearchQuery) { q.MaxResults = 0 }, "between 1 and 60"},
		{"too many results", func(q *SearchQuery) { q.MaxResults = 61 }, "between 1 and 60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			err := q.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSearchQuery_Text(t *testing.T) {
	q := SearchQuery{PlaceType: "gym", City: "Manama", Country: "Bahrain"}
	assert.Equal(t, "gym in Manama, Bahrain", q.Text())
}

func TestSearchQuery_Location(t *testing.T) {
	q := SearchQuery{PlaceType: "gym", City: "Manama", Country: "Bahrain"}
	assert.Equal(t, "Manama, Bahrain", q.Location())
}

func TestSearchQuery_Sanitize(t *testing.T) {
	q := SearchQuery{PlaceType: " gym<script> ", City: "Manama", Country: "Bahrain"}.Sanitize()
	assert.Equal(t, "gymscript", q.PlaceType)
	assert.Equal(t, DefaultMaxResults, q.MaxResults)

	capped := SearchQuery{MaxResults: 5}.Sanitize()
	assert.Equal(t, 5, capped.MaxResults)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "", Sanitize("   "))
	assert.Equal(t, "gym", Sanitize("  gym  "))
	assert.Equal(t, "scriptalert(1)/script", Sanitize(`<script>alert(1)</script>`))
	assert.Len(t, Sanitize(string(make([]byte, 300))), 0) // control bytes stripped entirely

	long := ""
	for range 150 {
		long += "a"
	}
	assert.Len(t, Sanitize(long), 100)
}
