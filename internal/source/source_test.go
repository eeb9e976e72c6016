package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
	"github.com/justlist/facility-finder/pkg/foursquare"
	"github.com/justlist/facility-finder/pkg/overpass"
	"github.com/justlist/facility-finder/pkg/places"
	"github.com/justlist/facility-finder/pkg/yelp"
)

func openSession() *session.Limiter {
	return session.NewLimiter(100, 30*time.Minute, time.Minute)
}

type stubPlaces struct {
	place *places.Place
	err   error
}

func (s *stubPlaces) TextSearch(context.Context, string, string) (*places.TextSearchResponse, error) {
	return &places.TextSearchResponse{Status: "OK"}, nil
}

func (s *stubPlaces) Details(context.Context, string) (*places.Place, error) {
	return s.place, s.err
}

func TestPlaces_Lookup_MapsFields(t *testing.T) {
	stub := &stubPlaces{place: &places.Place{
		PlaceID:                  "abc",
		Name:                     "Acme Gym",
		FormattedAddress:         "12 Main St, Manama",
		FormattedPhoneNumber:     "1700 0000",
		InternationalPhoneNumber: "+973 1700 0000",
		Website:                  "https://acme.test",
		Rating:                   4.2,
		UserRatingsTotal:         120,
		BusinessStatus:           "OPERATIONAL",
		Types:                    []string{"gym", "health"},
		OpeningHours:             &places.OpeningHours{WeekdayText: []string{"Monday: 6AM-10PM", "Tuesday: 6AM-10PM"}},
		Geometry:                 &places.Geometry{Location: places.LatLng{Lat: 26.2, Lng: 50.6}},
	}}

	src := NewPlaces(stub, openSession(), 0.85)
	res, err := src.Lookup(context.Background(), &model.Facility{PlaceID: "abc", Name: "Acme Gym"})

	require.NoError(t, err)
	assert.Equal(t, "places", res.SourceName)
	assert.InDelta(t, 0.85, res.Weight, 0.001)
	assert.Equal(t, "1700 0000", res.Fields[model.FieldPhone])
	assert.Equal(t, "+973 1700 0000", res.Fields[model.FieldInternationalPhone])
	assert.Equal(t, 4.2, res.Fields[model.FieldRating])
	assert.Equal(t, "Monday: 6AM-10PM; Tuesday: 6AM-10PM", res.Fields[model.FieldHours])
	assert.Equal(t, 26.2, res.Fields[model.FieldLatitude])
	assert.NotContains(t, res.Fields, model.FieldPriceLevel)
}

func TestPlaces_Lookup_RequiresPlaceID(t *testing.T) {
	src := NewPlaces(&stubPlaces{}, openSession(), 0.85)
	_, err := src.Lookup(context.Background(), &model.Facility{Name: "Acme Gym"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no place id")
}

func TestPlaces_Lookup_SessionExhausted(t *testing.T) {
	sess := session.NewLimiter(0, 30*time.Minute, time.Minute)
	src := NewPlaces(&stubPlaces{}, sess, 0.85)
	_, err := src.Lookup(context.Background(), &model.Facility{PlaceID: "abc"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionBudget))
}

type stubYelp struct {
	resp *yelp.SearchResponse
	err  error
}

func (s *stubYelp) Search(context.Context, string, string, int) (*yelp.SearchResponse, error) {
	return s.resp, s.err
}

func TestYelp_Lookup_MatchesByName(t *testing.T) {
	stub := &stubYelp{resp: &yelp.SearchResponse{Businesses: []yelp.Business{
		{Name: "Power Fitness", Rating: 3.0},
		{
			Name:         "Acme Gym Manama",
			Rating:       4.6,
			Price:        "$$",
			DisplayPhone: "+973 1700 0000",
			Categories:   []yelp.Category{{Title: "Gyms"}, {Title: "Trainers"}},
			Location:     yelp.Location{DisplayAddress: []string{"12 Main St", "Manama"}},
		},
	}}}

	src := NewYelp(stub, openSession(), "Manama, Bahrain", 0.9)
	res, err := src.Lookup(context.Background(), &model.Facility{Name: "Acme Gym"})

	require.NoError(t, err)
	assert.Equal(t, 4.6, res.Fields[model.FieldRating])
	assert.Equal(t, "+973 1700 0000", res.Fields[model.FieldPhone])
	assert.Equal(t, 2, res.Fields[model.FieldPriceLevel])
	assert.Equal(t, []string{"Gyms", "Trainers"}, res.Fields[model.FieldTypes])
	assert.Equal(t, "12 Main St, Manama", res.Fields[model.FieldAddress])
}

func TestYelp_Lookup_NoMatchReturnsEmpty(t *testing.T) {
	stub := &stubYelp{resp: &yelp.SearchResponse{Businesses: []yelp.Business{
		{Name: "Power Fitness", Rating: 3.0},
	}}}

	src := NewYelp(stub, openSession(), "Manama, Bahrain", 0.9)
	res, err := src.Lookup(context.Background(), &model.Facility{Name: "Acme Gym"})

	require.NoError(t, err)
	assert.True(t, res.Empty())
}

type stubFoursquare struct {
	resp *foursquare.SearchResponse
	err  error
}

func (s *stubFoursquare) Search(context.Context, string, string, int) (*foursquare.SearchResponse, error) {
	return s.resp, s.err
}

func TestFoursquare_Lookup_HalvesRating(t *testing.T) {
	stub := &stubFoursquare{resp: &foursquare.SearchResponse{Results: []foursquare.Place{
		{
			Name:     "Acme Gym",
			Rating:   8.4,
			Price:    2,
			Tel:      "+973 1700 0000",
			Website:  "https://acme.test",
			Location: foursquare.Location{FormattedAddress: "12 Main St, Manama"},
			Hours:    &foursquare.Hours{Display: "Mon-Fri 6:00-22:00"},
		},
	}}}

	src := NewFoursquare(stub, openSession(), "Manama, Bahrain", 0.8)
	res, err := src.Lookup(context.Background(), &model.Facility{Name: "Acme Gym"})

	require.NoError(t, err)
	assert.InDelta(t, 4.2, res.Fields[model.FieldRating].(float64), 0.001)
	assert.Equal(t, "https://acme.test", res.Fields[model.FieldWebsite])
	assert.Equal(t, "Mon-Fri 6:00-22:00", res.Fields[model.FieldHours])
}

type stubOverpass struct {
	resp *overpass.Response
	err  error
}

func (s *stubOverpass) FindShops(context.Context, string) (*overpass.Response, error) {
	return s.resp, s.err
}

func TestOSM_Lookup_TagMapping(t *testing.T) {
	stub := &stubOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		{
			Type: "node",
			Lat:  26.22,
			Lon:  50.58,
			Tags: map[string]string{
				"name":             "Acme Gym",
				"contact:phone":    "+973 1700 0000",
				"website":          "https://acme.test",
				"opening_hours":    "Mo-Fr 06:00-22:00",
				"addr:housenumber": "12",
				"addr:street":      "Main St",
				"addr:city":        "Manama",
			},
		},
	}}}

	src := NewOSM(stub, openSession(), 0.7)
	res, err := src.Lookup(context.Background(), &model.Facility{Name: "Acme Gym"})

	require.NoError(t, err)
	assert.Equal(t, "+973 1700 0000", res.Fields[model.FieldPhone])
	assert.Equal(t, "12 Main St, Manama", res.Fields[model.FieldAddress])
	assert.Equal(t, "Mo-Fr 06:00-22:00", res.Fields[model.FieldHours])
	assert.Equal(t, 26.22, res.Fields[model.FieldLatitude])
}

func TestOSM_Lookup_NoMatchReturnsEmpty(t *testing.T) {
	stub := &stubOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		{Tags: map[string]string{"name": "Corner Shop"}},
	}}}

	src := NewOSM(stub, openSession(), 0.7)
	res, err := src.Lookup(context.Background(), &model.Facility{Name: "Acme Gym"})

	require.NoError(t, err)
	assert.True(t, res.Empty())
}
