package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
	"github.com/justlist/facility-finder/pkg/places"
)

// Places is the primary provider. It looks a facility up by place ID,
// so its fields anchor the merged record.
type Places struct {
	client places.Client
	sess   *session.Limiter
	weight float64
	log    *zap.Logger
}

// NewPlaces creates the primary details adapter.
func NewPlaces(client places.Client, sess *session.Limiter, weight float64) *Places {
	return &Places{
		client: client,
		sess:   sess,
		weight: weight,
		log:    zap.L().With(zap.String("component", "source.places")),
	}
}

func (p *Places) Name() string { return "places" }

func (p *Places) Weight() float64 { return p.weight }

func (p *Places) Lookup(ctx context.Context, fac *model.Facility) (*model.SourceResult, error) {
	if fac.PlaceID == "" {
		return nil, eris.New("places: facility has no place id")
	}
	if err := consume(p.sess); err != nil {
		return nil, err
	}

	place, err := p.client.Details(ctx, fac.PlaceID)
	if err != nil {
		return nil, eris.Wrapf(err, "places: details for %s", fac.PlaceID)
	}

	fields := map[string]any{}
	put(fields, model.FieldName, place.Name)
	put(fields, model.FieldFormattedAddress, place.FormattedAddress)
	put(fields, model.FieldVicinity, place.Vicinity)
	put(fields, model.FieldPhone, place.FormattedPhoneNumber)
	put(fields, model.FieldInternationalPhone, place.InternationalPhoneNumber)
	put(fields, model.FieldWebsite, place.Website)
	put(fields, model.FieldRating, place.Rating)
	put(fields, model.FieldUserRatingsTotal, place.UserRatingsTotal)
	put(fields, model.FieldPriceLevel, place.PriceLevel)
	put(fields, model.FieldBusinessStatus, place.BusinessStatus)
	put(fields, model.FieldTypes, place.Types)
	if place.OpeningHours != nil {
		put(fields, model.FieldHours, strings.Join(place.OpeningHours.WeekdayText, "; "))
	}
	if place.Geometry != nil {
		put(fields, model.FieldLatitude, place.Geometry.Location.Lat)
		put(fields, model.FieldLongitude, place.Geometry.Location.Lng)
	}

	p.log.Debug("details fetched",
		zap.String("place_id", fac.PlaceID),
		zap.Int("fields", len(fields)))

	return &model.SourceResult{SourceName: p.Name(), Fields: fields, Weight: p.weight}, nil
}
