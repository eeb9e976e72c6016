package source

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
	"github.com/justlist/facility-finder/pkg/foursquare"
)

// Foursquare is a secondary provider matched to the facility by name.
// Foursquare scores ratings out of 10, so they are halved onto the
// 5-point scale the rest of the pipeline uses.
type Foursquare struct {
	client   foursquare.Client
	sess     *session.Limiter
	location string
	weight   float64
	log      *zap.Logger
}

// NewFoursquare creates a Foursquare adapter scoped to one search location.
func NewFoursquare(client foursquare.Client, sess *session.Limiter, location string, weight float64) *Foursquare {
	return &Foursquare{
		client:   client,
		sess:     sess,
		location: location,
		weight:   weight,
		log:      zap.L().With(zap.String("component", "source.foursquare")),
	}
}

func (f *Foursquare) Name() string { return "foursquare" }

func (f *Foursquare) Weight() float64 { return f.weight }

func (f *Foursquare) Lookup(ctx context.Context, fac *model.Facility) (*model.SourceResult, error) {
	if err := consume(f.sess); err != nil {
		return nil, err
	}

	resp, err := f.client.Search(ctx, fac.Name, f.location, secondaryLimit)
	if err != nil {
		return nil, eris.Wrapf(err, "foursquare: search %q", fac.Name)
	}

	fields := map[string]any{}
	for i := range resp.Results {
		place := &resp.Results[i]
		if !NameMatches(place.Name, fac.Name) {
			continue
		}
		put(fields, model.FieldPhone, place.Tel)
		put(fields, model.FieldWebsite, place.Website)
		put(fields, model.FieldRating, place.Rating/2)
		put(fields, model.FieldPriceLevel, place.Price)

		addr := place.Location.FormattedAddress
		if addr == "" {
			addr = place.Location.Address
		}
		put(fields, model.FieldAddress, addr)
		if place.Hours != nil {
			put(fields, model.FieldHours, place.Hours.Display)
		}

		var types []string
		for _, cat := range place.Categories {
			types = append(types, cat.Name)
		}
		put(fields, model.FieldTypes, types)
		break
	}

	if len(fields) == 0 {
		f.log.Debug("no matching place", zap.String("name", fac.Name))
	}
	return &model.SourceResult{SourceName: f.Name(), Fields: fields, Weight: f.weight}, nil
}
