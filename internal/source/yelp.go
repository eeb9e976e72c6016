package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
	"github.com/justlist/facility-finder/pkg/yelp"
)

// Yelp is a secondary provider matched to the facility by name.
type Yelp struct {
	client   yelp.Client
	sess     *session.Limiter
	location string
	weight   float64
	log      *zap.Logger
}

// NewYelp creates a Yelp adapter scoped to one search location.
func NewYelp(client yelp.Client, sess *session.Limiter, location string, weight float64) *Yelp {
	return &Yelp{
		client:   client,
		sess:     sess,
		location: location,
		weight:   weight,
		log:      zap.L().With(zap.String("component", "source.yelp")),
	}
}

func (y *Yelp) Name() string { return "yelp" }

func (y *Yelp) Weight() float64 { return y.weight }

func (y *Yelp) Lookup(ctx context.Context, fac *model.Facility) (*model.SourceResult, error) {
	if err := consume(y.sess); err != nil {
		return nil, err
	}

	resp, err := y.client.Search(ctx, fac.Name, y.location, secondaryLimit)
	if err != nil {
		return nil, eris.Wrapf(err, "yelp: search %q", fac.Name)
	}

	fields := map[string]any{}
	for i := range resp.Businesses {
		biz := &resp.Businesses[i]
		if !NameMatches(biz.Name, fac.Name) {
			continue
		}
		phone := biz.DisplayPhone
		if phone == "" {
			phone = biz.Phone
		}
		put(fields, model.FieldPhone, phone)
		put(fields, model.FieldRating, biz.Rating)
		put(fields, model.FieldPriceLevel, biz.PriceLevel())
		put(fields, model.FieldAddress, strings.Join(biz.Location.DisplayAddress, ", "))

		var types []string
		for _, cat := range biz.Categories {
			types = append(types, cat.Title)
		}
		put(fields, model.FieldTypes, types)
		break
	}

	if len(fields) == 0 {
		y.log.Debug("no matching business", zap.String("name", fac.Name))
	}
	return &model.SourceResult{SourceName: y.Name(), Fields: fields, Weight: y.weight}, nil
}
