package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
	"github.com/justlist/facility-finder/pkg/overpass"
)

// OSM is a secondary provider backed by the Overpass API. It matches
// shop-tagged elements to the facility by name and reads contact
// details off the element tags.
type OSM struct {
	client overpass.Client
	sess   *session.Limiter
	weight float64
	log    *zap.Logger
}

// NewOSM creates an OpenStreetMap adapter.
func NewOSM(client overpass.Client, sess *session.Limiter, weight float64) *OSM {
	return &OSM{
		client: client,
		sess:   sess,
		weight: weight,
		log:    zap.L().With(zap.String("component", "source.osm")),
	}
}

func (o *OSM) Name() string { return "osm" }

func (o *OSM) Weight() float64 { return o.weight }

func (o *OSM) Lookup(ctx context.Context, fac *model.Facility) (*model.SourceResult, error) {
	if err := consume(o.sess); err != nil {
		return nil, err
	}

	resp, err := o.client.FindShops(ctx, fac.Name)
	if err != nil {
		return nil, eris.Wrapf(err, "osm: find shops %q", fac.Name)
	}

	fields := map[string]any{}
	for i := range resp.Elements {
		el := &resp.Elements[i]
		if !NameMatches(el.Tags["name"], fac.Name) {
			continue
		}
		put(fields, model.FieldPhone, tagAlt(el.Tags, "phone", "contact:phone"))
		put(fields, model.FieldWebsite, tagAlt(el.Tags, "website", "contact:website"))
		put(fields, model.FieldEmail, tagAlt(el.Tags, "email", "contact:email"))
		put(fields, model.FieldHours, el.Tags["opening_hours"])
		put(fields, model.FieldAddress, composeAddress(el.Tags))
		if el.Lat != 0 || el.Lon != 0 {
			put(fields, model.FieldLatitude, el.Lat)
			put(fields, model.FieldLongitude, el.Lon)
		}
		break
	}

	if len(fields) == 0 {
		o.log.Debug("no matching element", zap.String("name", fac.Name))
	}
	return &model.SourceResult{SourceName: o.Name(), Fields: fields, Weight: o.weight}, nil
}

func tagAlt(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}

// composeAddress assembles a street address from OSM addr:* tags.
func composeAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])
	var parts []string
	for _, p := range []string{street, tags["addr:city"]} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
