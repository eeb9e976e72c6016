package enrich

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/justlist/facility-finder/internal/model"
)

// Policy holds the merge and scoring constants: per-source confidence
// weights, the field-merge precedence order, and the quality tier
// thresholds. The defaults are reasonable rather than calibrated, so
// they stay loadable from a YAML file instead of being baked in.
type Policy struct {
	Weights    map[string]float64 `yaml:"weights"`
	Precedence []string           `yaml:"precedence"`
	Tiers      TierThresholds     `yaml:"tiers"`
}

// TierThresholds are the minimum quality scores for each tier.
// Anything below Fair is poor.
type TierThresholds struct {
	Excellent int `yaml:"excellent"`
	Good      int `yaml:"good"`
	Fair      int `yaml:"fair"`
}

// DefaultPolicy returns the built-in merge policy: the primary
// provider first, secondaries by descending weight, the website last.
func DefaultPolicy() *Policy {
	return &Policy{
		Weights: map[string]float64{
			"places":     0.85,
			"yelp":       0.9,
			"foursquare": 0.8,
			"osm":        0.7,
			"website":    0.6,
		},
		Precedence: []string{"places", "yelp", "foursquare", "osm", "website"},
		Tiers:      TierThresholds{Excellent: 8, Good: 6, Fair: 4},
	}
}

// LoadPolicy reads a YAML policy file layered over the defaults. An
// empty path returns the defaults unchanged.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "policy: read %s", path)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, eris.Wrapf(err, "policy: parse %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, eris.Wrapf(err, "policy: validate %s", path)
	}
	return p, nil
}

// Validate rejects policies the merge loop cannot run with.
func (p *Policy) Validate() error {
	if len(p.Precedence) == 0 {
		return eris.New("precedence order is empty")
	}
	seen := make(map[string]bool, len(p.Precedence))
	for _, name := range p.Precedence {
		if seen[name] {
			return eris.Errorf("source %q listed twice in precedence", name)
		}
		seen[name] = true
		w, ok := p.Weights[name]
		if !ok {
			return eris.Errorf("source %q has no weight", name)
		}
		if w < 0 || w > 1 {
			return eris.Errorf("source %q weight %v outside [0, 1]", name, w)
		}
	}
	if p.Tiers.Excellent < p.Tiers.Good || p.Tiers.Good < p.Tiers.Fair || p.Tiers.Fair < 1 {
		return eris.New("tier thresholds must satisfy excellent >= good >= fair >= 1")
	}
	return nil
}

// Weight returns the configured weight for a source, zero if unknown.
func (p *Policy) Weight(name string) float64 {
	return p.Weights[name]
}

// TierFor buckets a quality score.
func (p *Policy) TierFor(score int) model.QualityTier {
	switch {
	case score >= p.Tiers.Excellent:
		return model.TierExcellent
	case score >= p.Tiers.Good:
		return model.TierGood
	case score >= p.Tiers.Fair:
		return model.TierFair
	default:
		return model.TierPoor
	}
}
