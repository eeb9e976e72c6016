// Package source holds the external-provider adapters the enrichment
// orchestrator fans out to. Each adapter maps one provider's response
// onto facility field keys; merge precedence is decided elsewhere.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/session"
)

// Source is one external provider consulted during enrichment.
type Source interface {
	// Name identifies the provider in outcomes and logs.
	Name() string
	// Weight is the provider's confidence weight in [0, 1].
	Weight() float64
	// Lookup consults the provider for a facility and returns whatever
	// fields it could contribute. A result with no fields means the
	// provider had nothing for this facility; an error means the lookup
	// itself failed.
	Lookup(ctx context.Context, fac *model.Facility) (*model.SourceResult, error)
}

// ErrSessionBudget is returned when the shared per-session request
// quota is exhausted. Adapters stop issuing requests once they see it.
var ErrSessionBudget = eris.New("source: session request budget exhausted")

// secondaryLimit is how many candidates a secondary provider search
// requests before name matching picks one.
const secondaryLimit = 5

func consume(sess *session.Limiter) error {
	if sess != nil && !sess.TryConsume() {
		return ErrSessionBudget
	}
	return nil
}

func put(fields map[string]any, key string, value any) {
	if !model.IsEmptyValue(value) {
		fields[key] = value
	}
}
