package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/justlist/facility-finder/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for search runs and their
// enriched leads.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, query model.SearchQuery) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, facilityCount int) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	DeleteRun(ctx context.Context, runID string) error

	// Leads
	SaveLeads(ctx context.Context, runID string, outcomes []model.EnrichmentOutcome) (int64, error)
	ListLeads(ctx context.Context, runID string) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
