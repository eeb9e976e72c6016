package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justlist/facility-finder/internal/model"
)

// MemoryStore is an in-memory Store for tests and credential-free
// local usage. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string]model.Run
	leads map[string][]model.Lead
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]model.Run),
		leads: make(map[string][]model.Lead),
	}
}

func (s *MemoryStore) CreateRun(_ context.Context, query model.SearchQuery) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := model.Run{
		ID:        uuid.NewString(),
		Query:     query,
		Status:    model.RunRunning,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.runs[run.ID] = run
	return &run, nil
}

func (s *MemoryStore) UpdateRunStatus(_ context.Context, runID string, status model.RunStatus, facilityCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return ErrNotFound
	}
	run.Status = status
	run.FacilityCount = facilityCount
	run.UpdatedAt = time.Now().UTC()
	s.runs[runID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []model.Run
	for _, run := range s.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(runs) {
			return nil, nil
		}
		runs = runs[filter.Offset:]
	}
	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[:filter.Limit]
	}
	return runs, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return ErrNotFound
	}
	delete(s.runs, runID)
	delete(s.leads, runID)
	return nil
}

func (s *MemoryStore) SaveLeads(_ context.Context, runID string, outcomes []model.EnrichmentOutcome) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Replace by place ID so a re-run does not duplicate.
	existing := make(map[string]int, len(s.leads[runID]))
	for i, lead := range s.leads[runID] {
		existing[lead.Facility.PlaceID] = i
	}

	now := time.Now().UTC()
	for _, out := range outcomes {
		lead := model.Lead{
			ID:              uuid.NewString(),
			RunID:           runID,
			Facility:        out.Facility,
			SourcesUsed:     out.SourcesUsed,
			ConfidenceScore: out.ConfidenceScore,
			QualityTier:     out.QualityTier,
			CreatedAt:       now,
		}
		if i, ok := existing[out.Facility.PlaceID]; ok {
			s.leads[runID][i] = lead
			continue
		}
		s.leads[runID] = append(s.leads[runID], lead)
	}
	return int64(len(outcomes)), nil
}

func (s *MemoryStore) ListLeads(_ context.Context, runID string) ([]model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]model.Lead, len(s.leads[runID]))
	copy(leads, s.leads[runID])
	sort.Slice(leads, func(i, j int) bool {
		return leads[i].ConfidenceScore > leads[j].ConfidenceScore
	})
	return leads, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
