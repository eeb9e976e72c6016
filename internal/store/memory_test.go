package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justlist/facility-finder/internal/model"
)

func testQuery() model.SearchQuery {
	return model.SearchQuery{PlaceType: "gym", City: "Manama", Country: "Bahrain", MaxResults: 20}
}

func TestMemory_RunLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunRunning, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunCompleted, 7))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, got.Status)
	assert.Equal(t, 7, got.FacilityCount)

	require.NoError(t, s.DeleteRun(ctx, run.ID))
	_, err = s.GetRun(ctx, run.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemory_NotFound(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.GetRun(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.UpdateRunStatus(ctx, "ghost", model.RunFailed, 0), ErrNotFound))
	assert.True(t, errors.Is(s.DeleteRun(ctx, "ghost"), ErrNotFound))
}

func TestMemory_ListRuns_FilterAndLimit(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	a, err := s.CreateRun(ctx, testQuery())
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, testQuery())
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, a.ID, model.RunCompleted, 3))

	completed, err := s.ListRuns(ctx, RunFilter{Status: model.RunCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, a.ID, completed[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemory_SaveLeads_UpsertByPlaceID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery())
	require.NoError(t, err)

	first := []model.EnrichmentOutcome{
		{Facility: model.Facility{PlaceID: "a", Name: "Acme Gym"}, ConfidenceScore: 0.5, QualityTier: model.TierFair},
		{Facility: model.Facility{PlaceID: "b", Name: "Power Fitness"}, ConfidenceScore: 0.9, QualityTier: model.TierGood},
	}
	n, err := s.SaveLeads(ctx, run.ID, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Re-save one facility with better data.
	_, err = s.SaveLeads(ctx, run.ID, []model.EnrichmentOutcome{
		{Facility: model.Facility{PlaceID: "a", Name: "Acme Gym"}, ConfidenceScore: 0.95, QualityTier: model.TierExcellent},
	})
	require.NoError(t, err)

	leads, err := s.ListLeads(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "a", leads[0].Facility.PlaceID, "sorted by confidence desc")
	assert.Equal(t, 0.95, leads[0].ConfidenceScore)
	assert.Equal(t, model.TierExcellent, leads[0].QualityTier)
}

func TestMemory_DeleteRunRemovesLeads(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery())
	require.NoError(t, err)
	_, err = s.SaveLeads(ctx, run.ID, []model.EnrichmentOutcome{
		{Facility: model.Facility{PlaceID: "a"}},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRun(ctx, run.ID))
	leads, err := s.ListLeads(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, leads)
}
