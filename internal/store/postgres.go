package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/justlist/facility-finder/internal/db"
	"github.com/justlist/facility-finder/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	query          JSONB NOT NULL,
	status         TEXT NOT NULL DEFAULT 'running',
	facility_count INT NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id               TEXT PRIMARY KEY,
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	place_id         TEXT NOT NULL,
	facility         JSONB NOT NULL,
	sources_used     JSONB NOT NULL DEFAULT '[]',
	confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	quality_tier     TEXT NOT NULL DEFAULT 'poor',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (run_id, place_id)
);

CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// CreateRun persists a new running search.
func (s *PostgresStore) CreateRun(ctx context.Context, query model.SearchQuery) (*model.Run, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal query")
	}

	run := &model.Run{
		ID:        uuid.NewString(),
		Query:     query,
		Status:    model.RunRunning,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, query, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, queryJSON, run.Status, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

// UpdateRunStatus moves a run to a new status and records how many
// facilities it produced.
func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, facilityCount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, facility_count = $2, updated_at = $3 WHERE id = $4`,
		status, facilityCount, time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRun fetches one run by ID.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, query, status, facility_count, created_at, updated_at FROM runs WHERE id = $1`,
		runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

// ListRuns returns runs newest first, optionally filtered by status.
func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	sql := `SELECT id, query, status, facility_count, created_at, updated_at FROM runs`
	args := []any{}
	if filter.Status != "" {
		sql += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	sql += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sql += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its leads.
func (s *PostgresStore) DeleteRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, runID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var leadColumns = []string{
	"id", "run_id", "place_id", "facility", "sources_used",
	"confidence_score", "quality_tier", "created_at",
}

// SaveLeads upserts the batch outcomes under a run, keyed on
// (run_id, place_id) so a re-run replaces rather than duplicates.
func (s *PostgresStore) SaveLeads(ctx context.Context, runID string, outcomes []model.EnrichmentOutcome) (int64, error) {
	rows := make([][]any, 0, len(outcomes))
	now := time.Now().UTC()
	for _, out := range outcomes {
		facJSON, err := json.Marshal(out.Facility)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal facility")
		}
		sourcesJSON, err := json.Marshal(out.SourcesUsed)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal sources")
		}
		rows = append(rows, []any{
			uuid.NewString(), runID, out.Facility.PlaceID, facJSON, sourcesJSON,
			out.ConfidenceScore, string(out.QualityTier), now,
		})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "leads",
		Columns:      leadColumns,
		ConflictKeys: []string{"run_id", "place_id"},
		UpdateCols:   []string{"facility", "sources_used", "confidence_score", "quality_tier", "created_at"},
	}, rows)
}

// ListLeads returns the saved leads for a run, best confidence first.
func (s *PostgresStore) ListLeads(ctx context.Context, runID string) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, place_id, facility, sources_used, confidence_score, quality_tier, created_at
		 FROM leads WHERE run_id = $1 ORDER BY confidence_score DESC`,
		runID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list leads for %s", runID)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var (
			lead        model.Lead
			placeID     string
			facJSON     []byte
			sourcesJSON []byte
			tier        string
		)
		if err := rows.Scan(&lead.ID, &lead.RunID, &placeID, &facJSON, &sourcesJSON,
			&lead.ConfidenceScore, &tier, &lead.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		if err := json.Unmarshal(facJSON, &lead.Facility); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal facility")
		}
		if err := json.Unmarshal(sourcesJSON, &lead.SourcesUsed); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal sources")
		}
		lead.QualityTier = model.QualityTier(tier)
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func scanRun(row pgx.Row) (*model.Run, error) {
	var (
		run       model.Run
		queryJSON []byte
		status    string
	)
	if err := row.Scan(&run.ID, &queryJSON, &status, &run.FacilityCount,
		&run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(queryJSON, &run.Query); err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	return &run, nil
}
