package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/justlist/facility-finder/internal/pipeline"
	"github.com/justlist/facility-finder/internal/store"
)

// initStore opens the configured persistence backend and applies
// migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store

	switch cfg.Store.Driver {
	case "memory":
		st = store.NewMemory()
	case "postgres":
		ps, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		st = ps
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	return st, nil
}

// initPipeline wires the store and source clients into a ready pipeline.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.New(cfg, st)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}

	return p, st, nil
}
