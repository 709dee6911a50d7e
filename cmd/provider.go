package cmd

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/config"
	"github.com/kyleking/filter-flow/internal/errors"
	"github.com/kyleking/filter-flow/internal/logging"
	"github.com/kyleking/filter-flow/internal/storage"
)

// openProvider returns the provider for the configured backend along with a
// function that releases it
func openProvider(ctx context.Context, cfg config.StoreConfig) (catalog.Provider, func() error, error) {
	switch cfg.Backend {
	case "", "memory":
		return catalog.NewStatic(), func() error { return nil }, nil
	case storage.DriverDuckDB, storage.DriverSQLite:
	default:
		return nil, nil, errors.NewBackendError(cfg.Backend)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Loading catalog into " + cfg.Backend
	s.Start()

	var store *storage.SQLStore

	err := logging.Timed("load "+cfg.Backend, func() error {
		var err error

		store, err = storage.Open(ctx, cfg.Backend)
		if err != nil {
			return err
		}

		tables, rows := catalog.Snapshot()
		if err := store.Load(ctx, tables, rows); err != nil {
			_ = store.Close()
			return err
		}

		return nil
	})

	s.Stop()

	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrTypeDatabase, "failed to prepare %s backend", cfg.Backend).
			WithSuggestion("Use --backend memory to answer from the built-in data directly")
	}

	return store, store.Close, nil
}

// withProvider runs fn with the provider for cfg and closes it afterwards
func withProvider(ctx context.Context, cfg *config.Config, fn func(catalog.Provider) error) error {
	provider, closeFn, err := openProvider(ctx, cfg.Store)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeFn(); err != nil {
			logging.ErrorWithErr("Failed to close backend", err)
		}
	}()

	return fn(provider)
}
