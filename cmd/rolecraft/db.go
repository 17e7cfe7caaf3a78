package main

import (
	"context"
	"fmt"
	"strings"

	"rolecraft/internal/config"
	"rolecraft/internal/store"
	"rolecraft/internal/store/postgres"
	"rolecraft/internal/store/sqlite"
)

// openDB picks the backend from the DSN scheme and makes sure the schema
// exists before handing the store out.
func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	db, err := dial(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}

func dial(ctx context.Context, dsn string) (store.Store, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		client, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		client, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported database dsn %q: expected sqlite:// or postgres://", dsn)
	}
}
