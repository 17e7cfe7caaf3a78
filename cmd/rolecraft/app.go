package main

import (
	"context"

	"go.uber.org/zap"

	"rolecraft/internal/config"
	"rolecraft/internal/emergence"
	"rolecraft/internal/evolution"
	"rolecraft/internal/notify"
	"rolecraft/internal/observability"
	"rolecraft/internal/scene"
	"rolecraft/internal/store"
)

// app is everything a command needs once the project config is loaded.
type app struct {
	cfg       *config.ProjectConfig
	catalog   *config.Catalog
	log       *zap.Logger
	db        store.Store
	bus       *notify.Bus
	evolution *evolution.Service
	emergence *emergence.Observer
	scenes    *scene.Manager
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, err := observability.NewLogger(cfg.Logging, cfg.Project)
	if err != nil {
		return nil, err
	}

	catalog, err := config.LoadCatalogOrDefault(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus := notify.NewBus(log)
	bus.Subscribe("log", notify.Logged(log))

	evo := evolution.New(db,
		evolution.WithEmitter(bus),
		evolution.WithLogger(log),
		evolution.WithCatalog(catalog),
	)
	observer := emergence.New(db,
		emergence.WithThresholds(emergence.ThresholdsFromConfig(cfg.Emergence)),
		emergence.WithEmitter(bus),
		emergence.WithLogger(log),
	)
	scenes := scene.New(db, scene.WithEmitter(bus), scene.WithLogger(log))

	return &app{
		cfg:       cfg,
		catalog:   catalog,
		log:       log,
		db:        db,
		bus:       bus,
		evolution: evo,
		emergence: observer,
		scenes:    scenes,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.db.Close(ctx); err != nil {
		a.log.Warn("closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}
