// Package app wires the offboarding components against a SQLite database.
package app

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matthewbaird/offboarding/internal/activity"
	"github.com/matthewbaird/offboarding/internal/config"
	"github.com/matthewbaird/offboarding/internal/database"
	"github.com/matthewbaird/offboarding/internal/event"
	"github.com/matthewbaird/offboarding/internal/eventbus"
	"github.com/matthewbaird/offboarding/internal/metrics"
	"github.com/matthewbaird/offboarding/internal/offboarding"
)

// App holds the wired components.
type App struct {
	Logger       hclog.Logger
	Store        *offboarding.SQLStore
	Activity     *activity.SQLStore
	Bus          *eventbus.Bus
	Orchestrator *offboarding.Orchestrator
	Disposition  *offboarding.DispositionEngine
	// Currency is the default billing currency for new leases.
	Currency string

	drv *entsql.Driver
}

// New opens and migrates the database, then wires every component. The
// event bus is started on ctx. Metrics are registered with reg when it is
// non-nil.
func New(ctx context.Context, cfg *config.Config, logger hclog.Logger, reg prometheus.Registerer) (*App, error) {
	drv, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, err
	}
	logger.Debug("database migrated")

	store := offboarding.NewSQLStore(drv)
	acts := activity.NewSQLStore(drv)

	bus := eventbus.New(cfg.EventBufferSize, logger)
	bus.Subscribe("log", eventbus.NewLogConsumer(logger))
	bus.Start(ctx)

	recorder := event.NewActivityRecorder(acts)
	recorder.SetPublisher(bus)

	ocfg := cfg.Offboarding()
	if reg != nil {
		ocfg.Metrics = metrics.New(reg)
	}
	engine := offboarding.NewDispositionEngine(store, recorder, logger, cfg.Retry())
	engine.SetMetrics(ocfg.Metrics)

	return &App{
		Logger:       logger,
		Store:        store,
		Activity:     acts,
		Bus:          bus,
		Orchestrator: offboarding.NewOrchestrator(store, recorder, logger, ocfg),
		Disposition:  engine,
		Currency:     cfg.DefaultCurrency,
		drv:          drv,
	}, nil
}

// Close drains the event bus and closes the database.
func (a *App) Close() error {
	a.Bus.Stop()
	return a.drv.Close()
}
