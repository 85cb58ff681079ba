// Package app assembles the monitor: config, API client, snapshot store and
// cache, polling loops, command dispatcher, and the optional refresh
// scheduler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/tessario/messis/internal/api"
	"github.com/tessario/messis/internal/common"
	"github.com/tessario/messis/internal/dispatch"
	"github.com/tessario/messis/internal/interfaces"
	"github.com/tessario/messis/internal/poller"
	"github.com/tessario/messis/internal/scheduler"
	badgerstorage "github.com/tessario/messis/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Client        *api.Client
	reads         interfaces.ReadAPI
	Store         *poller.Store
	Poller        *poller.Poller
	Dispatcher    *dispatch.Dispatcher
	SnapshotCache interfaces.SnapshotCache

	SchedulerService *scheduler.Service

	db        *badgerstorage.BadgerDB
	cancelCtx context.CancelFunc
}

// New initializes the application with all dependencies. Polling does not
// start until Start is called.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initClient(); err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}

	if err := app.initStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	app.Dispatcher = dispatch.New(app.Client, app.Poller, app.Logger)

	if cfg.Scheduler.Enabled {
		app.SchedulerService = scheduler.NewService(app.Dispatcher, cfg.Scheduler, cfg.Watch.DossierID, app.Logger)
	}

	return app, nil
}

func (a *App) initClient() error {
	timeout, err := a.Config.ServiceTimeout()
	if err != nil {
		return err
	}

	a.Client = api.NewClient(
		api.WithBaseURL(a.Config.Service.BaseURL),
		api.WithAPIKey(a.Config.Service.APIKey),
		api.WithHTTPClient(&http.Client{Timeout: timeout}),
		api.WithLogger(a.Logger),
		api.WithRateLimit(a.Config.Service.RateLimit),
	)
	a.reads = a.Client
	return nil
}

// initStore opens the snapshot cache, seeds the in-memory store from it, and
// arranges for every committed snapshot to be written back.
func (a *App) initStore() error {
	a.Store = poller.NewStore()
	a.Poller = poller.New(a.Store, a.Logger)

	db, err := badgerstorage.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.db = db
	a.SnapshotCache = badgerstorage.NewSnapshotStorage(db, a.Logger)

	cached, err := a.SnapshotCache.LoadSnapshots(context.Background())
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load cached snapshots, starting cold")
	} else if len(cached) > 0 {
		a.Store.Seed(cached)
		a.Logger.Info().Int("collections", len(cached)).Msg("Restored cached snapshots")
	}

	a.Poller.OnCommit(func(snap poller.Snapshot) {
		a.logSnapshot(snap)
		if err := a.SnapshotCache.SaveSnapshot(context.Background(), snap); err != nil {
			a.Logger.Warn().Err(err).Str("collection", string(snap.Collection)).Msg("Failed to persist snapshot")
		}
	})

	return nil
}

// Start launches a polling loop for every collection the watch config names,
// plus the scheduler when enabled. Loops run until the returned context from
// Stop is cancelled.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancelCtx = context.WithCancel(ctx)

	a.Poller.Watch(ctx, poller.CollectionJobs, func(ctx context.Context) (interface{}, error) {
		return a.reads.ListJobs(ctx)
	}, poller.JobsActivity)

	if dossierID := a.Config.Watch.DossierID; dossierID != "" {
		a.Poller.Watch(ctx, poller.CollectionAnalysis, func(ctx context.Context) (interface{}, error) {
			return a.reads.GetDossierEditionAnalysis(ctx, dossierID)
		}, poller.AnalysisActivity)
	}

	if paperID := a.Config.Watch.PaperID; paperID != "" {
		a.Poller.Watch(ctx, poller.CollectionCitations, func(ctx context.Context) (interface{}, error) {
			return a.reads.GetPaperCitations(ctx, paperID)
		}, nil)
	}

	if thinker := a.Config.Watch.Thinker; thinker != "" {
		a.Poller.Watch(ctx, poller.CollectionBibliography, func(ctx context.Context) (interface{}, error) {
			return a.reads.GetThinkerBibliography(ctx, thinker)
		}, nil)
	}

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	a.Logger.Info().
		Str("service", a.Config.Service.BaseURL).
		Str("dossier_id", a.Config.Watch.DossierID).
		Str("paper_id", a.Config.Watch.PaperID).
		Msg("Monitor started")

	return nil
}

// Close stops polling, the scheduler, and the snapshot cache.
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.Poller != nil {
		a.Poller.Wait()
	}

	if a.db != nil {
		if err := a.db.RunGC(); err != nil {
			a.Logger.Debug().Err(err).Msg("Snapshot cache GC cycle failed")
		}
		if err := a.db.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close snapshot cache")
		}
	}

	a.Logger.Info().Msg("Monitor stopped")
	return nil
}
