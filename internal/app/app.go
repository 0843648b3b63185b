package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/common"
	"github.com/ternarybob/vigil/internal/handlers"
	"github.com/ternarybob/vigil/internal/interfaces"
	"github.com/ternarybob/vigil/internal/notify"
	"github.com/ternarybob/vigil/internal/railway"
	"github.com/ternarybob/vigil/internal/services/events"
	"github.com/ternarybob/vigil/internal/services/scheduler"
	"github.com/ternarybob/vigil/internal/services/watchdog"
	badgerstorage "github.com/ternarybob/vigil/internal/storage/badger"
)

// checkJobName is the scheduler registration name for the poll cycle
const checkJobName = "watchdog-check"

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	EventService     interfaces.EventService
	WatchdogService  *watchdog.Service
	SchedulerService interfaces.SchedulerService

	RailwayClient *railway.Client
	Fetcher       interfaces.SnapshotFetcher
	Notifier      interfaces.Notifier

	// HTTP handlers
	WatchdogHandler  *handlers.WatchdogHandler
	SchedulerHandler *handlers.SchedulerHandler
	WSHandler        *handlers.WebSocketHandler

	// ctx covers background work started by the app; Close cancels it so a
	// pending autostart cycle never fires after shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	// Storage
	storageManager, err := badgerstorage.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	// Event bus (WebSocket handler subscribes before any cycle can run)
	app.EventService = events.NewService(logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, logger)

	// Railway API client and snapshot fetcher
	app.RailwayClient = railway.NewClient(cfg.Railway.Token,
		railway.WithBaseURL(cfg.Railway.APIURL),
		railway.WithRateLimit(cfg.Railway.RateLimit),
		railway.WithTimeout(cfg.Railway.RequestTimeout),
		railway.WithLogger(logger),
	)
	app.Fetcher = railway.NewFetcher(app.RailwayClient, cfg.Railway.ProjectID, cfg.Railway.LogLimit)

	// Notifier (optional: empty webhook URL disables posting)
	if cfg.Notify.WebhookURL != "" {
		app.Notifier = notify.NewWebhookClient(cfg.Notify.WebhookURL, cfg.Notify.BotName,
			notify.WithTimeout(cfg.Notify.AlertTimeout),
			notify.WithLogger(logger),
		)
	} else {
		logger.Warn().Msg("No webhook URL configured, alerts will be logged only")
	}

	// Watchdog orchestrator
	app.WatchdogService = watchdog.NewService(
		cfg,
		app.Fetcher,
		app.Notifier,
		storageManager.AlertStorage(),
		app.EventService,
		logger,
	)

	// Scheduler with the watchdog check registered
	schedulerService := scheduler.NewService(logger)
	schedule := fmt.Sprintf("@every %s", cfg.Watchdog.CheckInterval)
	if err := schedulerService.RegisterJob(checkJobName, schedule, "Poll services for new errors and crashes", func() error {
		return app.WatchdogService.RunScheduled(context.Background())
	}); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to register watchdog job: %w", err)
	}
	app.SchedulerService = schedulerService

	// HTTP handlers
	app.WatchdogHandler = handlers.NewWatchdogHandler(app.WatchdogService, app.Fetcher, storageManager.AlertStorage(), cfg, logger)
	app.SchedulerHandler = handlers.NewSchedulerHandler(app.SchedulerService, logger)

	return app, nil
}

// Start begins scheduled polling and, when configured, an immediate first cycle
func (a *App) Start() error {
	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	a.Logger.Info().
		Str("interval", a.Config.Watchdog.CheckInterval.String()).
		Str("project_id", a.Config.Railway.ProjectID).
		Msg("Watchdog polling started")

	if a.Config.Watchdog.Autostart {
		common.SafeGoWithContext(a.ctx, a.Logger, "initial-check", func() {
			_ = a.WatchdogService.RunScheduled(a.ctx)
		})
	}

	return nil
}

// Close stops the scheduler and releases resources
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
		}
	}

	if a.EventService != nil {
		_ = a.EventService.Close()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
	}
}
