// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/config"
	"github.com/wakuvilla/hostmerge/internal/history"
	"github.com/wakuvilla/hostmerge/internal/logging"
	"github.com/wakuvilla/hostmerge/internal/metrics"
	"github.com/wakuvilla/hostmerge/internal/notify"
	"github.com/wakuvilla/hostmerge/internal/storage"
	"github.com/wakuvilla/hostmerge/internal/store"
)

// App holds the shared, long-lived services for the application. It is
// initialized once at startup and passed to the commands that need it.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	notifier     notify.Notifier
	output       storage.Provider
	historyStore history.Store
	healthStore  *store.HealthStore
	closers      []func() error
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Notifier returns the configured notification sink.
func (a *App) Notifier() notify.Notifier { return a.notifier }

// Output returns the configured output publisher.
func (a *App) Output() storage.Provider { return a.output }

// HistoryStore returns the configured history backend.
func (a *App) HistoryStore() history.Store { return a.historyStore }

// HealthStore returns the per-source health persistence.
func (a *App) HealthStore() *store.HealthStore { return a.healthStore }

// NewApp builds the service container from configuration. It fails fast if
// any critical service cannot be initialized.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	a := &App{cfg: cfg, logger: logger}
	a.healthStore = store.NewHealthStore(cfg.Health.StatePath, logger)

	if err := a.initNotifier(ctx); err != nil {
		return nil, err
	}
	if err := a.initOutput(ctx); err != nil {
		return nil, err
	}
	if err := a.initHistory(ctx); err != nil {
		return nil, err
	}

	logger.Info("application services initialized",
		zap.String("notify", cfg.Notify.Provider),
		zap.String("output", cfg.Output.Provider),
		zap.String("history", cfg.History.Backend),
	)
	return a, nil
}

func (a *App) initNotifier(ctx context.Context) error {
	switch a.cfg.Notify.Provider {
	case "telegram":
		n, err := notify.NewTelegramNotifier(a.cfg.Notify.TelegramToken, a.cfg.Notify.TelegramChat)
		if err != nil {
			return fmt.Errorf("init telegram notifier: %w", err)
		}
		a.notifier = n
	case "pubsub":
		n, err := notify.NewPubSubNotifier(ctx, a.cfg.Notify.ProjectID, a.cfg.Notify.TopicID)
		if err != nil {
			return fmt.Errorf("init pubsub notifier: %w", err)
		}
		a.notifier = n
		a.closers = append(a.closers, n.Close)
	case "log":
		a.notifier = notify.NewLogNotifier(a.logger)
	case "noop":
		a.notifier = notify.NoopNotifier{}
	default:
		return fmt.Errorf("unknown notify provider: %s", a.cfg.Notify.Provider)
	}
	return nil
}

func (a *App) initOutput(ctx context.Context) error {
	switch a.cfg.Output.Provider {
	case "local":
		a.output = storage.NewLocalProvider()
	case "gcs":
		p, err := storage.NewGCSProvider(ctx, a.cfg.Output.GCSBucket, a.logger)
		if err != nil {
			return fmt.Errorf("init GCS output: %w", err)
		}
		a.output = p
		a.closers = append(a.closers, p.Close)
	case "noop":
		a.logger.Info("using no-op output provider, merged list will be discarded")
		a.output = storage.NoOpProvider{}
	default:
		return fmt.Errorf("unknown output provider: %s", a.cfg.Output.Provider)
	}
	return nil
}

func (a *App) initHistory(ctx context.Context) error {
	switch a.cfg.History.Backend {
	case "csv":
		a.historyStore = history.NewCSVStore(a.cfg.History.CSVPath, a.logger)
	case "postgres":
		s, err := history.NewPostgresStore(ctx, history.PostgresConfig{
			DSN:       a.cfg.History.DSN,
			Table:     a.cfg.History.Table,
			Retention: a.cfg.History.Retention,
		})
		if err != nil {
			return fmt.Errorf("init postgres history: %w", err)
		}
		a.historyStore = s
		a.closers = append(a.closers, func() error { s.Close(); return nil })
	default:
		return fmt.Errorf("unknown history backend: %s", a.cfg.History.Backend)
	}
	return nil
}

// Close gracefully shuts down all services in the container.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("service shutdown error", zap.Error(err))
		}
	}
	// Best-effort flush; stderr sync failures are expected in some environments.
	_ = a.logger.Sync()
}
