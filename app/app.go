package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/pug-bot/app/eventbus"
	"github.com/Black-And-White-Club/pug-bot/app/modules/pug"
	pugevents "github.com/Black-And-White-Club/pug-bot/app/modules/pug/events"
	pugmigrations "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/pug-bot/app/observability"
	"github.com/Black-And-White-Club/pug-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App wires configuration, infrastructure and modules together.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	PugModule     *pug.Module
	HTTPServer    *http.Server

	logger       *slog.Logger
	routerCancel context.CancelFunc
	routerCtx    context.Context
	wg           sync.WaitGroup
}

// NewApp builds every dependency in order: observability, database, event
// bus, message router, modules, HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	obs, err := observability.Init(ctx, config.ToObsConfig(cfg, version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Provider.Logger

	a := &App{
		Config:        cfg,
		Observability: obs,
		logger:        logger,
	}

	if cfg.Postgres.DSN != "" {
		db, err := openDB(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.DB = db
		if err := runMigrations(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	a.EventBus, err = eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		JetStream:  cfg.NATS.JetStream,
		StreamName: pugevents.StreamName,
		Subjects:   pugevents.StreamSubjects,
		QueueGroup: cfg.NATS.QueueGroup,
	}, logger)
	if err != nil {
		a.closeDB()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	a.Router, err = message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, watermill.NewSlogLogger(logger))
	if err != nil {
		a.closeInfra()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	a.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	a.routerCtx, a.routerCancel = context.WithCancel(context.Background())
	a.PugModule, err = pug.NewPugModule(ctx, cfg, obs, a.EventBus, a.Router, a.routerCtx, a.DB)
	if err != nil {
		a.routerCancel()
		a.closeInfra()
		return nil, fmt.Errorf("failed to initialize pug module: %w", err)
	}

	a.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.PugModule.HTTPHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// Run serves until ctx is cancelled or a component fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Router.Run(a.routerCtx); err != nil {
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	})

	a.wg.Add(1)
	go a.PugModule.Run(gctx, &a.wg)

	g.Go(func() error {
		a.logger.InfoContext(gctx, "HTTP server listening", slog.String("addr", a.HTTPServer.Addr))
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down application")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Close(shutdownCtx)
	})

	return g.Wait()
}

// Close stops modules and releases infrastructure. It is safe to call once
// after Run returns or instead of Run.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.PugModule != nil {
		if err := a.PugModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.routerCancel()
	a.wg.Wait()

	a.closeInfra()

	if err := a.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("observability shutdown: %w", err))
	}

	a.logger.Info("Application shut down")
	return errors.Join(errs...)
}

func (a *App) closeInfra() {
	if a.EventBus != nil {
		if err := a.EventBus.Close(); err != nil {
			a.logger.Error("Failed to close event bus", slog.Any("error", err))
		}
	}
	a.closeDB()
}

func (a *App) closeDB() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.logger.Error("Failed to close database", slog.Any("error", err))
		}
	}
}

func openDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func runMigrations(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrator := migrate.NewMigrator(db, pugmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if group.IsZero() {
		logger.InfoContext(ctx, "Database schema up to date")
	} else {
		logger.InfoContext(ctx, "Database migrated", slog.String("group", group.String()))
	}
	return nil
}
