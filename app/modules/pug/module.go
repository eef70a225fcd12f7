package pug

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/pug-bot/app/eventbus"
	pugservice "github.com/Black-And-White-Club/pug-bot/app/modules/pug/application"
	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	pughandlers "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/handlers"
	pughttp "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/http"
	pugdb "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories"
	pugrouter "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/router"
	"github.com/Black-And-White-Club/pug-bot/app/observability"
	"github.com/Black-And-White-Club/pug-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the pug module.
type Module struct {
	PugService    pugservice.Service
	PugRouter     *pugrouter.PugRouter
	HTTPHandler   *chi.Mux
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewPugModule creates and initializes a new pug module. A nil db keeps the
// match history in memory.
func NewPugModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer
	metrics := obs.Registry.PugMetrics

	logger.InfoContext(ctx, "pug.NewPugModule initializing")

	// 1. Initialize Repository
	var repo pugdb.Repository
	if db != nil {
		repo = pugdb.NewRepository(db)
	} else {
		logger.WarnContext(ctx, "No database configured, match history is kept in memory")
		repo = pugdb.NewMemoryRepository(cfg.PUG.HistoryLimit)
	}

	// 2. Initialize Captain Policy
	policy, err := pugdomain.PolicyByName(cfg.PUG.CaptainPolicy, nil)
	if err != nil {
		return nil, err
	}

	// 3. Initialize Service
	service, err := pugservice.NewPugService(
		pugservice.Options{
			Game:      cfg.GameConfig(),
			Policy:    policy,
			AutoReset: cfg.PUG.AutoReset,
		},
		repo, logger, metrics, tracer, db,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pug service: %w", err)
	}

	// 4. Initialize Handlers
	limiter := pughandlers.NewPlayerRateLimiter(rate.Limit(cfg.PUG.CommandRate), cfg.PUG.CommandBurst)
	handlers := pughandlers.NewPugHandlers(service, logger, tracer, limiter, metrics)

	// 5. Initialize Router
	pugRouter := pugrouter.NewPugRouter(logger, router, eventBus, eventBus, tracer)

	// 6. Configure the router with handlers
	if err := pugRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure pug router: %w", err)
	}

	return &Module{
		PugService:    service,
		PugRouter:     pugRouter,
		HTTPHandler:   pughttp.NewRouter(service, obs.MetricsHandler(), logger),
		observability: obs,
	}, nil
}

// Run starts the pug module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting pug module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Pug module goroutine stopped")
}

// Close shuts down the pug module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping pug module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.PugRouter != nil {
		if err := m.PugRouter.Close(); err != nil {
			logger.Error("Error closing PugRouter from module", "error", err)
			return fmt.Errorf("error closing PugRouter: %w", err)
		}
	}

	logger.Info("Pug module stopped")
	return nil
}
