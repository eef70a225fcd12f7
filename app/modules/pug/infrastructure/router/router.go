package pugrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/pug-bot/app/eventbus"
	pugevents "github.com/Black-And-White-Club/pug-bot/app/modules/pug/events"
	pughandlers "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/handlers"
	"github.com/Black-And-White-Club/pug-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// PugRouter handles Watermill handler registration for pug events.
type PugRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewPugRouter creates a new PugRouter.
func NewPugRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *PugRouter {
	return &PugRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *PugRouter) Configure(_ context.Context, handlers pughandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandlers wires command topics to handler methods.
func (r *PugRouter) registerHandlers(handlers pughandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, pugevents.JoinRequestedV1, handlers.HandleJoinRequested)
	registerHandler(deps, pugevents.LeaveRequestedV1, handlers.HandleLeaveRequested)
	registerHandler(deps, pugevents.CaptainRequestedV1, handlers.HandleCaptainRequested)
	registerHandler(deps, pugevents.PickRequestedV1, handlers.HandlePickRequested)
	registerHandler(deps, pugevents.ResetRequestedV1, handlers.HandleResetRequested)
	registerHandler(deps, pugevents.StatusRequestedV1, handlers.HandleStatusRequested)

	r.logger.Info("Pug module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "pug." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *PugRouter) Close() error {
	return r.router.Close()
}
