package pughttp

import (
	"log/slog"
	"net/http"
	"time"

	pugservice "github.com/Black-And-White-Club/pug-bot/app/modules/pug/application"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter serves the read API over the game and the match history. A nil
// metrics handler leaves /metrics unmounted.
func NewRouter(svc pugservice.Service, metrics http.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", healthHandler())
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/pug", func(r chi.Router) {
		r.Get("/status", statusHandler(svc, logger))
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", listMatchesHandler(svc, logger))
			r.Get("/{matchID}", getMatchHandler(svc, logger))
		})
	})

	return r
}
