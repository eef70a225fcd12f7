package pughttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	pugservice "github.com/Black-And-White-Club/pug-bot/app/modules/pug/application"
	pugdb "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	defaultMatchLimit = 10
	maxMatchLimit     = 100
)

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func statusHandler(svc pugservice.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Status(r.Context())
		if err != nil {
			serverError(w, r, logger, "Failed to read game status", err)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func listMatchesHandler(svc pugservice.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultMatchLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxMatchLimit)
		}

		matches, err := svc.ListMatches(r.Context(), limit)
		if err != nil {
			serverError(w, r, logger, "Failed to list matches", err)
			return
		}
		if matches == nil {
			matches = []pugservice.MatchSummary{}
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func getMatchHandler(svc pugservice.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "matchID"))
		if err != nil {
			http.Error(w, "Invalid match ID", http.StatusBadRequest)
			return
		}

		match, err := svc.GetMatch(r.Context(), id)
		if errors.Is(err, pugdb.ErrNotFound) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if err != nil {
			serverError(w, r, logger, "Failed to load match", err)
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

func serverError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(r.Context(), msg,
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
