// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openvolley/scoresheet/internal/adapters/repository"
	"github.com/openvolley/scoresheet/internal/domain/derive"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// EventDependencies accept incoming events.
type EventDependencies interface {
	// SeenAndRecord reports whether the event id was already seen for the
	// match, recording it otherwise.
	SeenAndRecord(ctx context.Context, matchID, eventID string) bool
	Unrecord(ctx context.Context, matchID, eventID string)
	// Enqueue pushes an event for async append. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.Event) bool
}

// MatchDependencies store match records and serve derived views.
type MatchDependencies interface {
	PutMatch(ctx context.Context, m model.Match) error
	Match(ctx context.Context, matchID string) (model.Match, error)
	PutSet(ctx context.Context, matchID string, s model.Set) (model.Set, error)
	Matches(ctx context.Context) ([]string, error)
	Events(ctx context.Context, matchID string) ([]model.Event, error)
	SetView(ctx context.Context, matchID string, setIndex int, view sides.View) (derive.SetView, error)
	Summary(ctx context.Context, matchID string) (derive.MatchSummary, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventDependencies
	MatchDependencies
}

// Server wires HTTP routes for the scoresheet API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	matchesHandler *MatchesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		eventsHandler:  NewEventsHandler(deps),
		matchesHandler: NewMatchesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /events", MetricsMiddleware(s.eventsHandler.HandlePostEvents, "events"))

	m := s.matchesHandler
	mux.HandleFunc("GET /matches", MetricsMiddleware(m.HandleList, "matches"))
	mux.HandleFunc("GET /matches/{id}", MetricsMiddleware(m.HandleGetMatch, "match"))
	mux.HandleFunc("PUT /matches/{id}", MetricsMiddleware(m.HandlePutMatch, "match"))
	mux.HandleFunc("GET /matches/{id}/events", MetricsMiddleware(m.HandleEvents, "match_events"))
	mux.HandleFunc("GET /matches/{id}/summary", MetricsMiddleware(m.HandleSummary, "summary"))
	mux.HandleFunc("GET /matches/{id}/sets/{n}", MetricsMiddleware(m.HandleSetView, "set_view"))
	mux.HandleFunc("PUT /matches/{id}/sets/{n}", MetricsMiddleware(m.HandlePutSet, "set"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError translates repository errors into HTTP responses.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrInvalidSet),
		errors.Is(err, repository.ErrInvalidMatch),
		errors.Is(err, repository.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
