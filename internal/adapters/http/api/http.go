// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pavelchuchma/vkct/internal/adapters/repository"
	"github.com/pavelchuchma/vkct/internal/domain/diag"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the store implementation.
type Dependencies interface {
	Categories(ctx context.Context) ([]string, error)
	Standings(ctx context.Context, category string, limit int) ([]repository.Entry, error)
	Rank(ctx context.Context, category, name, birthYear string) (repository.Entry, error)
	Diagnostics(ctx context.Context, minSeverity diag.Severity) ([]diag.Diagnostic, error)
	Info(ctx context.Context) (repository.Info, error)
}

// Server wires HTTP routes for the standings API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	categoriesHandler  *CategoriesHandler
	standingsHandler   *StandingsHandler
	rankHandler        *RankHandler
	diagnosticsHandler *DiagnosticsHandler
	refreshHandler     *RefreshHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithRefresher enables POST /refresh.
func WithRefresher(r Refresher) ServerOption {
	return func(s *Server) {
		if r != nil {
			s.refreshHandler = NewRefreshHandler(r)
		}
	}
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// limit query parameter of the standings endpoint.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		categoriesHandler:  NewCategoriesHandler(deps),
		standingsHandler:   NewStandingsHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		diagnosticsHandler: NewDiagnosticsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /categories", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("GET /standings/{category}", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("GET /rank/{category}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("GET /diagnostics", MetricsMiddleware(s.diagnosticsHandler.HandleGetDiagnostics, "diagnostics"))
	if s.refreshHandler != nil {
		mux.HandleFunc("POST /refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
	}
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

// writeStoreError translates store sentinels to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrAmbiguous):
		writeError(w, http.StatusConflict, "ambiguous", err)
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrEmpty):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
