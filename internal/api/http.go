// Package api serves the scouting engines as JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/classify"
	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/logger"
	"github.com/pable/gleague-scout/internal/model"
	"github.com/pable/gleague-scout/internal/normalize"
)

// Dependencies is the data surface handlers read from. loader.Cached
// satisfies it.
type Dependencies interface {
	Snapshot(ctx context.Context, scope model.Scope) (loader.Snapshot, error)
	Seasons(ctx context.Context, kind model.Kind) ([]int, error)
}

// Options tunes the engines behind the handlers.
type Options struct {
	Profile  aggregator.ProfileOptions
	Classify classify.Config
	Logger   logger.Logger
}

// DefaultOptions returns the reference engine settings.
func DefaultOptions() Options {
	return Options{
		Profile:  aggregator.DefaultProfileOptions(),
		Classify: classify.DefaultConfig(),
		Logger:   logger.Nop(),
	}
}

// Server wires HTTP routes for the scouting API.
type Server struct {
	deps  Dependencies
	opts  Options
	rules classify.RuleSet
	log   logger.Logger
}

// NewServer creates a server reading from deps.
func NewServer(deps Dependencies, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Server{
		deps:  deps,
		opts:  opts,
		rules: classify.ReferenceRules(opts.Classify),
		log:   opts.Logger,
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("GET /api/seasons", MetricsMiddleware(s.HandleSeasons, "seasons"))
	mux.HandleFunc("GET /api/players", MetricsMiddleware(s.HandlePlayers, "players"))
	mux.HandleFunc("GET /api/players/{name}/profile", MetricsMiddleware(s.HandleProfile, "profile"))
	mux.HandleFunc("GET /api/players/{name}/games", MetricsMiddleware(s.HandleGameLog, "games"))
	mux.HandleFunc("GET /api/rankings", MetricsMiddleware(s.HandleRankings, "rankings"))
	mux.HandleFunc("GET /api/teams", MetricsMiddleware(s.HandleTeams, "teams"))
	mux.HandleFunc("GET /api/targets", MetricsMiddleware(s.HandleTargets, "targets"))
}

// Handler returns the routed server wrapped with request ids.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return RequestID(mux)
}

func (s *Server) snapshot(ctx context.Context, scope model.Scope) (loader.Snapshot, error) {
	snap, err := s.deps.Snapshot(ctx, scope)
	if err != nil {
		s.log.Error(ctx, "snapshot failed", logger.String("scope", scope.String()), logger.Error(err))
	}
	return snap, err
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

// writeEngineError maps engine and loader errors to status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loader.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, normalize.ErrUnknownSubject):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, normalize.ErrEmptyPopulation):
		writeError(w, http.StatusNotFound, "no_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
