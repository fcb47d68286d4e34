package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"saturday-league/internal/league"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

type Options struct {
	// AdminPasswordHash is a bcrypt hash; when empty, writes are open.
	AdminPasswordHash  string
	CORSAllowedOrigins []string
	Logger             *slog.Logger
	// ReadyChecks are run by /readyz, keyed by dependency name.
	ReadyChecks map[string]func(context.Context) error
}

type Server struct {
	league    *league.Service
	logger    *slog.Logger
	adminHash string
	origins   []string
	checks    map[string]func(context.Context) error
}

func NewServer(svc *league.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{league: svc, logger: logger, adminHash: opts.AdminPasswordHash, origins: opts.CORSAllowedOrigins, checks: opts.ReadyChecks}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handlePlayersList)
		r.Get("/seasons", s.handleSeasonsList)
		r.Get("/sessions", s.handleSessionsList)
		r.Get("/sessions/{sessionID}", s.handleSessionShow)
		r.Get("/sessions/{sessionID}/standings", s.handleSessionStandings)
		r.Get("/sessions/{sessionID}/snapshot", s.handleSessionSnapshot)
		r.Get("/goals", s.handleGoalsList)
		r.Get("/scoreboard", s.handleScoreboard)
		r.Post("/schedule/preview", s.handleSchedulePreview)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(s.adminHash))
			r.Post("/players", s.handlePlayerCreate)
			r.Post("/seasons", s.handleSeasonCreate)
			r.Post("/sessions", s.handleSessionCreate)
			r.Post("/sessions/{sessionID}/games/{gameID}/result", s.handleGameResult)
			r.Post("/sessions/{sessionID}/complete", s.handleSessionComplete)
			r.Post("/goals", s.handleGoalCreate)
			r.Delete("/goals/{goalID}", s.handleGoalDelete)
		})
	})

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", adminHeader},
	}).Handler(r)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("readiness check failed", "dependency", name, "err", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Data: failed, Error: "dependencies unavailable"})
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ready"})
}
