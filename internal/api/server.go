package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docfind/internal/config"
	"github.com/dgallion1/docfind/internal/pipeline"
	"github.com/dgallion1/docfind/internal/session"
	"github.com/dgallion1/docfind/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docfind.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     *session.Store
	stats        *stats.Window
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, sessions *session.Store, st *stats.Window, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		stats:        st,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocfindAPIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Post("/api/documents/batch", s.handleBatchUpload)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/search", s.handleSearchStats)

		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleSessionInfo)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/search", s.handleSearch)
			r.Post("/next", s.handleNext)
			r.Post("/previous", s.handlePrevious)
			r.Post("/clear", s.handleClear)
			r.Get("/status", s.handleStatus)
			r.Get("/html", s.handleHTML)
			r.Post("/content", s.handleAppendContent)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"sessions":    s.sessions.Len(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
