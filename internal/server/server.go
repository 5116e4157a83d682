package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/wovenlabs/loom/internal/engine"
)

// Server is the loom HTTP API server.
type Server struct {
	engine  *engine.Engine
	router  chi.Router
	version string
	origins []string
	started time.Time
}

// New creates a new Server around the given engine. origins lists the
// browser origins allowed by CORS; the graph view runs as a separate
// frontend and needs it.
func New(eng *engine.Engine, version string, origins []string) *Server {
	s := &Server{
		engine:  eng,
		version: version,
		origins: origins,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/messages", s.handleIngestMessage)
		r.Get("/messages", s.handleRecentMessages)
		r.Get("/graph", s.handleGraph)
		r.Post("/reset", s.handleReset)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.engine.DB.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.engine.DB.Path,
		"llm":     s.engine.LLM != nil,
	})
}
