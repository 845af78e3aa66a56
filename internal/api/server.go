// Package api serves the cache directory over HTTP for local preview:
// the manifest, artifacts by slug, and the SEO files. It is read-only;
// content changes always go through the pipeline.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/learnstack/pagegen/internal/store"
)

// Server is the preview HTTP server.
type Server struct {
	router chi.Router
	st     *store.Store
	log    *slog.Logger
}

// NewServer creates and configures the preview server over a store.
func NewServer(st *store.Store, log *slog.Logger) *Server {
	s := &Server{
		st:  st,
		log: log,
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

	r.Get("/healthz", s.handleHealth)

	r.Get("/api/manifest", s.handleManifest)
	r.Get("/api/subjects", s.handleListSubjects)
	r.Get("/api/subjects/{slug}", s.handleSubject)
	r.Get("/api/homepages/{slug}", s.handleHomepage)

	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/robots.txt", s.handleRobots)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
