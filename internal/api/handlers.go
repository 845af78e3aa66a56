package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/manifest"
	"github.com/learnstack/pagegen/internal/store"
)

// handleManifest returns the manifest of the last build verbatim.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	data, err := s.st.ReadRaw(store.ManifestName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			jsonError(w, "no manifest found, run a build first", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to read manifest: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleListSubjects lists the subject summaries from the manifest.
func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	m, err := manifest.Read(s.st)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			jsonError(w, "no manifest found, run a build first", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to read manifest: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"subjects": m.Subjects,
		"total":    m.TotalSubjects,
	})
}

// handleSubject returns a single subject artifact by slug.
func (s *Server) handleSubject(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !validSlug(slug) {
		jsonError(w, "subject not found", http.StatusNotFound)
		return
	}
	s.serveArtifact(w, slug+".json", content.TypeSubject)
}

// handleHomepage returns a single homepage artifact by slug.
func (s *Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !validSlug(slug) {
		jsonError(w, "homepage not found", http.StatusNotFound)
		return
	}
	s.serveArtifact(w, slug+content.HomeSuffix+".json", content.TypeHomepage)
}

// serveArtifact streams a cached artifact after checking it is of the
// expected kind, so a homepage slug cannot fetch a subject or vice versa.
// The manifest and the hash ledger are plain JSON files in the same
// directory and must never be reachable through an artifact route.
func (s *Server) serveArtifact(w http.ResponseWriter, name, kind string) {
	if name == store.ManifestName || name == store.LedgerName {
		jsonError(w, "artifact not found", http.StatusNotFound)
		return
	}

	data, err := s.st.ReadRaw(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			jsonError(w, "artifact not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to read artifact: "+err.Error(), http.StatusInternalServerError)
		return
	}

	got, err := content.Classify(data)
	if err != nil || got != kind {
		jsonError(w, "artifact not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	s.serveSEOFile(w, store.SitemapName, "application/xml; charset=utf-8")
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	s.serveSEOFile(w, store.RobotsName, "text/plain; charset=utf-8")
}

func (s *Server) serveSEOFile(w http.ResponseWriter, name, contentType string) {
	data, err := s.st.ReadRaw(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			jsonError(w, name+" not found, run deploy first", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to read "+name, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// validSlug rejects anything a slug could not have produced, which also
// keeps path traversal out of the cache directory.
func validSlug(slug string) bool {
	return slug != "" && content.Slugify(slug) == slug
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
