package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/manifest"
	"github.com/learnstack/pagegen/internal/store"
)

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(st, log), st
}

// seedContent writes one subject, one homepage and a manifest into the store.
func seedContent(t *testing.T, st *store.Store) {
	t.Helper()

	sub := &content.Subject{
		Type:       content.TypeSubject,
		ID:         "kotlin",
		Name:       "Kotlin",
		BaseURL:    "/kotlin",
		TotalPages: 1,
		Sections:   []string{"Basics"},
		Content: []content.ContentItem{{
			ID:           1,
			Type:         "tutorial",
			Title:        "Intro",
			URL:          "intro",
			Content:      "# Intro",
			Section:      "Basics",
			LastModified: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	if err := st.WriteJSON(sub.ArtifactName(), sub); err != nil {
		t.Fatalf("write subject: %v", err)
	}

	home := &content.Homepage{
		Type:  content.TypeHomepage,
		ID:    "kotlin",
		Title: "Kotlin",
		Sections: []content.HomepageSection{{
			Name:      "Basics",
			Tutorials: []content.TutorialLink{{Title: "Intro", URL: "/kotlin/intro"}},
		}},
	}
	if err := st.WriteJSON(home.ArtifactName(), home); err != nil {
		t.Fatalf("write homepage: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := manifest.Build(st, log)
	if err != nil {
		t.Fatalf("manifest.Build: %v", err)
	}
	if err := manifest.Write(st, m); err != nil {
		t.Fatalf("manifest.Write: %v", err)
	}
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandleManifest(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	rec := get(t, srv, "/api/manifest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var m content.Manifest
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if m.BuildID == "" {
		t.Error("BuildID should not be empty")
	}
	if m.TotalSubjects != 1 || m.TotalHomepages != 1 {
		t.Errorf("totals = %d/%d, want 1/1", m.TotalSubjects, m.TotalHomepages)
	}
}

func TestHandleManifest_NoBuildYet(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv, "/api/manifest")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] == "" {
		t.Error("expected a json error body")
	}
}

func TestHandleListSubjects(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	rec := get(t, srv, "/api/subjects")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Subjects []content.SubjectSummary `json:"subjects"`
		Total    int                      `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Total != 1 || len(envelope.Subjects) != 1 {
		t.Fatalf("total = %d, subjects = %d", envelope.Total, len(envelope.Subjects))
	}
	if envelope.Subjects[0].ID != "kotlin" {
		t.Errorf("subject ID = %q", envelope.Subjects[0].ID)
	}
}

func TestHandleSubject(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	rec := get(t, srv, "/api/subjects/kotlin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var sub content.Subject
	if err := json.NewDecoder(rec.Body).Decode(&sub); err != nil {
		t.Fatalf("decode subject: %v", err)
	}
	if sub.Name != "Kotlin" || sub.BaseURL != "/kotlin" {
		t.Errorf("subject = %+v", sub)
	}
	if len(sub.Content) != 1 || sub.Content[0].Title != "Intro" {
		t.Errorf("content = %+v", sub.Content)
	}
}

func TestHandleSubject_NotFound(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	rec := get(t, srv, "/api/subjects/rust")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSubject_RejectsNonSlug(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	for _, path := range []string{
		"/api/subjects/Kotlin",
		"/api/subjects/..%2Ffile-hashes",
		"/api/subjects/file-hashes.json",
	} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestHandleSubject_ReservedNamesHidden(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)
	if err := st.WriteJSON(store.LedgerName, map[string]string{"a.csv": "deadbeef"}); err != nil {
		t.Fatalf("write ledger: %v", err)
	}

	// "manifest" and "file-hashes" are valid slugs whose artifact names
	// collide with the bookkeeping files. They must stay unreachable.
	for _, path := range []string{
		"/api/subjects/manifest",
		"/api/subjects/file-hashes",
	} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestHandleSubject_KindMismatch(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	// A homepage document stored under a plain subject-style name must not
	// be served from the subject route.
	home := &content.Homepage{Type: content.TypeHomepage, ID: "fake", Title: "Fake"}
	if err := st.WriteJSON("fake.json", home); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := get(t, srv, "/api/subjects/fake")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleHomepage(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	rec := get(t, srv, "/api/homepages/kotlin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var home content.Homepage
	if err := json.NewDecoder(rec.Body).Decode(&home); err != nil {
		t.Fatalf("decode homepage: %v", err)
	}
	if home.Title != "Kotlin" || len(home.Sections) != 1 {
		t.Errorf("homepage = %+v", home)
	}
}

func TestHandleHomepage_NotFound(t *testing.T) {
	srv, st := testServer(t)
	seedContent(t, st)

	rec := get(t, srv, "/api/homepages/rust")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSitemap(t *testing.T) {
	srv, st := testServer(t)
	if err := st.WriteFile(store.SitemapName, []byte(`<?xml version="1.0"?><urlset></urlset>`)); err != nil {
		t.Fatalf("write sitemap: %v", err)
	}

	rec := get(t, srv, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHandleSitemap_NotDeployed(t *testing.T) {
	srv, _ := testServer(t)

	rec := get(t, srv, "/sitemap.xml")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleRobots(t *testing.T) {
	srv, st := testServer(t)
	if err := st.WriteFile(store.RobotsName, []byte("User-agent: *\nAllow: /\n")); err != nil {
		t.Fatalf("write robots: %v", err)
	}

	rec := get(t, srv, "/robots.txt")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User-agent") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"kotlin", true},
		{"jetpack-compose", true},
		{"blog", true},
		{"", false},
		{"Kotlin", false},
		{"../escape", false},
		{"two words", false},
		{"trailing-", false},
	}

	for _, tt := range tests {
		if got := validSlug(tt.slug); got != tt.want {
			t.Errorf("validSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}
