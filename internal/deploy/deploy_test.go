package deploy

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/learnstack/pagegen/internal/config"
	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/manifest"
	"github.com/learnstack/pagegen/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{SiteURL: "https://www.example.com"}
}

// seedBuild populates a store the way a pipeline run would: artifacts,
// a hash ledger and a manifest.
func seedBuild(t *testing.T, st *store.Store) {
	t.Helper()

	sub := &content.Subject{
		Type:       content.TypeSubject,
		ID:         "kotlin",
		Name:       "Kotlin",
		BaseURL:    "/kotlin",
		TotalPages: 2,
		Content: []content.ContentItem{
			{ID: 1, Title: "Intro", URL: "intro", Content: "x", LastModified: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 2, Title: "Classes", URL: "classes", Content: "y", LastModified: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
	if err := st.WriteJSON(sub.ArtifactName(), sub); err != nil {
		t.Fatalf("write subject: %v", err)
	}
	if err := st.WriteJSON(store.LedgerName, map[string]string{"Kotlin.csv": "abc"}); err != nil {
		t.Fatalf("write ledger: %v", err)
	}

	m, err := manifest.Build(st, testLogger())
	if err != nil {
		t.Fatalf("manifest.Build: %v", err)
	}
	if err := manifest.Write(st, m); err != nil {
		t.Fatalf("manifest.Write: %v", err)
	}
}

func TestPrepare_RequiresManifest(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	_, err = Prepare(st, testConfig(), testLogger())
	if err == nil {
		t.Fatal("expected an error for a cache with no manifest")
	}
	if !strings.Contains(err.Error(), "run build first") {
		t.Errorf("err = %v", err)
	}
}

func TestPrepare_WritesSEOFiles(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	seedBuild(t, st)

	res, err := Prepare(st, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	// Root entry plus the two subject pages.
	if res.SitemapEntries != 3 {
		t.Errorf("SitemapEntries = %d, want 3", res.SitemapEntries)
	}

	sitemap, err := st.ReadRaw(store.SitemapName)
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	for _, want := range []string{
		"https://www.example.com/",
		"https://www.example.com/kotlin/intro",
		"https://www.example.com/kotlin/classes",
	} {
		if !bytes.Contains(sitemap, []byte(want)) {
			t.Errorf("sitemap missing %q", want)
		}
	}

	robots, err := st.ReadRaw(store.RobotsName)
	if err != nil {
		t.Fatalf("read robots: %v", err)
	}
	if !bytes.Contains(robots, []byte("Sitemap: https://www.example.com/sitemap.xml")) {
		t.Errorf("robots.txt = %q", robots)
	}
}

func TestPrepare_CompressesSidecars(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	seedBuild(t, st)

	res, err := Prepare(st, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	// kotlin.json, manifest.json, sitemap.xml, robots.txt.
	if res.Compressed != 4 {
		t.Errorf("Compressed = %d, want 4", res.Compressed)
	}

	for _, name := range []string{
		"kotlin.json.gz",
		store.ManifestName + ".gz",
		store.SitemapName + ".gz",
		store.RobotsName + ".gz",
	} {
		if _, err := os.Stat(filepath.Join(st.Dir(), name)); err != nil {
			t.Errorf("missing sidecar %s: %v", name, err)
		}
	}

	if _, err := os.Stat(filepath.Join(st.Dir(), store.LedgerName+".gz")); !os.IsNotExist(err) {
		t.Error("hash ledger must not get a sidecar")
	}

	// The sidecar must decompress back to the exact artifact bytes.
	raw, err := st.ReadRaw("kotlin.json")
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	gzData, err := st.ReadRaw("kotlin.json.gz")
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(gzData))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer zr.Close()
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("decompressed sidecar differs from the artifact")
	}
}

func TestPrepare_SecondRunDoesNotStack(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	seedBuild(t, st)

	if _, err := Prepare(st, testConfig(), testLogger()); err != nil {
		t.Fatalf("first Prepare: %v", err)
	}
	res, err := Prepare(st, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if res.Compressed != 4 {
		t.Errorf("Compressed = %d, want 4", res.Compressed)
	}

	entries, err := os.ReadDir(st.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".gz.gz") {
			t.Errorf("stacked sidecar %s", e.Name())
		}
	}
}

func TestPrepare_CorruptManifestFails(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if err := st.WriteFile(store.ManifestName, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err = Prepare(st, testConfig(), testLogger())
	if err == nil {
		t.Fatal("expected an error for a corrupt manifest")
	}
	if !strings.Contains(err.Error(), "manifest") {
		t.Errorf("err = %v", err)
	}
}
