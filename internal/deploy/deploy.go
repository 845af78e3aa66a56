// Package deploy prepares the cache directory for publishing. It renders
// the SEO files from the cached artifacts and writes precompressed .gz
// sidecars so the web server can serve them without compressing on the fly.
package deploy

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/learnstack/pagegen/internal/config"
	"github.com/learnstack/pagegen/internal/manifest"
	"github.com/learnstack/pagegen/internal/seo"
	"github.com/learnstack/pagegen/internal/store"
)

// Result reports what a deploy preparation produced.
type Result struct {
	SitemapEntries int `json:"sitemap_entries"`
	Compressed     int `json:"compressed"`
}

// Prepare renders sitemap.xml and robots.txt and compresses every servable
// file in the cache. It refuses to run against a cache with no manifest:
// SEO output for a half-built site would advertise URLs that do not exist.
func Prepare(st *store.Store, cfg config.Config, log *slog.Logger) (Result, error) {
	var res Result

	if _, err := manifest.Read(st); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("no manifest in %s: run build first", st.Dir())
		}
		return res, fmt.Errorf("read manifest: %w", err)
	}

	sitemap, entries, err := seo.BuildSitemap(st, cfg.SiteURL, time.Now().UTC(), log)
	if err != nil {
		return res, fmt.Errorf("build sitemap: %w", err)
	}
	if err := st.WriteFile(store.SitemapName, sitemap); err != nil {
		return res, fmt.Errorf("write sitemap: %w", err)
	}
	res.SitemapEntries = entries

	if err := st.WriteFile(store.RobotsName, seo.Robots(cfg.SiteURL)); err != nil {
		return res, fmt.Errorf("write robots: %w", err)
	}

	n, err := compressSidecars(st, log)
	if err != nil {
		return res, err
	}
	res.Compressed = n

	log.Info("deploy prepared",
		"sitemap_entries", res.SitemapEntries,
		"compressed", res.Compressed,
	)
	return res, nil
}

// compressSidecars writes a .gz sidecar next to every servable cache file.
// The hash ledger is build bookkeeping and is never published.
func compressSidecars(st *store.Store, log *slog.Logger) (int, error) {
	entries, err := os.ReadDir(st.Dir())
	if err != nil {
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == store.LedgerName || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".gz") {
			continue
		}
		switch filepath.Ext(name) {
		case ".json", ".xml", ".txt":
		default:
			continue
		}

		data, err := st.ReadRaw(name)
		if err != nil {
			return count, fmt.Errorf("read %s: %w", name, err)
		}
		gz, err := gzipBytes(data)
		if err != nil {
			return count, fmt.Errorf("compress %s: %w", name, err)
		}
		if err := st.WriteFile(name+".gz", gz); err != nil {
			return count, fmt.Errorf("write %s.gz: %w", name, err)
		}
		log.Debug("sidecar written", "file", name+".gz", "raw_bytes", len(data), "gz_bytes", len(gz))
		count++
	}
	return count, nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
