// Package store owns the cache directory that holds every generated
// artifact. All writes go through atomic temp-file renames so a reader
// never observes a partially-written artifact, even mid-build.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Reserved cache filenames. Everything else ending in .json is a content
// artifact (subject or homepage document).
const (
	ManifestName = "manifest.json"
	LedgerName   = "file-hashes.json"
	SitemapName  = "sitemap.xml"
	RobotsName   = "robots.txt"
)

// Store is the single owner of one cache directory. It is created at run
// start and passed to whatever needs artifact access; nothing else touches
// the directory.
type Store struct {
	dir string
}

// New opens (creating if needed) the cache directory at dir.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute path of a named cache file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// WriteJSON atomically writes v as indented JSON to <dir>/<name>.
func (s *Store) WriteJSON(name string, v any) error {
	return s.writeAtomic(name, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	})
}

// WriteFile atomically writes raw bytes to <dir>/<name>.
func (s *Store) WriteFile(name string, data []byte) error {
	return s.writeAtomic(name, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// ReadJSON reads <dir>/<name> into v. A missing artifact surfaces as an
// error satisfying errors.Is(err, fs.ErrNotExist).
func (s *Store) ReadJSON(name string, v any) error {
	b, err := os.ReadFile(s.Path(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// ReadRaw returns the raw bytes of a cache file.
func (s *Store) ReadRaw(name string) ([]byte, error) {
	return os.ReadFile(s.Path(name))
}

// ListArtifacts returns the sorted names of content artifacts: every .json
// file except the manifest and the hash ledger.
func (s *Store) ListArtifacts() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		if name == ManifestName || name == LedgerName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Clear empties the cache directory, leaving it ready for a fresh build.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clear cache directory: %w", err)
	}
	return os.MkdirAll(s.dir, 0o755)
}

// writeAtomic writes into a temporary sibling file, fsyncs, then renames
// over the final name.
func (s *Store) writeAtomic(name string, write func(*os.File) error) error {
	f, err := os.CreateTemp(s.dir, ".tmp-"+name+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.Path(name))
}
