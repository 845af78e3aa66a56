// Package manifest assembles the site-wide index from the artifacts on
// disk. The manifest is never updated incrementally: every run rebuilds
// it from whatever the cache directory holds, so it always reflects the
// union of freshly-built and reused artifacts.
package manifest

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/store"
)

// Build scans every artifact in the store and assembles a manifest.
// Unreadable artifacts are logged and skipped rather than failing the
// build. totalPages counts subject pages only; homepage documents are
// navigation, not pages.
func Build(st *store.Store, log *slog.Logger) (*content.Manifest, error) {
	names, err := st.ListArtifacts()
	if err != nil {
		return nil, fmt.Errorf("scan artifacts: %w", err)
	}

	m := &content.Manifest{
		BuildID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Subjects:    []content.SubjectSummary{},
		Homepages:   []content.HomepageSummary{},
	}
	for _, name := range names {
		data, err := st.ReadRaw(name)
		if err != nil {
			log.Warn("skipping unreadable artifact", "artifact", name, "error", err)
			continue
		}
		kind, err := content.Classify(data)
		if err != nil {
			log.Warn("skipping malformed artifact", "artifact", name, "error", err)
			continue
		}
		switch kind {
		case content.TypeHomepage:
			var h content.Homepage
			if err := st.ReadJSON(name, &h); err != nil {
				log.Warn("skipping malformed homepage artifact", "artifact", name, "error", err)
				continue
			}
			m.Homepages = append(m.Homepages, content.HomepageSummary{
				ID:        h.ID,
				Title:     h.Title,
				Sections:  len(h.Sections),
				Tutorials: h.TutorialCount(),
			})
		default:
			var sub content.Subject
			if err := st.ReadJSON(name, &sub); err != nil {
				log.Warn("skipping malformed subject artifact", "artifact", name, "error", err)
				continue
			}
			m.Subjects = append(m.Subjects, content.SubjectSummary{
				ID:       sub.ID,
				Name:     sub.Name,
				BaseURL:  sub.BaseURL,
				Pages:    len(sub.Content),
				Sections: len(sub.Sections),
			})
			m.TotalPages += len(sub.Content)
		}
	}

	sort.Slice(m.Subjects, func(i, j int) bool { return m.Subjects[i].ID < m.Subjects[j].ID })
	sort.Slice(m.Homepages, func(i, j int) bool { return m.Homepages[i].ID < m.Homepages[j].ID })
	m.TotalSubjects = len(m.Subjects)
	m.TotalHomepages = len(m.Homepages)
	return m, nil
}

// Write persists a built manifest. Callers only invoke this after every
// artifact write of the run has completed.
func Write(st *store.Store, m *content.Manifest) error {
	if err := st.WriteJSON(store.ManifestName, m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads the current manifest from the store.
func Read(st *store.Store) (*content.Manifest, error) {
	var m content.Manifest
	if err := st.ReadJSON(store.ManifestName, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
