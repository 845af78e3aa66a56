// Package seo renders the crawler-facing artifacts: sitemap.xml and
// robots.txt.
package seo

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/store"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is a single sitemap entry.
type URL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// URLSet is the sitemap document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// BuildSitemap derives sitemap entries from the subject artifacts in the
// store: the site root first, then one entry per content item under the
// subject's base URL. Homepage documents describe navigation, not pages,
// and are not indexed. Returns the rendered XML and the entry count.
func BuildSitemap(st *store.Store, siteURL string, now time.Time, log *slog.Logger) ([]byte, int, error) {
	site := strings.TrimRight(siteURL, "/")
	set := URLSet{
		XMLNS: xmlns,
		URLs:  []URL{{Loc: site + "/", LastMod: now.Format("2006-01-02")}},
	}

	names, err := st.ListArtifacts()
	if err != nil {
		return nil, 0, fmt.Errorf("scan artifacts: %w", err)
	}
	for _, name := range names {
		data, err := st.ReadRaw(name)
		if err != nil {
			log.Warn("skipping unreadable artifact", "artifact", name, "error", err)
			continue
		}
		kind, err := content.Classify(data)
		if err != nil || kind != content.TypeSubject {
			continue
		}
		var sub content.Subject
		if err := st.ReadJSON(name, &sub); err != nil {
			log.Warn("skipping malformed subject artifact", "artifact", name, "error", err)
			continue
		}
		for _, it := range sub.Content {
			u := URL{Loc: site + sub.BaseURL + "/" + it.URL}
			if !it.LastModified.IsZero() {
				u.LastMod = it.LastModified.Format("2006-01-02")
			} else {
				u.LastMod = now.Format("2006-01-02")
			}
			set.URLs = append(set.URLs, u)
		}
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal sitemap: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	out = append(out, '\n')
	return out, len(set.URLs), nil
}

// Robots renders a robots.txt that allows everything and points crawlers
// at the sitemap.
func Robots(siteURL string) []byte {
	site := strings.TrimRight(siteURL, "/")
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	sb.WriteString("Allow: /\n\n")
	sb.WriteString("Sitemap: " + site + "/" + store.SitemapName + "\n")
	return []byte(sb.String())
}
