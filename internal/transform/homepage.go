package transform

import (
	"fmt"

	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/mdtext"
	"github.com/learnstack/pagegen/internal/sheet"
)

// Homepage sheets come in two layouts. Layout A repeats page metadata on
// every row, each row also carrying one section's data. Layout B dedicates
// the first row to page metadata and the remaining rows to sections. The
// layout is detected from the first row: metadata with no section data
// means layout B.
func hasSectionData(row sheet.Row) bool {
	return first(row, "sectionname", "section", "tutorialtitles", "tutorialnames", "tutorials", "tutorialurls", "urls") != ""
}

// BuildHomepage converts homepage-sheet rows into a homepage document.
func BuildHomepage(name content.SourceName, rows []sheet.Row) (*content.Homepage, []string) {
	metaRows := rows
	sectionRows := rows
	if len(rows) > 0 && rows[0].Has("title") && !hasSectionData(rows[0]) {
		metaRows = rows[:1]
		sectionRows = rows[1:]
	}

	doc := &content.Homepage{
		Type:     content.TypeHomepage,
		ID:       name.Slug,
		Sections: []content.HomepageSection{},
	}
	for _, row := range metaRows {
		if doc.Title == "" {
			doc.Title = row.Get("title")
		}
		if doc.ShortDesc == "" {
			doc.ShortDesc = mdtext.ShortDesc(row.Get("shortdesc"))
		}
	}
	if doc.Title == "" {
		doc.Title = content.DisplayName(name.Base)
	}

	var warns []string
	index := make(map[string]int)
	for i, row := range sectionRows {
		ord := i + 1
		sname := first(row, "sectionname", "section")
		if sname == "" {
			if hasSectionData(row) {
				warns = append(warns, fmt.Sprintf("section row %d has tutorials but no section name; skipped", ord))
			}
			continue
		}

		titles := splitPipe(first(row, "tutorialtitles", "tutorialnames", "tutorials"))
		urls := splitPipe(first(row, "tutorialurls", "urls"))
		if len(titles) != len(urls) {
			n := min(len(titles), len(urls))
			warns = append(warns, fmt.Sprintf(
				"section %q row %d: %d titles vs %d urls; keeping first %d pairs",
				sname, ord, len(titles), len(urls), n))
			titles, urls = titles[:n], urls[:n]
		}
		links := make([]content.TutorialLink, 0, len(titles))
		for k := range titles {
			// A pair missing either side is unusable.
			if titles[k] == "" || urls[k] == "" {
				continue
			}
			links = append(links, content.TutorialLink{Title: titles[k], URL: urls[k]})
		}

		if pos, ok := index[sname]; ok {
			sec := &doc.Sections[pos]
			sec.Tutorials = append(sec.Tutorials, links...)
			if sec.Description == "" {
				sec.Description = first(row, "sectiondescription", "sectiondesc")
			}
		} else {
			index[sname] = len(doc.Sections)
			doc.Sections = append(doc.Sections, content.HomepageSection{
				Name:        sname,
				Description: first(row, "sectiondescription", "sectiondesc"),
				Tutorials:   links,
			})
		}
	}
	return doc, warns
}
