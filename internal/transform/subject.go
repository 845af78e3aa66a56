package transform

import (
	"fmt"
	"time"

	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/mdtext"
	"github.com/learnstack/pagegen/internal/sheet"
)

const (
	defaultSection  = "General"
	defaultItemType = "tutorial"
)

// BuildSubject converts content rows into a subject artifact. fileMod is
// the source file's modification time, used when a row has no parseable
// lastmodified value. Returned warnings describe data that was repaired
// or dropped; they never fail the file.
func BuildSubject(name content.SourceName, rows []sheet.Row, fileMod time.Time) (*content.Subject, []string) {
	blog := content.IsBlogSlug(name.Slug)
	var warns []string

	items := make([]content.ContentItem, 0, len(rows))
	for i, row := range rows {
		ord := i + 1
		item := content.ContentItem{
			ID:             ord,
			Title:          row.Get("title"),
			URL:            row.Get("url"),
			Content:        row.Get("content"),
			Keywords:       row.Get("keywords"),
			TitleTag:       row.Get("titletag"),
			DescriptionTag: row.Get("descriptiontag"),
		}
		if item.Title == "" {
			item.Title = fmt.Sprintf("Untitled %d", ord)
		}
		if item.URL == "" {
			item.URL = fmt.Sprintf("page-%d", ord)
		}
		if sd := row.Get("shortdesc"); sd != "" {
			item.ShortDesc = mdtext.ShortDesc(sd)
		} else {
			item.ShortDesc = mdtext.ShortDesc(item.Content)
		}
		if !blog {
			item.Section = first(row, "section", "sectionname")
			if item.Section == "" {
				item.Section = defaultSection
			}
			item.Type = row.Get("type")
			if item.Type == "" {
				item.Type = defaultItemType
			}
		}
		if t, ok := parseRowTime(row.Get("lastmodified")); ok {
			item.LastModified = t
		} else {
			item.LastModified = fileMod
		}
		items = append(items, item)
	}

	kept, dupWarns := dedupeByURL(items)
	warns = append(warns, dupWarns...)
	for i := range kept {
		kept[i].ID = i + 1
	}

	sub := &content.Subject{
		Type:       content.TypeSubject,
		ID:         name.Slug,
		Name:       content.DisplayName(name.Base),
		BaseURL:    "/" + name.Slug,
		TotalPages: len(kept),
		Content:    kept,
	}
	if blog {
		sub.BaseURL = "/blogs"
	} else {
		sub.Sections = sectionLabels(kept)
	}
	if len(rows) > 0 {
		sub.TitleTag = rows[0].Get("titletag")
		sub.DescriptionTag = rows[0].Get("descriptiontag")
	}
	return sub, warns
}

// dedupeByURL enforces URL uniqueness within a subject: when several rows
// share a URL the last row wins and earlier ones are dropped. Survivors
// keep their source order.
func dedupeByURL(items []content.ContentItem) ([]content.ContentItem, []string) {
	seen := make(map[string]bool, len(items))
	kept := make([]content.ContentItem, 0, len(items))
	var warns []string
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if seen[it.URL] {
			warns = append(warns, fmt.Sprintf("row %d: duplicate url %q superseded by a later row", it.ID, it.URL))
			continue
		}
		seen[it.URL] = true
		kept = append(kept, it)
	}
	// Reverse back to source order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	// Warnings were gathered back to front.
	for i, j := 0, len(warns)-1; i < j; i, j = i+1, j-1 {
		warns[i], warns[j] = warns[j], warns[i]
	}
	return kept, warns
}

// sectionLabels returns the distinct section labels in first-seen order.
func sectionLabels(items []content.ContentItem) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, it := range items {
		if it.Section == "" || seen[it.Section] {
			continue
		}
		seen[it.Section] = true
		labels = append(labels, it.Section)
	}
	return labels
}
