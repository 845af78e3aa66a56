// Package transform normalizes parsed spreadsheet rows into the JSON
// documents the site is rendered from.
package transform

import (
	"strings"
	"time"

	"github.com/learnstack/pagegen/internal/sheet"
)

// Column timestamps arrive in whatever format the sheet author used.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// parseRowTime parses a lastmodified cell value against the accepted
// layouts.
func parseRowTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// first returns the row value for the first key that has one.
func first(row sheet.Row, keys ...string) string {
	for _, k := range keys {
		if v := row.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// splitPipe splits a pipe-delimited list cell, trimming each element.
// Empty elements are kept so parallel lists stay aligned.
func splitPipe(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
