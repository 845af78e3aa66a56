// Package sheet parses spreadsheet source files into header-keyed rows.
package sheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Row is one data row keyed by normalized column header. Blank cells are
// never stored, so presence in the map implies a non-empty value.
type Row map[string]string

// Get returns the value for a normalized header key, or "" when absent.
func (r Row) Get(key string) string {
	return r[key]
}

// Has reports whether the row carries a value for key.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// NormalizeHeader canonicalizes a column header so that "Title Tag",
// "title_tag" and "TITLE-TAG" all address the same column.
func NormalizeHeader(h string) string {
	var sb strings.Builder
	for _, c := range strings.ToLower(strings.TrimSpace(h)) {
		switch c {
		case ' ', '\t', '_', '-':
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// Parser converts raw spreadsheet bytes into rows.
type Parser interface {
	Parse(r io.Reader, filename string) ([]Row, error)
}

// SupportedExtensions lists file extensions the pipeline can ingest.
var SupportedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return &XLSXParser{}, nil
	case ".xls":
		return &XLSParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// rowsFromRecords turns a raw cell grid into Rows using the first record
// as the header row. Records shorter than the header row are tolerated;
// rows with no non-empty cell are dropped.
func rowsFromRecords(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = NormalizeHeader(h)
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(headers))
		for i, cell := range rec {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			row[headers[i]] = v
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
