package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVParser handles CSV exports of content sheets.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	// Spreadsheet exports routinely omit trailing empty cells.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rowsFromRecords(records), nil
}
