package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/extrame/xls"
)

// XLSParser handles legacy binary Excel workbooks.
type XLSParser struct{}

func (p *XLSParser) Parse(r io.Reader, filename string) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xls: %w", err)
	}
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, fmt.Errorf("xls workbook has no sheets")
	}

	records := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			continue
		}
		rec := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			rec = append(rec, row.Col(j))
		}
		records = append(records, rec)
	}
	return rowsFromRecords(records), nil
}
