// Package xlsx reads one worksheet of an Excel workbook into a Dataset.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sheetload/internal/dataset"
)

// Sheets returns the workbook's sheet names in workbook order.
func Sheets(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return f.GetSheetList(), nil
}

// Read decodes one sheet into a Dataset. An empty sheet name selects the
// first sheet of the workbook.
//
// Edge cases:
//   - Leading fully-empty rows before the header are skipped.
//   - Trailing ragged rows are padded with nulls to the header width; extra
//     cells beyond the header width are discarded.
//   - Every cell arrives as text; column typing is inference's job.
func Read(r io.Reader, sheet string) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		names := f.GetSheetList()
		if len(names) == 0 {
			return nil, fmt.Errorf("xlsx: workbook has no sheets")
		}
		sheet = names[0]
	}

	iter, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open sheet %q: %w", sheet, err)
	}
	defer iter.Close()

	var d *dataset.Dataset
	for iter.Next() {
		row, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("xlsx: read row in sheet %q: %w", sheet, err)
		}
		if d == nil {
			// Skip leading empty rows before the header.
			if len(row) == 0 {
				continue
			}
			d = dataset.New(row)
			continue
		}
		if err := d.Append(fitRow(row, len(d.Columns))); err != nil {
			return nil, fmt.Errorf("xlsx: sheet %q: %w", sheet, err)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("xlsx: iterate sheet %q: %w", sheet, err)
	}
	if d == nil {
		return nil, fmt.Errorf("xlsx: sheet %q is empty", sheet)
	}
	return d, nil
}

// fitRow converts string cells to values, padded or truncated to width.
func fitRow(cells []string, width int) []dataset.Value {
	row := make([]dataset.Value, width)
	for i := range row {
		if i < len(cells) {
			row[i] = dataset.Text(cells[i])
		} else {
			row[i] = dataset.Null()
		}
	}
	return row
}
