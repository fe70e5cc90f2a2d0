// Package csv reads a comma-separated file into a Dataset.
package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"

	"sheetload/internal/dataset"
)

// Read decodes CSV data. The first record is the header.
//
// Edge cases:
//   - Records are not required to match the header width: short records are
//     padded with nulls, long records are truncated. Spreadsheet exports are
//     routinely ragged and raggedness is not worth failing an import over.
//   - LazyQuotes is on for the same reason.
func Read(r io.Reader) (*dataset.Dataset, error) {
	cr := stdcsv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: input is empty")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	d := dataset.New(header)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read record: %w", err)
		}
		if err := d.Append(fitRow(rec, len(d.Columns))); err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
	}
	return d, nil
}

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
