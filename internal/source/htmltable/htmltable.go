// Package htmltable reads the first <table> element of an HTML document into
// a Dataset. Header cells come from the table's first row (th or td); every
// following row contributes one Dataset row.
package htmltable

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sheetload/internal/dataset"
)

// Read decodes the first table of an HTML document.
//
// Edge cases:
//   - Rows shorter than the header are padded with nulls; longer rows are
//     truncated. Rowspan/colspan expansion is not attempted.
//   - A document without a <table>, or a table without a header row, is an
//     error.
func Read(r io.Reader) (*dataset.Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("htmltable: parse document: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("htmltable: document has no table")
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("htmltable: table has no rows")
	}

	var headers []string
	rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})
	if len(headers) == 0 {
		return nil, fmt.Errorf("htmltable: table has no header cells")
	}

	d := dataset.New(headers)
	var appendErr error
	rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		if appendErr != nil {
			return
		}
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		appendErr = d.Append(fitRow(cells, len(d.Columns)))
	})
	if appendErr != nil {
		return nil, fmt.Errorf("htmltable: %w", appendErr)
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
