// Package dataset holds the in-memory table abstraction the import pipeline
// operates on. A Dataset is produced by a format-specific reader
// (internal/source), cleaned and typed in place, and finally handed to the
// loader as positional rows.
//
// Invariants:
//   - Column order is significant and defines the output schema order.
//   - Every row has exactly one value per column (possibly null).
package dataset

import (
	"fmt"
	"strings"
)

// Column describes one column of a Dataset.
//
// RawName is whatever the source header contained. Name is empty until the
// sanitizer resolves it. Kind is KindText until inference assigns a column
// type.
type Column struct {
	RawName string
	Name    string
	Kind    Kind
}

// Dataset is an ordered collection of columns and rows. Rows are positional:
// Rows[r][c] belongs to Columns[c].
type Dataset struct {
	Columns []Column
	Rows    [][]Value
}

// New builds a Dataset from raw header names. Rows are appended afterwards.
func New(headers []string) *Dataset {
	cols := make([]Column, len(headers))
	for i, h := range headers {
		cols[i] = Column{RawName: strings.TrimSpace(h), Kind: KindText}
	}
	return &Dataset{Columns: cols}
}

// Append adds one row. The row must have exactly one value per column.
func (d *Dataset) Append(row []Value) error {
	if len(row) != len(d.Columns) {
		return fmt.Errorf("dataset: row has %d values, want %d", len(row), len(d.Columns))
	}
	d.Rows = append(d.Rows, row)
	return nil
}

// ColumnNames returns the resolved names in column order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// BindRows materializes all rows as driver-bindable positional arguments.
func (d *Dataset) BindRows() [][]any {
	out := make([][]any, len(d.Rows))
	for r, row := range d.Rows {
		args := make([]any, len(row))
		for c, v := range row {
			args[c] = v.Bind()
		}
		out[r] = args
	}
	return out
}
