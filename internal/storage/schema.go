// TableSpec and its helpers live here so backend packages can consume them
// without importing each other.

package storage

import (
	"fmt"

	"sheetload/internal/dataset"
)

// Reserved column names every generated table carries. The surrogate key
// comes first, the audit timestamps last; both default at insertion time and
// are never written by the loader.
const (
	PrimaryKeyColumn = "id"
	CreatedAtColumn  = "created_at"
	UpdatedAtColumn  = "updated_at"
)

// TableSpec is the full-replace definition of one target table. Column
// order matches Dataset order and defines the generated schema order.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// ColumnSpec pairs a resolved column name with its inferred semantic kind.
// All generated columns are nullable: promotion may null out individual
// cells, and the source carries no non-null guarantees.
type ColumnSpec struct {
	Name string
	Kind dataset.Kind
}

// SpecFor builds the TableSpec for a post-inference Dataset.
func SpecFor(table string, d *dataset.Dataset) (TableSpec, error) {
	if table == "" {
		return TableSpec{}, fmt.Errorf("storage: table name is empty")
	}
	spec := TableSpec{Name: table, Columns: make([]ColumnSpec, 0, len(d.Columns))}
	for _, c := range d.Columns {
		if c.Name == "" {
			return TableSpec{}, fmt.Errorf("storage: column %q has no resolved name", c.RawName)
		}
		if c.Name == PrimaryKeyColumn {
			return TableSpec{}, fmt.Errorf("storage: column name %q collides with the surrogate key", c.Name)
		}
		spec.Columns = append(spec.Columns, ColumnSpec{Name: c.Name, Kind: c.Kind})
	}
	if len(spec.Columns) == 0 {
		return TableSpec{}, fmt.Errorf("storage: table %s: no columns", table)
	}
	return spec, nil
}
