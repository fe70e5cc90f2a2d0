package xlsx

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes an in-memory workbook with the given sheets; each
// sheet's rows start at A1.
func buildWorkbook(t *testing.T, sheets map[string][][]any) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet: %v", err)
			}
		}
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestReadFirstSheetByDefault(t *testing.T) {
	t.Parallel()

	r := buildWorkbook(t, map[string][][]any{
		"Accounts": {
			{"Name", "Fee"},
			{"alpha", "10"},
			{"beta", "20"},
		},
	})

	d, err := Read(r, "")
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}
	if got := []string{d.Columns[0].RawName, d.Columns[1].RawName}; !reflect.DeepEqual(got, []string{"Name", "Fee"}) {
		t.Fatalf("raw headers=%v", got)
	}
	if len(d.Rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(d.Rows))
	}
	if got := d.Rows[0][0].Str(); got != "alpha" {
		t.Fatalf("cell=%q, want %q", got, "alpha")
	}
}

func TestReadNamedSheet(t *testing.T) {
	t.Parallel()

	r := buildWorkbook(t, map[string][][]any{
		"Summary": {
			{"ignored"},
			{"x"},
		},
		"Data": {
			{"k", "v"},
			{"a", "1"},
		},
	})

	d, err := Read(r, "Data")
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}
	if d.Columns[0].RawName != "k" || len(d.Rows) != 1 {
		t.Fatalf("headers=%v rows=%d", d.Columns, len(d.Rows))
	}
}

func TestReadRaggedRowsPaddedWithNulls(t *testing.T) {
	t.Parallel()

	r := buildWorkbook(t, map[string][][]any{
		"Accounts": {
			{"a", "b", "c"},
			{"1", "2"},
		},
	})

	d, err := Read(r, "")
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}
	if len(d.Rows) != 1 {
		t.Fatalf("rows=%d, want 1", len(d.Rows))
	}
	if !d.Rows[0][2].IsNull() {
		t.Fatalf("short row not padded with null: %v", d.Rows[0][2])
	}
}

func TestReadUnknownSheet(t *testing.T) {
	t.Parallel()

	r := buildWorkbook(t, map[string][][]any{
		"Accounts": {{"a"}},
	})
	if _, err := Read(r, "Missing"); err == nil {
		t.Fatalf("Read() err=nil, want error for unknown sheet")
	}
}

func TestSheets(t *testing.T) {
	t.Parallel()

	r := buildWorkbook(t, map[string][][]any{
		"Accounts": {{"a"}},
	})
	names, err := Sheets(r)
	if err != nil {
		t.Fatalf("Sheets() err=%v, want nil", err)
	}
	if !reflect.DeepEqual(names, []string{"Accounts"}) {
		t.Fatalf("Sheets()=%v, want [Accounts]", names)
	}
}

func TestReadEmptySheet(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	if _, err := Read(bytes.NewReader(buf.Bytes()), ""); err == nil {
		t.Fatalf("Read() err=nil, want error for empty sheet")
	}
}
