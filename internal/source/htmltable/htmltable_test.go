package htmltable

import (
	"reflect"
	"strings"
	"testing"
)

const sampleDoc = `
<html><body>
<p>quarterly report</p>
<table>
  <thead>
    <tr><th>Name</th><th>Fee</th></tr>
  </thead>
  <tbody>
    <tr><td> alpha </td><td>10</td></tr>
    <tr><td>beta</td><td>20</td><td>extra</td></tr>
    <tr><td>gamma</td></tr>
  </tbody>
</table>
<table><tr><th>second table is ignored</th></tr></table>
</body></html>`

func TestReadFirstTable(t *testing.T) {
	t.Parallel()

	d, err := Read(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}

	if got := []string{d.Columns[0].RawName, d.Columns[1].RawName}; !reflect.DeepEqual(got, []string{"Name", "Fee"}) {
		t.Fatalf("raw headers=%v", got)
	}
	if len(d.Rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(d.Rows))
	}

	// Cell text is trimmed; long rows truncated; short rows padded with null.
	if got := d.Rows[0][0].Str(); got != "alpha" {
		t.Fatalf("cell=%q, want %q", got, "alpha")
	}
	if len(d.Rows[1]) != 2 {
		t.Fatalf("long row width=%d, want 2", len(d.Rows[1]))
	}
	if !d.Rows[2][1].IsNull() {
		t.Fatalf("short row not padded with null: %v", d.Rows[2][1])
	}
}

func TestReadHeaderFromFirstRowWithoutThead(t *testing.T) {
	t.Parallel()

	doc := `<table><tr><td>a</td><td>b</td></tr><tr><td>1</td><td>2</td></tr></table>`
	d, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}
	if d.Columns[0].RawName != "a" || len(d.Rows) != 1 {
		t.Fatalf("headers=%v rows=%d", d.Columns, len(d.Rows))
	}
}

func TestReadNoTable(t *testing.T) {
	t.Parallel()

	if _, err := Read(strings.NewReader("<html><body><p>nothing</p></body></html>")); err == nil {
		t.Fatalf("Read() err=nil, want error for missing table")
	}
}

func TestReadEmptyTable(t *testing.T) {
	t.Parallel()

	if _, err := Read(strings.NewReader("<table></table>")); err == nil {
		t.Fatalf("Read() err=nil, want error for empty table")
	}
}
