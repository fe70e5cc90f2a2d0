package csv

import (
	"reflect"
	"strings"
	"testing"
)

func TestReadBasic(t *testing.T) {
	t.Parallel()

	in := "Name,Fee\nalpha,10\nbeta,20\n"
	d, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}

	if got := []string{d.Columns[0].RawName, d.Columns[1].RawName}; !reflect.DeepEqual(got, []string{"Name", "Fee"}) {
		t.Fatalf("raw headers=%v", got)
	}
	if len(d.Rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(d.Rows))
	}
	if d.Rows[1][1].Str() != "20" {
		t.Fatalf("cell=%q, want %q", d.Rows[1][1].Str(), "20")
	}
}

func TestReadRaggedRecords(t *testing.T) {
	t.Parallel()

	in := "a,b,c\n1,2\n1,2,3,4\n"
	d, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}
	if len(d.Rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(d.Rows))
	}
	// Short record padded with null, long record truncated.
	if !d.Rows[0][2].IsNull() {
		t.Fatalf("short record not padded with null: %v", d.Rows[0][2])
	}
	if len(d.Rows[1]) != 3 {
		t.Fatalf("long record width=%d, want 3", len(d.Rows[1]))
	}
}

func TestReadLazyQuotes(t *testing.T) {
	t.Parallel()

	in := "name,note\nalpha,said \"hi\" loudly\n"
	d, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}
	if got := d.Rows[0][1].Str(); got != `said "hi" loudly` {
		t.Fatalf("cell=%q", got)
	}
}

func TestReadEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatalf("Read() on empty input err=nil, want error")
	}
}

func TestReadHeaderOnly(t *testing.T) {
	t.Parallel()

	d, err := Read(strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("Read() err=%v, want nil", err)
	}
	if len(d.Columns) != 2 || len(d.Rows) != 0 {
		t.Fatalf("got %d columns / %d rows, want 2/0", len(d.Columns), len(d.Rows))
	}
}
