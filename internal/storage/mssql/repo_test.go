package mssql

import (
	"strings"
	"testing"

	"sheetload/internal/dataset"
	"sheetload/internal/storage"
)

func TestBuildReplaceSQL(t *testing.T) {
	t.Parallel()

	spec := storage.TableSpec{
		Name: "commercial",
		Columns: []storage.ColumnSpec{
			{Name: "business_name", Kind: dataset.KindText},
			{Name: "license_count", Kind: dataset.KindInteger},
			{Name: "fee", Kind: dataset.KindDecimal},
			{Name: "expiration_date", Kind: dataset.KindTimestamp},
			{Name: "active", Kind: dataset.KindBoolean},
		},
	}

	dropSQL, createSQL, err := buildReplaceSQL(spec)
	if err != nil {
		t.Fatalf("buildReplaceSQL: %v", err)
	}
	if dropSQL != `DROP TABLE IF EXISTS [commercial];` {
		t.Fatalf("dropSQL = %q", dropSQL)
	}
	for _, frag := range []string{
		"[id] BIGINT IDENTITY(1,1) PRIMARY KEY",
		"[business_name] NVARCHAR(MAX)",
		"[license_count] BIGINT",
		"[fee] DECIMAL(15,4)",
		"[expiration_date] DATETIME2",
		"[active] BIT",
		"[created_at] DATETIME2 DEFAULT SYSUTCDATETIME()",
	} {
		if !strings.Contains(createSQL, frag) {
			t.Fatalf("createSQL missing %q: %q", frag, createSQL)
		}
	}
}

func TestBuildInsertSQL_PlaceholderNumbering(t *testing.T) {
	t.Parallel()

	sqlText, args := buildInsertSQL("t", []string{"a", "b"}, [][]any{
		{1, 2},
		{3, 4},
	})
	want := `INSERT INTO [t] ([a], [b]) VALUES (@p1, @p2), (@p3, @p4);`
	if sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v", args)
	}
}

func TestMsIdent(t *testing.T) {
	t.Parallel()

	if got := msIdent("we]ird"); got != "[we]]ird]" {
		t.Fatalf("msIdent = %q", got)
	}
}
