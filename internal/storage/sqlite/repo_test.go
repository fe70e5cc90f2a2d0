package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

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
	if dropSQL != `DROP TABLE IF EXISTS "commercial";` {
		t.Fatalf("dropSQL = %q", dropSQL)
	}
	if !strings.Contains(createSQL, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`) {
		t.Fatalf("createSQL missing surrogate key: %q", createSQL)
	}
	if !strings.Contains(createSQL, `"fee" NUMERIC`) {
		t.Fatalf("createSQL missing NUMERIC affinity: %q", createSQL)
	}
	if !strings.Contains(createSQL, `"updated_at" TEXT DEFAULT CURRENT_TIMESTAMP`) {
		t.Fatalf("createSQL missing audit column: %q", createSQL)
	}
}

func TestBuildInsertSQL_PlaceholdersAndTimeBinding(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	sqlText, args := buildInsertSQL("t", []string{"a", "b"}, [][]any{
		{int64(1), ts},
	})

	if want := `INSERT INTO "t" ("a", "b") VALUES (?, ?);`; sqlText != want {
		t.Fatalf("sql = %q, want %q", sqlText, want)
	}
	if args[1] != "2024-03-04T05:06:07Z" {
		t.Fatalf("time arg = %v, want RFC3339Nano string", args[1])
	}
}

func TestRepo_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "roundtrip.db")

	repo, err := New(ctx, storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	spec := storage.TableSpec{
		Name: "licenses",
		Columns: []storage.ColumnSpec{
			{Name: "name", Kind: dataset.KindText},
			{Name: "fee", Kind: dataset.KindDecimal},
		},
	}
	if err := repo.ReplaceTable(ctx, spec); err != nil {
		t.Fatalf("replace: %v", err)
	}

	n, err := repo.InsertRows(ctx, "licenses", []string{"name", "fee"}, [][]any{
		{"alpha", 1.5},
		{"beta", nil},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows affected = %d, want 2", n)
	}

	info, err := repo.TableSummary(ctx, "licenses")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if info.RowCount != 2 {
		t.Fatalf("row count = %d, want 2", info.RowCount)
	}
	wantCols := []string{"id", "name", "fee", "created_at", "updated_at"}
	if len(info.Columns) != len(wantCols) {
		t.Fatalf("columns = %+v, want %v", info.Columns, wantCols)
	}
	for i, c := range info.Columns {
		if c.Name != wantCols[i] {
			t.Fatalf("column[%d] = %q, want %q", i, c.Name, wantCols[i])
		}
	}

	// Re-running the replace resets the table: identical schema, empty rows.
	if err := repo.ReplaceTable(ctx, spec); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	info, err = repo.TableSummary(ctx, "licenses")
	if err != nil {
		t.Fatalf("summary after replace: %v", err)
	}
	if info.RowCount != 0 {
		t.Fatalf("row count after replace = %d, want 0", info.RowCount)
	}
}

func TestRepo_Preview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "preview.db")

	repo, err := New(ctx, storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	spec := storage.TableSpec{
		Name:    "t",
		Columns: []storage.ColumnSpec{{Name: "v", Kind: dataset.KindText}},
	}
	if err := repo.ReplaceTable(ctx, spec); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := repo.InsertRows(ctx, "t", []string{"v"}, [][]any{{"one"}, {nil}, {"three"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Preview(ctx, "t", 2)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("preview rows = %d, want 2", len(got.Rows))
	}
	if got.Columns[1] != "v" || got.Rows[0][1] != "one" {
		t.Fatalf("unexpected preview: %+v", got)
	}
	// Nulls render as empty strings.
	if got.Rows[1][1] != "" {
		t.Fatalf("null cell rendered as %q", got.Rows[1][1])
	}
}
