// Package sqlite implements storage.Repository on modernc.org/sqlite.
//
// Key design points vs Postgres:
//   - SQLite has no DECIMAL or TIMESTAMP types; columns get NUMERIC and TEXT
//     affinity. Timestamps are stored as RFC3339Nano strings for reliable
//     round-trip behavior and easy debugging.
//   - There is no CASCADE drop; a plain DROP TABLE IF EXISTS is the
//     equivalent full-replace semantics.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"sheetload/internal/dataset"
	"sheetload/internal/storage"
)

// Repo is the SQLite-backed repository.
type Repo struct {
	db *sql.DB
}

// New opens the database file (or ":memory:") for one import run.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// ReplaceTable drops and recreates the target table.
func (r *Repo) ReplaceTable(ctx context.Context, spec storage.TableSpec) error {
	dropSQL, createSQL, err := buildReplaceSQL(spec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop table %s: %w", spec.Name, err)
	}
	if _, err := r.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", spec.Name, err)
	}
	return nil
}

// InsertRows performs a single multi-row INSERT. Timestamps are bound as
// RFC3339Nano strings so they survive SQLite's TEXT affinity.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sqlText, args := buildInsertSQL(table, columns, rows)
	res, err := r.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TableSummary reports COUNT(*) plus the PRAGMA table_info column listing.
func (r *Repo) TableSummary(ctx context.Context, table string) (storage.TableInfo, error) {
	var info storage.TableInfo

	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, sqlIdent(table))
	if err := r.db.QueryRowContext(ctx, countSQL).Scan(&info.RowCount); err != nil {
		return info, fmt.Errorf("count %s: %w", table, err)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, sqlIdent(table)))
	if err != nil {
		return info, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return info, fmt.Errorf("describe %s: scan: %w", table, err)
		}
		info.Columns = append(info.Columns, storage.ColumnInfo{Name: name, StorageType: typ})
	}
	if err := rows.Err(); err != nil {
		return info, fmt.Errorf("describe %s: rows: %w", table, err)
	}
	return info, nil
}

// Preview returns up to limit rows with values rendered as strings.
func (r *Repo) Preview(ctx context.Context, table string, limit int) (storage.PreviewResult, error) {
	var out storage.PreviewResult
	if limit <= 0 {
		limit = 5
	}

	q := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, sqlIdent(table), limit)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return out, fmt.Errorf("preview %s: %w", table, err)
	}
	defer rows.Close()

	out.Columns, err = rows.Columns()
	if err != nil {
		return out, fmt.Errorf("preview %s: columns: %w", table, err)
	}

	for rows.Next() {
		vals := make([]any, len(out.Columns))
		dests := make([]any, len(out.Columns))
		for i := range vals {
			dests[i] = &vals[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return out, fmt.Errorf("preview %s: scan: %w", table, err)
		}
		rendered := make([]string, len(vals))
		for i, v := range vals {
			switch t := v.(type) {
			case nil:
			case []byte:
				rendered[i] = string(t)
			default:
				rendered[i] = fmt.Sprint(t)
			}
		}
		out.Rows = append(out.Rows, rendered)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("preview %s: rows: %w", table, err)
	}
	return out, nil
}

// buildReplaceSQL renders the full-replace DDL pair for SQLite.
func buildReplaceSQL(spec storage.TableSpec) (dropSQL, createSQL string, err error) {
	if strings.TrimSpace(spec.Name) == "" {
		return "", "", fmt.Errorf("sqlite: table name is empty")
	}
	if len(spec.Columns) == 0 {
		return "", "", fmt.Errorf("sqlite: table %s: no columns", spec.Name)
	}

	dropSQL = fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, sqlIdent(spec.Name))

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(sqlIdent(spec.Name))
	b.WriteString(" (")
	b.WriteString(sqlIdent(storage.PrimaryKeyColumn))
	b.WriteString(" INTEGER PRIMARY KEY AUTOINCREMENT")

	for _, c := range spec.Columns {
		t, err := columnType(c.Kind)
		if err != nil {
			return "", "", fmt.Errorf("sqlite: table %s: column %s: %w", spec.Name, c.Name, err)
		}
		b.WriteString(", ")
		b.WriteString(sqlIdent(c.Name))
		b.WriteString(" ")
		b.WriteString(t)
	}

	b.WriteString(", ")
	b.WriteString(sqlIdent(storage.CreatedAtColumn))
	b.WriteString(" TEXT DEFAULT CURRENT_TIMESTAMP, ")
	b.WriteString(sqlIdent(storage.UpdatedAtColumn))
	b.WriteString(" TEXT DEFAULT CURRENT_TIMESTAMP);")

	return dropSQL, b.String(), nil
}

// columnType maps a semantic kind to a SQLite affinity.
func columnType(k dataset.Kind) (string, error) {
	switch k {
	case dataset.KindText, dataset.KindNull:
		return "TEXT", nil
	case dataset.KindInteger:
		return "INTEGER", nil
	case dataset.KindDecimal:
		return "NUMERIC", nil
	case dataset.KindTimestamp:
		return "TEXT", nil
	case dataset.KindBoolean:
		return "INTEGER", nil
	default:
		return "", fmt.Errorf("unsupported kind %v", k)
	}
}

// buildInsertSQL constructs one multi-row INSERT with ? placeholders,
// converting time.Time args to RFC3339Nano strings.
func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")

	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, bindValue(row[j]))
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String(), args
}

func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// sqlIdent double-quotes an identifier, escaping embedded quotes.
func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
