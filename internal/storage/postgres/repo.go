// Package postgres implements storage.Repository on pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"sheetload/internal/dataset"
	"sheetload/internal/storage"
)

// Repo is the Postgres-backed repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New opens a connection pool for one import run.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Repo) Close() {
	r.pool.Close()
}

// Ping verifies connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ReplaceTable drops and recreates the target table. The drop uses CASCADE,
// so anything depending on the previous table goes with it: an import is a
// full replace, not an upsert.
func (r *Repo) ReplaceTable(ctx context.Context, spec storage.TableSpec) error {
	dropSQL, createSQL, err := buildReplaceSQL(spec)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop table %s: %w", spec.Name, err)
	}
	if _, err := r.pool.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", spec.Name, err)
	}
	return nil
}

// InsertRows performs a single multi-row INSERT.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sql, args := buildInsertSQL(table, columns, rows)
	cmd, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// TableSummary inspects the populated table rather than trusting in-memory
// bookkeeping: COUNT(*) plus the information_schema column listing.
func (r *Repo) TableSummary(ctx context.Context, table string) (storage.TableInfo, error) {
	var info storage.TableInfo

	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pgIdent(table))
	if err := r.pool.QueryRow(ctx, countSQL).Scan(&info.RowCount); err != nil {
		return info, fmt.Errorf("count %s: %w", table, err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT column_name, data_type
		   FROM information_schema.columns
		  WHERE table_name = $1
		  ORDER BY ordinal_position`, table)
	if err != nil {
		return info, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c storage.ColumnInfo
		if err := rows.Scan(&c.Name, &c.StorageType); err != nil {
			return info, fmt.Errorf("describe %s: scan: %w", table, err)
		}
		info.Columns = append(info.Columns, c)
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

	q := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, pgIdent(table), limit)
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return out, fmt.Errorf("preview %s: %w", table, err)
	}
	defer rows.Close()

	for _, fd := range rows.FieldDescriptions() {
		out.Columns = append(out.Columns, fd.Name)
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return out, fmt.Errorf("preview %s: values: %w", table, err)
		}
		rendered := make([]string, len(vals))
		for i, v := range vals {
			if v == nil {
				continue
			}
			rendered[i] = fmt.Sprint(v)
		}
		out.Rows = append(out.Rows, rendered)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("preview %s: rows: %w", table, err)
	}
	return out, nil
}

// buildReplaceSQL renders the full-replace DDL pair.
//
// This is pure and deterministic so the exact statements are unit-testable
// without a database. The generated table always carries the surrogate key
// first and the audit timestamps last; both default server-side and are
// never bound by the loader.
func buildReplaceSQL(spec storage.TableSpec) (dropSQL, createSQL string, err error) {
	if strings.TrimSpace(spec.Name) == "" {
		return "", "", fmt.Errorf("postgres: table name is empty")
	}
	if len(spec.Columns) == 0 {
		return "", "", fmt.Errorf("postgres: table %s: no columns", spec.Name)
	}

	dropSQL = fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE;`, pgIdent(spec.Name))

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(pgIdent(spec.Name))
	b.WriteString(" (")
	b.WriteString(pgIdent(storage.PrimaryKeyColumn))
	b.WriteString(" SERIAL PRIMARY KEY")

	for _, c := range spec.Columns {
		t, err := columnType(c.Kind)
		if err != nil {
			return "", "", fmt.Errorf("postgres: table %s: column %s: %w", spec.Name, c.Name, err)
		}
		b.WriteString(", ")
		b.WriteString(pgIdent(c.Name))
		b.WriteString(" ")
		b.WriteString(t)
	}

	b.WriteString(", ")
	b.WriteString(pgIdent(storage.CreatedAtColumn))
	b.WriteString(" TIMESTAMP DEFAULT CURRENT_TIMESTAMP, ")
	b.WriteString(pgIdent(storage.UpdatedAtColumn))
	b.WriteString(" TIMESTAMP DEFAULT CURRENT_TIMESTAMP);")

	return dropSQL, b.String(), nil
}

// columnType maps a semantic kind to its Postgres column type. BIGINT is
// chosen over INTEGER so large source identifiers cannot overflow.
func columnType(k dataset.Kind) (string, error) {
	switch k {
	case dataset.KindText, dataset.KindNull:
		return "TEXT", nil
	case dataset.KindInteger:
		return "BIGINT", nil
	case dataset.KindDecimal:
		return "DECIMAL(15,4)", nil
	case dataset.KindTimestamp:
		return "TIMESTAMP", nil
	case dataset.KindBoolean:
		return "BOOLEAN", nil
	default:
		return "", fmt.Errorf("unsupported kind %v", k)
	}
}

// buildInsertSQL constructs a single multi-row INSERT and its args.
//
// Pure so placeholder numbering is unit-testable without a database. Every
// row must have the same length as columns.
func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(table))
	b.WriteString(" (")

	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String(), args
}

// pgIdent double-quotes an identifier, escaping embedded quotes.
func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
