// Package mssql implements storage.Repository on database/sql with the
// go-mssqldb driver.
//
// Dialect notes vs Postgres:
//   - placeholders are @p1..@pN
//   - the surrogate key is BIGINT IDENTITY(1,1)
//   - there is no CASCADE drop; DROP TABLE IF EXISTS is used as-is
//   - timestamp maps to DATETIME2, boolean to BIT, text to NVARCHAR(MAX)
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"sheetload/internal/dataset"
	"sheetload/internal/storage"
)

// Repo is the SQL Server-backed repository.
type Repo struct {
	db *sql.DB
}

// New opens a connection for one import run and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
		return fmt.Errorf("mssql: drop table %s: %w", spec.Name, err)
	}
	if _, err := r.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("mssql: create table %s: %w", spec.Name, err)
	}
	return nil
}

// InsertRows performs a single multi-row INSERT.
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

// TableSummary reports COUNT(*) plus the INFORMATION_SCHEMA column listing.
func (r *Repo) TableSummary(ctx context.Context, table string) (storage.TableInfo, error) {
	var info storage.TableInfo

	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, msIdent(table))
	if err := r.db.QueryRowContext(ctx, countSQL).Scan(&info.RowCount); err != nil {
		return info, fmt.Errorf("mssql: count %s: %w", table, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT COLUMN_NAME, DATA_TYPE
		   FROM INFORMATION_SCHEMA.COLUMNS
		  WHERE TABLE_NAME = @p1
		  ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return info, fmt.Errorf("mssql: describe %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c storage.ColumnInfo
		if err := rows.Scan(&c.Name, &c.StorageType); err != nil {
			return info, fmt.Errorf("mssql: describe %s: scan: %w", table, err)
		}
		info.Columns = append(info.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return info, fmt.Errorf("mssql: describe %s: rows: %w", table, err)
	}
	return info, nil
}

// Preview returns up to limit rows with values rendered as strings.
func (r *Repo) Preview(ctx context.Context, table string, limit int) (storage.PreviewResult, error) {
	var out storage.PreviewResult
	if limit <= 0 {
		limit = 5
	}

	q := fmt.Sprintf(`SELECT TOP %d * FROM %s`, limit, msIdent(table))
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return out, fmt.Errorf("mssql: preview %s: %w", table, err)
	}
	defer rows.Close()

	out.Columns, err = rows.Columns()
	if err != nil {
		return out, fmt.Errorf("mssql: preview %s: columns: %w", table, err)
	}

	for rows.Next() {
		vals := make([]any, len(out.Columns))
		dests := make([]any, len(out.Columns))
		for i := range vals {
			dests[i] = &vals[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return out, fmt.Errorf("mssql: preview %s: scan: %w", table, err)
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
		return out, fmt.Errorf("mssql: preview %s: rows: %w", table, err)
	}
	return out, nil
}

// buildReplaceSQL renders the full-replace DDL pair for SQL Server.
func buildReplaceSQL(spec storage.TableSpec) (dropSQL, createSQL string, err error) {
	if strings.TrimSpace(spec.Name) == "" {
		return "", "", fmt.Errorf("mssql: table name is empty")
	}
	if len(spec.Columns) == 0 {
		return "", "", fmt.Errorf("mssql: table %s: no columns", spec.Name)
	}

	dropSQL = fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, msIdent(spec.Name))

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(msIdent(spec.Name))
	b.WriteString(" (")
	b.WriteString(msIdent(storage.PrimaryKeyColumn))
	b.WriteString(" BIGINT IDENTITY(1,1) PRIMARY KEY")

	for _, c := range spec.Columns {
		t, err := columnType(c.Kind)
		if err != nil {
			return "", "", fmt.Errorf("mssql: table %s: column %s: %w", spec.Name, c.Name, err)
		}
		b.WriteString(", ")
		b.WriteString(msIdent(c.Name))
		b.WriteString(" ")
		b.WriteString(t)
	}

	b.WriteString(", ")
	b.WriteString(msIdent(storage.CreatedAtColumn))
	b.WriteString(" DATETIME2 DEFAULT SYSUTCDATETIME(), ")
	b.WriteString(msIdent(storage.UpdatedAtColumn))
	b.WriteString(" DATETIME2 DEFAULT SYSUTCDATETIME());")

	return dropSQL, b.String(), nil
}

// columnType maps a semantic kind to a SQL Server column type.
func columnType(k dataset.Kind) (string, error) {
	switch k {
	case dataset.KindText, dataset.KindNull:
		return "NVARCHAR(MAX)", nil
	case dataset.KindInteger:
		return "BIGINT", nil
	case dataset.KindDecimal:
		return "DECIMAL(15,4)", nil
	case dataset.KindTimestamp:
		return "DATETIME2", nil
	case dataset.KindBoolean:
		return "BIT", nil
	default:
		return "", fmt.Errorf("unsupported kind %v", k)
	}
}

// buildInsertSQL constructs one multi-row INSERT with @pN placeholders.
func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(msIdent(table))
	b.WriteString(" (")

	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(msIdent(c))
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
			fmt.Fprintf(&b, "@p%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String(), args
}

// msIdent bracket-quotes an identifier, escaping closing brackets.
func msIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
