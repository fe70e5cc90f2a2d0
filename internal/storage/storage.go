// Package storage defines the backend-agnostic interface the import
// pipeline loads through, plus the table spec types every backend renders
// into its own DDL dialect. Backends register themselves with the factory
// from an init function so callers select them by kind string alone.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config is the minimal configuration needed to open a repository.
type Config struct {
	// Kind must match a registered backend kind ("postgres", "sqlite", "mssql").
	Kind string
	// DSN is passed through to the backend factory; validation is backend-specific.
	DSN string
}

// Repository is the storage surface one import run needs. Implementations
// are scoped resources: open one per import call and Close it on every exit
// path.
//
// IMPORTANT: ReplaceTable is destructive (drop and recreate). Callers must
// not run two imports against the same table name concurrently; the
// repository holds no cross-call lock.
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// Ping verifies connectivity before any destructive work starts.
	Ping(ctx context.Context) error

	// ReplaceTable drops any existing table of the spec's name (including
	// dependents, where the dialect supports it) and recreates it with the
	// surrogate key first, the spec's columns in order, and the audit
	// timestamp columns last.
	ReplaceTable(ctx context.Context, spec TableSpec) error

	// InsertRows performs one multi-row INSERT and reports rows affected.
	// The loader calls this per batch and per sub-batch; a failure here is
	// recoverable at the caller's discretion, not a terminal condition.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// TableSummary inspects the live table: total row count plus the column
	// name/storage-type listing in ordinal position order.
	TableSummary(ctx context.Context, table string) (TableInfo, error)

	// Preview returns up to limit rows with values rendered as strings
	// (nulls as empty strings), for human inspection after an import.
	Preview(ctx context.Context, table string, limit int) (PreviewResult, error)
}

// TableInfo describes a live table as reported by the backend's catalog.
type TableInfo struct {
	RowCount int64
	Columns  []ColumnInfo
}

// ColumnInfo is one catalog entry of a live table.
type ColumnInfo struct {
	Name        string
	StorageType string
}

// PreviewResult is a small stringified window into a loaded table.
type PreviewResult struct {
	Columns []string
	Rows    [][]string
}

// ---- factory registry (backends self-register from init) ----

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind. Called from backend init
// functions; registering the same kind twice panics to fail fast on
// ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%q", cfg.Kind)
	}
	return f(ctx, cfg)
}
