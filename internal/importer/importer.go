// Package importer sequences one full ingestion run: header sanitization,
// value cleaning, column type inference, destructive table recreation,
// batched loading, and a final summary read back from the live table.
//
// Error model:
//   - Fatal: connectivity loss before any batch, DDL failure, summary
//     inspection failure. Propagated to the caller.
//   - Batch-level failures are absorbed by the loader; a run that loses rows
//     still returns a nil error. Callers detect partial loss by comparing the
//     summary's persisted and attempted counts.
package importer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"sheetload/internal/dataset"
	"sheetload/internal/infer"
	"sheetload/internal/loader"
	"sheetload/internal/metrics"
	"sheetload/internal/sanitize"
	"sheetload/internal/storage"
)

// Logger is the minimal logging interface used by the importer.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Importer runs imports against one repository.
//
// IMPORTANT: ReplaceTable is destructive. Do not run two imports against the
// same table name concurrently; the importer holds no cross-call lock.
type Importer struct {
	repo storage.Repository
	log  Logger
}

// New constructs an Importer. A nil logger discards all output.
func New(repo storage.Repository, logger Logger) *Importer {
	if logger == nil {
		logger = log.New(discardWriter{}, "", 0)
	}
	return &Importer{repo: repo, log: logger}
}

// Summary is the final record of one import run. It combines in-memory
// bookkeeping (clean stats, load outcome) with the table state read back
// from the backend's catalog, which is authoritative.
type Summary struct {
	Table string

	EmptyRowsDropped  int
	DuplicatesRemoved int

	Outcome loader.Outcome

	// TableRows and Columns are inspected from the live table after the
	// load, not trusted from in-memory counts.
	TableRows int64
	Columns   []storage.ColumnInfo
}

// Degraded reports whether rows were lost during the load.
func (s *Summary) Degraded() bool { return s.Outcome.Degraded() }

// String renders a human-readable account of the run.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %q: %d rows attempted, %d persisted", s.Table, s.Outcome.Attempted, s.Outcome.Persisted)
	if dropped := s.Outcome.DroppedRows(); dropped > 0 {
		ranges := make([]string, len(s.Outcome.Dropped))
		for i, r := range s.Outcome.Dropped {
			ranges[i] = r.String()
		}
		fmt.Fprintf(&b, ", %d dropped (%s)", dropped, strings.Join(ranges, ", "))
	}
	b.WriteByte('\n')
	if s.EmptyRowsDropped > 0 || s.DuplicatesRemoved > 0 {
		fmt.Fprintf(&b, "cleaning: %d empty rows dropped, %d duplicate rows removed\n", s.EmptyRowsDropped, s.DuplicatesRemoved)
	}
	fmt.Fprintf(&b, "live table holds %d rows across %d columns:\n", s.TableRows, len(s.Columns))
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "  %s %s\n", c.Name, c.StorageType)
	}
	return b.String()
}

// Run executes the full pipeline against table. The dataset is mutated in
// place (resolved names, cleaned values, promoted column kinds) and must not
// be shared with a concurrent import.
//
// Errors:
//   - Source-level problems (no columns), connectivity, DDL, and summary
//     inspection failures are fatal and returned.
//   - Batch-level insert failures are not errors; see Summary.Outcome.
func (i *Importer) Run(ctx context.Context, table string, d *dataset.Dataset) (*Summary, error) {
	if table == "" {
		return nil, fmt.Errorf("import: empty table name")
	}
	if d == nil || len(d.Columns) == 0 {
		return nil, fmt.Errorf("import %s: dataset has no columns", table)
	}

	// Connectivity is checked up front so a dead connection fails the run
	// before the destructive table replace.
	if err := i.repo.Ping(ctx); err != nil {
		return nil, fmt.Errorf("import %s: ping: %w", table, err)
	}

	stageStart := time.Now()
	raw := make([]string, len(d.Columns))
	for c := range d.Columns {
		raw[c] = d.Columns[c].RawName
	}
	for c, name := range sanitize.Headers(raw) {
		d.Columns[c].Name = name
	}
	i.stageDone("sanitize", stageStart)

	stageStart = time.Now()
	stats := d.Clean()
	if stats.DuplicatesRemoved > 0 {
		metrics.IncCounter(metrics.RowsTotal, float64(stats.DuplicatesRemoved), metrics.Labels{"kind": "duplicates_removed"})
	}
	i.log.Printf("stage=clean empty_rows=%d duplicates=%d duration=%s",
		stats.EmptyRowsDropped, stats.DuplicatesRemoved, durMS(stageStart))
	i.observeStage("clean", stageStart)

	stageStart = time.Now()
	infer.Columns(d)
	i.stageDone("infer", stageStart)

	spec, err := storage.SpecFor(table, d)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", table, err)
	}

	stageStart = time.Now()
	if err := i.repo.ReplaceTable(ctx, spec); err != nil {
		return nil, fmt.Errorf("import %s: replace table: %w", table, err)
	}
	i.stageDone("ddl", stageStart)

	stageStart = time.Now()
	outcome, err := loader.New(i.repo, i.log).Load(ctx, table, d.ColumnNames(), d.BindRows())
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", table, err)
	}
	if outcome.Degraded() {
		i.log.Printf("stage=load status=degraded attempted=%d persisted=%d dropped=%d duration=%s",
			outcome.Attempted, outcome.Persisted, outcome.DroppedRows(), durMS(stageStart))
	} else {
		i.log.Printf("stage=load status=ok rows=%d duration=%s", outcome.Persisted, durMS(stageStart))
	}
	i.observeStage("load", stageStart)

	stageStart = time.Now()
	info, err := i.repo.TableSummary(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("import %s: table summary: %w", table, err)
	}
	i.stageDone("summary", stageStart)

	return &Summary{
		Table:             table,
		EmptyRowsDropped:  stats.EmptyRowsDropped,
		DuplicatesRemoved: stats.DuplicatesRemoved,
		Outcome:           outcome,
		TableRows:         info.RowCount,
		Columns:           info.Columns,
	}, nil
}

func (i *Importer) stageDone(stage string, start time.Time) {
	i.log.Printf("stage=%s ok duration=%s", stage, durMS(start))
	i.observeStage(stage, start)
}

func (i *Importer) observeStage(stage string, start time.Time) {
	metrics.ObserveHistogram(metrics.StageDurationSecs, time.Since(start).Seconds(), metrics.Labels{"stage": stage})
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
