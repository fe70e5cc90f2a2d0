// Package loader persists a typed dataset into a storage table in fixed-size
// batches, degrading to smaller sub-batches when a batch insert fails.
//
// Failure model:
//   - A batch insert failure is never fatal: the batch is re-attempted as
//     independent sub-batches.
//   - A sub-batch insert failure drops exactly that sub-batch's rows. No
//     further subdivision is attempted.
//   - Only an unrecoverable error before the first batch (a context already
//     canceled, a dead connection surfacing on the very first use) aborts the
//     load as a whole.
//
// Partial loss is reported as data in the Outcome, not as an error.
package loader

import (
	"context"
	"fmt"
	"log"
	"time"

	"sheetload/internal/metrics"
)

// Batch sizing policy. Fixed constants, not per-call configuration: the inner
// size bounds the blast radius of a single poison row to at most 25 rows.
const (
	// BatchSize is the outer-tier multi-row insert size.
	BatchSize = 100
	// SubBatchSize is the inner-tier retry insert size.
	SubBatchSize = 25
)

// Logger is the minimal logging interface used by the loader.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// RowWriter is the single storage capability the loader needs.
// storage.Repository satisfies this interface.
type RowWriter interface {
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// RowRange is a contiguous run of dropped rows, identified by zero-based
// positions in the dataset's load order. Both ends are inclusive.
type RowRange struct {
	Start int
	End   int
}

func (r RowRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("row %d", r.Start)
	}
	return fmt.Sprintf("rows %d-%d", r.Start, r.End)
}

// Len returns the number of rows in the range.
func (r RowRange) Len() int { return r.End - r.Start + 1 }

// Outcome records what happened to every row of one load call.
// It is finalized when Load returns and never mutated afterward.
type Outcome struct {
	Attempted int
	Persisted int
	Dropped   []RowRange
}

// DroppedRows returns the total number of rows lost across all ranges.
func (o Outcome) DroppedRows() int {
	n := 0
	for _, r := range o.Dropped {
		n += r.Len()
	}
	return n
}

// Degraded reports whether any rows were lost.
func (o Outcome) Degraded() bool { return o.Persisted < o.Attempted }

// addDropped records a lost range, coalescing with the previous range when
// they are adjacent (two failing sub-batches of one batch read as one run).
func (o *Outcome) addDropped(start, end int) {
	if n := len(o.Dropped); n > 0 && o.Dropped[n-1].End+1 == start {
		o.Dropped[n-1].End = end
		return
	}
	o.Dropped = append(o.Dropped, RowRange{Start: start, End: end})
}

// Loader writes rows through a RowWriter with two-tier degradation.
type Loader struct {
	writer RowWriter
	log    Logger
}

// New constructs a Loader. A nil logger discards all output.
func New(w RowWriter, logger Logger) *Loader {
	if logger == nil {
		logger = log.New(discardWriter{}, "", 0)
	}
	return &Loader{writer: w, log: logger}
}

// Load persists rows into table, maximizing the number of rows durably
// committed even when individual inserts fail.
//
// Edge cases:
//   - An empty row set returns a zero Outcome and never touches storage.
//   - persisted < attempted is NOT an error; callers inspect the Outcome.
//
// Errors:
//   - Returns an error only for unrecoverable conditions before the first
//     batch is attempted (canceled context, nil writer).
func (l *Loader) Load(ctx context.Context, table string, columns []string, rows [][]any) (Outcome, error) {
	out := Outcome{Attempted: len(rows)}
	if len(rows) == 0 {
		return out, nil
	}
	if l.writer == nil {
		return Outcome{}, fmt.Errorf("load %s: no row writer", table)
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("load %s: %w", table, err)
	}

	for start := 0; start < len(rows); start += BatchSize {
		end := start + BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		l.loadBatch(ctx, table, columns, rows[start:end], start, &out)
	}

	metrics.IncCounter(metrics.RowsTotal, float64(out.Attempted), metrics.Labels{"kind": "attempted"})
	metrics.IncCounter(metrics.RowsTotal, float64(out.Persisted), metrics.Labels{"kind": "persisted"})
	if dropped := out.DroppedRows(); dropped > 0 {
		metrics.IncCounter(metrics.RowsTotal, float64(dropped), metrics.Labels{"kind": "dropped"})
	}
	return out, nil
}

// loadBatch attempts one outer-tier batch, falling back to sub-batches on
// failure. offset is the batch's starting position in the full row set.
func (l *Loader) loadBatch(ctx context.Context, table string, columns []string, batch [][]any, offset int, out *Outcome) {
	start := time.Now()
	_, err := l.writer.InsertRows(ctx, table, columns, batch)
	if err == nil {
		out.Persisted += len(batch)
		metrics.IncCounter(metrics.BatchesTotal, 1, metrics.Labels{"status": "ok"})
		l.log.Printf("stage=load_batch table=%s rows=%d-%d status=ok duration=%s",
			table, offset, offset+len(batch)-1, durMS(start))
		return
	}
	l.log.Printf("stage=load_batch table=%s rows=%d-%d status=retrying duration=%s err=%v",
		table, offset, offset+len(batch)-1, durMS(start), err)

	degraded := false
	for s := 0; s < len(batch); s += SubBatchSize {
		e := s + SubBatchSize
		if e > len(batch) {
			e = len(batch)
		}
		sub := batch[s:e]
		subStart := time.Now()
		if _, err := l.writer.InsertRows(ctx, table, columns, sub); err != nil {
			degraded = true
			out.addDropped(offset+s, offset+e-1)
			l.log.Printf("stage=load_subbatch table=%s rows=%d-%d status=dropped duration=%s err=%v",
				table, offset+s, offset+e-1, durMS(subStart), err)
			continue
		}
		out.Persisted += len(sub)
	}

	status := "degraded"
	if !degraded {
		status = "recovered"
	}
	metrics.IncCounter(metrics.BatchesTotal, 1, metrics.Labels{"status": status})
	l.log.Printf("stage=load_batch table=%s rows=%d-%d status=%s duration=%s",
		table, offset, offset+len(batch)-1, status, durMS(start))
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
