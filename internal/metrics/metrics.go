// Package metrics decouples the import pipeline from any concrete metrics
// vendor. Pipeline code records counters and duration samples against the
// package-level backend; binaries decide at startup whether that backend is
// the no-op default or a real one (internal/metrics/datadog).
package metrics

import "sync/atomic"

// Labels attach low-cardinality dimensions to a metric sample.
type Labels map[string]string

// Backend is the minimal sink interface an exporter must implement.
type Backend interface {
	// IncCounter adds delta to a named counter. Non-positive deltas are ignored.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records one sample of a named distribution.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush submits anything buffered. Called at least once at shutdown.
	Flush() error
}

// Metric names recorded by the import pipeline.
const (
	RowsTotal         = "import_rows_total"             // labels: kind=attempted|persisted|dropped|duplicates_removed
	BatchesTotal      = "import_batches_total"          // labels: status=ok|degraded|failed
	StageDurationSecs = "import_stage_duration_seconds" // labels: stage
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// holder keeps atomic.Value happy: the stored concrete type must never
// change, so the Backend travels inside a fixed wrapper type.
type holder struct{ b Backend }

var backend atomic.Value // of holder

func init() {
	backend.Store(holder{b: nopBackend{}})
}

// SetBackend installs the process-wide backend. Call once at startup before
// any import runs.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	backend.Store(holder{b: b})
}

func current() Backend { return backend.Load().(holder).b }

// IncCounter records a counter increment on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records a distribution sample on the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush flushes the installed backend.
func Flush() error { return current().Flush() }
