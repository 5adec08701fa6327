// Package metrics is the small instrumentation surface the rest of the
// module depends on. Concrete exporters (see metrics/datadog) implement
// Backend; code that is not configured for metrics uses Nop.
package metrics

import "time"

// Labels are metric dimensions.
type Labels map[string]string

// Backend receives counter increments and histogram observations.
// Implementations must be safe for concurrent use and ignore metric names
// they do not know.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names.
const (
	RequestsTotal   = "grid_requests_total"           // route, status
	RequestDuration = "grid_request_duration_seconds" // route
	GuardTotal      = "grid_guard_total"              // dataset, result
	RowsServedTotal = "grid_rows_served_total"        // dataset
	ExportRowsTotal = "grid_export_rows_total"        // table
	ExportBatches   = "grid_export_batches_total"     // table
)

// Guard result label values.
const (
	GuardAccepted = "accepted"
	GuardRejected = "rejected"
)

// Nop discards everything.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}

// OrNop returns b, or Nop when b is nil.
func OrNop(b Backend) Backend {
	if b == nil {
		return Nop{}
	}
	return b
}

// Since observes the seconds elapsed from start.
func Since(b Backend, name string, start time.Time, labels Labels) {
	b.ObserveHistogram(name, time.Since(start).Seconds(), labels)
}

// GuardResult returns the label value for a guard outcome.
func GuardResult(accepted bool) string {
	if accepted {
		return GuardAccepted
	}
	return GuardRejected
}
