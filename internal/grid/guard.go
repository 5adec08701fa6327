package grid

import (
	"golang.org/x/text/message"

	"griddemo/internal/locale"
	"griddemo/pkg/records"
)

// GuardResult is the outcome of a row-count check.
//
// When Accepted is false, Rows is empty (never a prefix of the input) and
// Message explains why. When Accepted is true, Rows is the input unchanged
// and Message is empty.
type GuardResult struct {
	Accepted  bool             `json:"accepted"`
	Rows      []records.Record `json:"-"`
	Message   string           `json:"message,omitempty"`
	Attempted int              `json:"attempted"`
	Max       int              `json:"max"`
}

// Guard gates datasets by size. Use DefaultGuard for the standard ceiling;
// a zero MaxRows accepts only empty datasets.
type Guard struct {
	// MaxRows is the ceiling. A dataset is rejected iff it has more rows.
	MaxRows int

	// Printer formats the counts in the rejection message. Nil means the
	// locale resolved from the environment at check time.
	Printer *message.Printer
}

// DefaultGuard returns a Guard with the MaxRows ceiling and the host locale.
func DefaultGuard() Guard {
	return Guard{MaxRows: MaxRows}
}

// Limit returns maxRows, or the MaxRows default when maxRows <= 0. Callers
// that take a configurable ceiling pass it through Limit so that 0 means
// "default" everywhere.
func Limit(maxRows int) int {
	if maxRows <= 0 {
		return MaxRows
	}
	return maxRows
}

// CheckRows checks rows against maxRows using the host locale.
func CheckRows(rows []records.Record, maxRows int) GuardResult {
	return Guard{MaxRows: maxRows}.CheckRows(rows)
}

// Check checks a dataset.
func (g Guard) Check(ds records.Dataset) GuardResult {
	return g.CheckRows(ds.Rows)
}

// CheckRows rejects rows when there are more than the configured maximum.
func (g Guard) CheckRows(rows []records.Record) GuardResult {
	limit := g.MaxRows
	n := len(rows)
	if n <= limit {
		return GuardResult{Accepted: true, Rows: rows, Attempted: n, Max: limit}
	}

	p := g.Printer
	if p == nil {
		p = locale.DefaultPrinter()
	}
	return GuardResult{
		Accepted:  false,
		Rows:      []records.Record{},
		Message:   RejectionMessage(p, limit, n),
		Attempted: n,
		Max:       limit,
	}
}

// RejectionMessage renders the oversize diagnostic with locale-grouped counts.
func RejectionMessage(p *message.Printer, limit, attempted int) string {
	return p.Sprintf("Error: Cannot display more than %d rows. Currently attempting to load %d rows.", limit, attempted)
}
