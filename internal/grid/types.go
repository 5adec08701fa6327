// Package grid prepares datasets for the external data-grid component.
//
// The grid library owns rendering, filtering, sorting, grouping and
// aggregation. This package only decides what the grid is given:
//
//   - Guard enforces the row-count ceiling (MaxRows). Oversize datasets are
//     replaced by an empty row list and a user-facing message, never
//     truncated.
//   - InferColumnType / InferSchema classify each field from a small sample
//     (number, boolean, date, text).
//   - ColumnDefs and Prepare map the inferred schema to the grid's column
//     definitions and options.
//   - The formatter table renders raw values as display text per type.
//
// Everything here is pure: inputs are never mutated and no state is kept
// between calls.
package grid

import (
	"fmt"
	"strings"
)

// MaxRows is the largest dataset the grid is allowed to display.
const MaxRows = 25000

// SampleSize is how many leading records InferColumnType inspects.
const SampleSize = 10

// ColumnType is the inferred semantic category of a field.
type ColumnType int

// Column types in inference priority order.
const (
	Number ColumnType = iota
	Boolean
	Date
	Text
)

var columnTypeNames = [...]string{
	Number:  "number",
	Boolean: "boolean",
	Date:    "date",
	Text:    "text",
}

// String returns the lower-case name used in JSON and CLI output.
func (t ColumnType) String() string {
	if t < 0 || int(t) >= len(columnTypeNames) {
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
	return columnTypeNames[t]
}

// ParseColumnType is the inverse of String.
func ParseColumnType(s string) (ColumnType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range columnTypeNames {
		if n == s {
			return ColumnType(i), nil
		}
	}
	return Text, fmt.Errorf("grid: unknown column type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(b []byte) error {
	v, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Column is one entry of a Schema.
type Column struct {
	Field string     `json:"field"`
	Type  ColumnType `json:"type"`
}

// Schema is an ordered list of typed columns.
type Schema []Column

// Fields returns the column field names in order.
func (s Schema) Fields() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Field
	}
	return out
}

// TypeOf returns the type of field, or Text if the schema has no such column.
func (s Schema) TypeOf(field string) ColumnType {
	for _, c := range s {
		if c.Field == field {
			return c.Type
		}
	}
	return Text
}
