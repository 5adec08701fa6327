package grid

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"griddemo/pkg/records"
)

// InferColumnType classifies field from the first SampleSize records.
//
// Missing and nil values are skipped. An empty sample is Text. Otherwise the
// first category that every sampled value satisfies wins, in this order:
//
//   - Number: native Go numeric values (finite floats) or json.Number.
//   - Boolean: bool values.
//   - Date: time.Time values or strings that parse as a date or timestamp.
//   - Text: anything else.
//
// Strings that merely look numeric are never Number.
func InferColumnType(rows []records.Record, field string) ColumnType {
	n := len(rows)
	if n > SampleSize {
		n = SampleSize
	}

	var seen bool
	allNumber := true
	allBool := true
	allDate := true

	for _, r := range rows[:n] {
		v, ok := r.Get(field)
		if !ok || v == nil {
			continue
		}
		seen = true

		if allNumber && !isNumber(v) {
			allNumber = false
		}
		if allBool {
			if _, ok := v.(bool); !ok {
				allBool = false
			}
		}
		if allDate && !isDate(v) {
			allDate = false
		}
	}

	if !seen {
		return Text
	}
	switch {
	case allNumber:
		return Number
	case allBool:
		return Boolean
	case allDate:
		return Date
	default:
		return Text
	}
}

// InferSchema infers a type for every field of ds, in ds.Fields() order.
// An empty dataset yields an empty schema.
func InferSchema(ds records.Dataset) Schema {
	fields := ds.Fields()
	out := make(Schema, 0, len(fields))
	for _, f := range fields {
		out = append(out, Column{Field: f, Type: InferColumnType(ds.Rows, f)})
	}
	return out
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return isFinite(float64(n))
	case float64:
		return isFinite(n)
	case json.Number:
		f, err := n.Float64()
		return err == nil && isFinite(f)
	default:
		return false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isDate(v any) bool {
	switch d := v.(type) {
	case time.Time:
		return !d.IsZero()
	case string:
		_, _, ok := ParseDate(d)
		return ok
	default:
		return false
	}
}

// dateLayouts are calendar dates without a time component.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// timestampLayouts carry a time of day.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	"02.01.2006 15:04:05",
}

// ParseDate parses s as a calendar date or a timestamp.
//
// dateOnly reports whether s matched a layout without a time component,
// which decides how the formatter renders it.
func ParseDate(s string) (t time.Time, dateOnly bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, lay := range dateLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true, true
		}
	}
	for _, lay := range timestampLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, false, true
		}
	}
	return time.Time{}, false, false
}
