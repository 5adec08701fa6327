package export

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"griddemo/internal/grid"
	"griddemo/internal/storage"
	"griddemo/pkg/records"
)

// ColumnKind picks the storage kind for col by checking every value, not
// just the inference sample. A column whose later values do not fit its
// inferred type is stored as text.
func ColumnKind(rows []records.Record, col grid.Column) storage.ColumnKind {
	switch col.Type {
	case grid.Number:
		integral := true
		for _, r := range rows {
			v, _ := r.Get(col.Field)
			if v == nil {
				continue
			}
			f, isInt, ok := numberValue(v)
			if !ok {
				return storage.KindText
			}
			if !isInt && !(f == math.Trunc(f) && math.Abs(f) < 1<<53) {
				integral = false
			}
		}
		if integral {
			return storage.KindInteger
		}
		return storage.KindFloat

	case grid.Boolean:
		for _, r := range rows {
			v, _ := r.Get(col.Field)
			if _, ok := v.(bool); v != nil && !ok {
				return storage.KindText
			}
		}
		return storage.KindBoolean

	case grid.Date:
		dateOnly := true
		for _, r := range rows {
			v, _ := r.Get(col.Field)
			if v == nil {
				continue
			}
			t, only, ok := timeValue(v)
			if !ok {
				return storage.KindText
			}
			if !only || !isMidnightUTC(t) {
				dateOnly = false
			}
		}
		if dateOnly {
			return storage.KindDate
		}
		return storage.KindTimestamp
	}
	return storage.KindText
}

func rowValues(id uuid.UUID, r records.Record, schema grid.Schema, kinds []storage.ColumnKind) []any {
	out := make([]any, 0, len(schema)+1)
	out = append(out, id.String())
	for i, col := range schema {
		v, _ := r.Get(col.Field)
		out = append(out, cellValue(kinds[i+1], v))
	}
	return out
}

// cellValue converts v for a column of kind k. ColumnKind has already
// checked that every non-nil value converts.
func cellValue(k storage.ColumnKind, v any) any {
	if v == nil {
		return nil
	}
	switch k {
	case storage.KindInteger:
		switch n := v.(type) {
		case int64:
			return n
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i
			}
		}
		f, _, _ := numberValue(v)
		return int64(f)
	case storage.KindFloat:
		f, _, _ := numberValue(v)
		return f
	case storage.KindBoolean:
		return v
	case storage.KindDate, storage.KindTimestamp:
		t, _, _ := timeValue(v)
		return t
	}

	switch t := storage.NormalizeValue(v).(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

// numberValue reports v as a float64 and whether it is an integer type
// (or an integral json.Number).
func numberValue(v any) (f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int8:
		return float64(n), true, true
	case int16:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case uint8:
		return float64(n), true, true
	case uint16:
		return float64(n), true, true
	case uint32:
		return float64(n), true, true
	case float32:
		return float64(n), false, finite(float64(n))
	case float64:
		return n, false, finite(n)
	case json.Number:
		if _, err := n.Int64(); err == nil {
			f, _ := n.Float64()
			return f, true, true
		}
		f, err := n.Float64()
		return f, false, err == nil && finite(f)
	}
	return 0, false, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func timeValue(v any) (t time.Time, dateOnly bool, ok bool) {
	switch d := v.(type) {
	case time.Time:
		return d, false, !d.IsZero()
	case string:
		return grid.ParseDate(d)
	}
	return time.Time{}, false, false
}

func isMidnightUTC(t time.Time) bool {
	t = t.UTC()
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
