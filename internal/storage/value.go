package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NormalizeValue converts a dataset cell into a value every database/sql
// driver and pgx accept: nil, int64, float64, bool, string or time.Time.
// Nested values (objects, mixed arrays) are stored as JSON text.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64, time.Time:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []byte:
		return string(t)
	case []string:
		return strings.Join(t, "/")
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// RowsPerStatement returns how many rows of width columns fit in one
// statement without exceeding maxParams bind parameters. It is at least 1.
func RowsPerStatement(maxParams, columns int) int {
	if columns <= 0 || maxParams <= columns {
		return 1
	}
	return maxParams / columns
}

// Chunk splits rows into consecutive slices of at most size rows.
func Chunk(rows [][]any, size int) [][][]any {
	if size <= 0 {
		size = 1
	}
	out := make([][][]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
