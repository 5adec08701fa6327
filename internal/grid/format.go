package grid

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"griddemo/internal/locale"
)

// formatFunc renders one raw value as display text.
type formatFunc func(p *message.Printer, v any) string

// formatters is looked up once per column; entries hold no state.
var formatters = map[ColumnType]formatFunc{
	Number:  formatNumber,
	Boolean: formatBoolean,
	Date:    formatDate,
	Text:    formatText,
}

// Formatter renders values as display text according to their column type.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a Formatter using p; a nil p uses the host locale.
func NewFormatter(p *message.Printer) Formatter {
	if p == nil {
		p = locale.DefaultPrinter()
	}
	return Formatter{p: p}
}

// Format renders v as a value of type t. Nil renders as "".
func (f Formatter) Format(t ColumnType, v any) string {
	if v == nil {
		return ""
	}
	fn, ok := formatters[t]
	if !ok {
		fn = formatText
	}
	return fn(f.p, v)
}

// Column returns the format function for a column, resolved once so that
// callers rendering many rows skip the table lookup.
func (f Formatter) Column(t ColumnType) func(v any) string {
	fn, ok := formatters[t]
	if !ok {
		fn = formatText
	}
	p := f.p
	return func(v any) string {
		if v == nil {
			return ""
		}
		return fn(p, v)
	}
}

func formatNumber(p *message.Printer, v any) string {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return p.Sprintf("%d", n)
	case float32:
		return p.Sprint(number.Decimal(float64(n), number.MaxFractionDigits(2)))
	case float64:
		return p.Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return p.Sprintf("%d", i)
		}
		if fl, err := n.Float64(); err == nil {
			return p.Sprint(number.Decimal(fl, number.MaxFractionDigits(2)))
		}
		return n.String()
	default:
		return formatText(p, v)
	}
}

func formatBoolean(p *message.Printer, v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "true"
		}
		return "false"
	}
	return formatText(p, v)
}

func formatDate(p *message.Printer, v any) string {
	switch d := v.(type) {
	case time.Time:
		return formatTime(d, isMidnight(d))
	case string:
		t, dateOnly, ok := ParseDate(d)
		if !ok {
			return d
		}
		return formatTime(t, dateOnly)
	default:
		return formatText(p, v)
	}
}

func formatTime(t time.Time, dateOnly bool) string {
	if dateOnly {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func formatText(_ *message.Printer, v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []string:
		return strings.Join(s, " / ")
	default:
		return fmt.Sprint(v)
	}
}
