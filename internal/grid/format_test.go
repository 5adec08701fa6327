package grid

import (
	"encoding/json"
	"testing"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestFormatterTable(t *testing.T) {
	t.Parallel()

	f := NewFormatter(message.NewPrinter(language.AmericanEnglish))
	tests := []struct {
		name string
		typ  ColumnType
		in   any
		want string
	}{
		{"nil number", Number, nil, ""},
		{"nil text", Text, nil, ""},
		{"int grouped", Number, 125000, "125,000"},
		{"int64 grouped", Number, int64(1234567), "1,234,567"},
		{"float two decimals", Number, 1234.5678, "1,234.57"},
		{"json int", Number, json.Number("50000"), "50,000"},
		{"json float", Number, json.Number("0.5"), "0.5"},
		{"bool true", Boolean, true, "true"},
		{"bool false", Boolean, false, "false"},
		{"date string", Date, "2021-06-15", "2021-06-15"},
		{"slash date normalized", Date, "2021/06/15", "2021-06-15"},
		{"timestamp string", Date, "2024-03-01 10:00:00", "2024-03-01T10:00:00Z"},
		{"midnight time", Date, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), "2020-01-02"},
		{"unparsable date kept", Date, "someday", "someday"},
		{"text string", Text, "John Smith", "John Smith"},
		{"text path", Text, []string{"Sales", "SMB"}, "Sales / SMB"},
		{"text fallback", Text, 42, "42"},
		{"wrong kind for number", Number, "n/a", "n/a"},
		{"unknown type", ColumnType(9), "x", "x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := f.Format(tt.typ, tt.in); got != tt.want {
				t.Fatalf("Format(%v, %#v) = %q, want %q", tt.typ, tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatterColumnMatchesFormat(t *testing.T) {
	t.Parallel()

	f := NewFormatter(message.NewPrinter(language.German))
	col := f.Column(Number)
	if got, want := col(30000), f.Format(Number, 30000); got != want || got != "30.000" {
		t.Fatalf("Column(Number)(30000) = %q, Format = %q", got, want)
	}
	if got := col(nil); got != "" {
		t.Fatalf("Column(Number)(nil) = %q", got)
	}
}
