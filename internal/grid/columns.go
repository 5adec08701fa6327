package grid

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"griddemo/pkg/records"
)

// Grid filter component names.
const (
	FilterNumber = "agNumberColumnFilter"
	FilterSet    = "agSetColumnFilter"
	FilterDate   = "agDateColumnFilter"
	FilterText   = "agTextColumnFilter"
)

// ColumnDef is one column definition as the grid library expects it.
type ColumnDef struct {
	Field          string `json:"field"`
	HeaderName     string `json:"headerName"`
	CellDataType   string `json:"cellDataType,omitempty"`
	Filter         string `json:"filter,omitempty"`
	FloatingFilter bool   `json:"floatingFilter"`
	Sortable       bool   `json:"sortable"`
	Resizable      bool   `json:"resizable"`
	EnablePivot    bool   `json:"enablePivot"`
	EnableRowGroup bool   `json:"enableRowGroup"`
	EnableValue    bool   `json:"enableValue,omitempty"`
	AggFunc        string `json:"aggFunc,omitempty"`
}

// DefaultColumnDef holds properties applied to every column.
type DefaultColumnDef struct {
	Flex        int  `json:"flex"`
	MinWidth    int  `json:"minWidth"`
	Sortable    bool `json:"sortable"`
	Filter      bool `json:"filter"`
	Resizable   bool `json:"resizable"`
	EnablePivot bool `json:"enablePivot"`
}

// DefaultColDef returns the properties shared by all columns.
func DefaultColDef() DefaultColumnDef {
	return DefaultColumnDef{
		Flex:        1,
		MinWidth:    100,
		Sortable:    true,
		Filter:      true,
		Resizable:   true,
		EnablePivot: true,
	}
}

// ColumnOptions tunes ColumnDefs.
type ColumnOptions struct {
	// Tree omits the hierarchy path field; the grid renders it as the
	// auto group column instead.
	Tree bool

	// TextFiltersOnly uses the text filter for every column regardless of
	// type.
	TextFiltersOnly bool
}

// HeaderName upper-cases the first character of field and keeps the rest:
// "startDate" becomes "StartDate".
func HeaderName(field string) string {
	if field == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(field)
	// Casers carry state and must not be shared across goroutines.
	return cases.Upper(language.Und).String(field[:size]) + field[size:]
}

// ColumnDefs maps a schema to grid column definitions, in schema order.
func ColumnDefs(schema Schema, opts ColumnOptions) []ColumnDef {
	out := make([]ColumnDef, 0, len(schema))
	for _, c := range schema {
		if opts.Tree && c.Field == records.PathField {
			continue
		}
		def := ColumnDef{
			Field:          c.Field,
			HeaderName:     HeaderName(c.Field),
			CellDataType:   cellDataType(c.Type),
			Filter:         filterFor(c.Type),
			FloatingFilter: true,
			Sortable:       true,
			Resizable:      true,
			EnablePivot:    true,
			EnableRowGroup: true,
		}
		if opts.TextFiltersOnly {
			def.Filter = FilterText
		}
		if c.Type == Number {
			def.EnableValue = true
			def.AggFunc = "sum"
		}
		out = append(out, def)
	}
	return out
}

func filterFor(t ColumnType) string {
	switch t {
	case Number:
		return FilterNumber
	case Boolean:
		return FilterSet
	case Date:
		return FilterDate
	default:
		return FilterText
	}
}

// cellDataType maps a ColumnType to the grid's cell data type names.
func cellDataType(t ColumnType) string {
	switch t {
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Date:
		return "dateString"
	default:
		return "text"
	}
}
