package grid

import (
	"golang.org/x/text/message"

	"griddemo/pkg/records"
)

// TreeGroupHeader is the header of the auto group column for tree datasets.
const TreeGroupHeader = "Organization"

// Options are the grid-level options sent alongside rows and columns.
type Options struct {
	Pagination              bool `json:"pagination"`
	PaginationAutoPageSize  bool `json:"paginationAutoPageSize"`
	EnableCellTextSelection bool `json:"enableCellTextSelection"`
	EnsureDomOrder          bool `json:"ensureDomOrder"`
	AnimateRows             bool `json:"animateRows"`

	TreeData           bool                `json:"treeData,omitempty"`
	TreePathField      string              `json:"treePathField,omitempty"`
	AutoGroupColumnDef *AutoGroupColumnDef `json:"autoGroupColumnDef,omitempty"`
	GroupDefaultExpand int                 `json:"groupDefaultExpanded,omitempty"`
}

// AutoGroupColumnDef configures the generated group column in tree mode.
type AutoGroupColumnDef struct {
	HeaderName string `json:"headerName"`
	MinWidth   int    `json:"minWidth"`
}

// Payload is everything the front end needs to render one dataset.
type Payload struct {
	Dataset       string           `json:"dataset"`
	RowData       []records.Record `json:"rowData"`
	ColumnDefs    []ColumnDef      `json:"columnDefs"`
	DefaultColDef DefaultColumnDef `json:"defaultColDef"`
	GridOptions   Options          `json:"gridOptions"`
	Schema        Schema           `json:"schema"`
	Guard         GuardResult      `json:"guard"`

	// Error is the guard's rejection message; empty when accepted.
	Error string `json:"error,omitempty"`
}

// PrepareOptions tunes Prepare.
type PrepareOptions struct {
	// MaxRows is the guard ceiling; values <= 0 use MaxRows.
	MaxRows int

	// Printer formats guard messages; nil uses the host locale.
	Printer *message.Printer

	// TextFiltersOnly mirrors ColumnOptions.TextFiltersOnly.
	TextFiltersOnly bool
}

// Prepare guards ds, infers its schema and builds the grid configuration.
//
// Columns are derived from the dataset even when the guard rejects it, so the
// grid still shows headers above the empty body.
func Prepare(ds records.Dataset, opts PrepareOptions) Payload {
	res := Guard{MaxRows: Limit(opts.MaxRows), Printer: opts.Printer}.Check(ds)

	schema := InferSchema(ds)
	cols := ColumnDefs(schema, ColumnOptions{Tree: ds.Tree, TextFiltersOnly: opts.TextFiltersOnly})

	return Payload{
		Dataset:       ds.Name,
		RowData:       res.Rows,
		ColumnDefs:    cols,
		DefaultColDef: DefaultColDef(),
		GridOptions:   gridOptions(ds.Tree),
		Schema:        schema,
		Guard:         res,
		Error:         res.Message,
	}
}

func gridOptions(tree bool) Options {
	o := Options{
		Pagination:              true,
		PaginationAutoPageSize:  true,
		EnableCellTextSelection: true,
		EnsureDomOrder:          true,
		AnimateRows:             true,
	}
	if tree {
		o.TreeData = true
		o.TreePathField = records.PathField
		o.AutoGroupColumnDef = &AutoGroupColumnDef{HeaderName: TreeGroupHeader, MinWidth: 250}
		o.GroupDefaultExpand = -1
	}
	return o
}
