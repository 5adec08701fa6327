package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"griddemo/pkg/records"
)

// DefaultTableSelector is used when Options.TableSelector is empty.
const DefaultTableSelector = "table"

// ReadHTML reads the first table matching Options.TableSelector.
//
// The header comes from the first row: its th cells, or its td cells when it
// has none. Every later row with at least one cell becomes a record, with
// cells coerced the same way as CSV.
func ReadHTML(ctx context.Context, r io.Reader, opts Options) ([]records.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("html: parse: %w", err)
	}

	sel := opts.TableSelector
	if sel == "" {
		sel = DefaultTableSelector
	}
	table := doc.Find(sel).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("html: %w for selector %q", ErrNoTable, sel)
	}

	trs := table.Find("tr")
	if trs.Length() == 0 {
		return []records.Record{}, nil
	}

	head := trs.First()
	cells := head.Find("th")
	if cells.Length() == 0 {
		cells = head.Find("td")
	}
	fields := headerNames(texts(cells), opts)

	rows := []records.Record{}
	var cerr error
	trs.Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if cerr = ctx.Err(); cerr != nil {
			return false
		}
		vals := texts(tr.Find("td, th"))
		if len(vals) == 0 {
			return true
		}
		row := make(records.Record, len(fields))
		for i, name := range fields {
			row[i].Name = name
			if i < len(vals) {
				row[i].Value = cell(vals[i], opts)
			}
		}
		rows = append(rows, row)
		return true
	})
	if cerr != nil {
		return nil, cerr
	}
	return rows, nil
}

func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}
