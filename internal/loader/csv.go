package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"griddemo/pkg/records"
)

// ReadCSV reads a CSV document with a header row.
//
// Short rows get nil for their missing columns; cells past the header width
// are dropped. An input with only a header yields no rows.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) ([]records.Record, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	line := 1
	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []records.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	fields := headerNames(hdr, opts)

	rows := []records.Record{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line++
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			if opts.OnError != nil {
				opts.OnError(line, fmt.Errorf("csv read: %w", err))
				continue
			}
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}

		row := make(records.Record, len(fields))
		for i, name := range fields {
			row[i].Name = name
			if i < len(rec) {
				row[i].Value = cell(rec[i], opts)
			}
		}
		rows = append(rows, row)
	}
}
