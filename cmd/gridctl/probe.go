package main

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"griddemo/internal/grid"
	"griddemo/internal/loader"
	"griddemo/pkg/records"
)

type probeFlags struct {
	maxRows  int
	comma    string
	selector string
	preview  int
}

func newProbeCmd(ro *rootOptions) *cobra.Command {
	f := &probeFlags{}
	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Load a file and print its inferred columns and guard result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-rows") {
				cfg.MaxRows = f.maxRows
			}

			opts := loader.Options{TableSelector: f.selector}
			if f.comma != "" {
				r := []rune(f.comma)
				if len(r) != 1 {
					return fmt.Errorf("--comma must be a single character, got %q", f.comma)
				}
				opts.Comma = r[0]
			}

			ds, err := loader.LoadFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			schema := grid.InferSchema(ds)
			fmt.Fprintln(out, "field,type")
			for _, c := range schema {
				fmt.Fprintf(out, "%s,%s\n", c.Field, c.Type)
			}

			p := printerFor(cfg)
			res := grid.Guard{MaxRows: grid.Limit(cfg.MaxRows), Printer: p}.Check(ds)
			if !res.Accepted {
				fmt.Fprintln(out, res.Message)
				return nil
			}
			kind := "rows"
			if ds.Tree {
				kind = "tree rows"
			}
			p.Fprintf(out, "%s: %d %s (limit %d)\n", ds.Name, res.Attempted, kind, res.Max)

			if f.preview > 0 {
				fmt.Fprintln(out)
				return writePreview(out, grid.NewFormatter(p), schema, res.Rows, f.preview)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.maxRows, "max-rows", 0, "row-count ceiling (default 25000)")
	fl.StringVar(&f.comma, "comma", "", "CSV field delimiter (default ,)")
	fl.StringVar(&f.selector, "table", "", "CSS selector of the HTML table (default: first table)")
	fl.IntVar(&f.preview, "preview", 0, "print the first N rows as the grid would display them")
	return cmd
}

// writePreview prints up to n rows as tab-separated display text, one
// column per schema entry.
func writePreview(w io.Writer, f grid.Formatter, schema grid.Schema, rows []records.Record, n int) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := make([]string, len(schema))
	cells := make([]func(any) string, len(schema))
	for i, c := range schema {
		header[i] = grid.HeaderName(c.Field)
		cells[i] = f.Column(c.Type)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	line := make([]string, len(schema))
	for _, r := range rows[:min(n, len(rows))] {
		for i, c := range schema {
			v, _ := r.Get(c.Field)
			line[i] = cells[i](v)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
