// Package loader turns CSV, JSON and HTML table files into datasets.
//
// Loaded rows keep their source column order. Cell text is coerced into
// native values (nil, bool, int64, float64) so that column inference sees the
// same kinds of values as generated data; JSON numbers stay json.Number.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"griddemo/pkg/records"
)

// Format is a supported input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

var (
	// ErrUnsupported is returned for files whose extension has no loader.
	ErrUnsupported = errors.New("unsupported format")

	// ErrNoTable is returned when an HTML document has no matching table.
	ErrNoTable = errors.New("no table found")
)

// Options tunes the loaders. The zero value trims cells, coerces them and
// reads comma-separated CSV with a header row.
type Options struct {
	// Comma is the CSV field delimiter; zero means ','.
	Comma rune

	// NoTrim keeps leading and trailing whitespace in cells.
	NoTrim bool

	// NoCoerce keeps every non-empty cell as a string.
	NoCoerce bool

	// HeaderMap renames source headers before they become field names.
	HeaderMap map[string]string

	// TableSelector picks the HTML table; empty means "table". The first
	// match is used.
	TableSelector string

	// OnError, when set, receives malformed CSV lines, which are then
	// skipped. Without it the first malformed line aborts the load.
	OnError func(line int, err error)
}

// FormatOf maps a file extension to its Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("loader: %s: %w", path, ErrUnsupported)
	}
}

// Supported reports whether LoadFile can read path.
func Supported(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}

// DatasetName is the base file name without its extension.
func DatasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile reads path with the loader matching its extension.
func LoadFile(ctx context.Context, path string, opts Options) (records.Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return records.Dataset{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Load(ctx, f, format, opts)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("loader: %s: %w", path, err)
	}
	ds.Name = DatasetName(path)
	return ds, nil
}

// Load reads r as format. The returned dataset is unnamed.
//
// Rows whose every record carries a non-empty string-list path field are
// marked as a tree dataset.
func Load(ctx context.Context, r io.Reader, format Format, opts Options) (records.Dataset, error) {
	var (
		rows []records.Record
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = ReadCSV(ctx, r, opts)
	case FormatJSON:
		rows, err = ReadJSON(ctx, r, opts)
	case FormatHTML:
		rows, err = ReadHTML(ctx, r, opts)
	default:
		return records.Dataset{}, fmt.Errorf("loader: %q: %w", format, ErrUnsupported)
	}
	if err != nil {
		return records.Dataset{}, err
	}
	return records.Dataset{Rows: rows, Tree: isTree(rows)}, nil
}

func isTree(rows []records.Record) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		v, ok := r.Get(records.PathField)
		if !ok {
			return false
		}
		p, ok := v.([]string)
		if !ok || len(p) == 0 {
			return false
		}
	}
	return true
}

// headerNames cleans raw header cells into unique field names: whitespace
// and a leading BOM are stripped, HeaderMap renames apply, blanks become
// columnN and repeats get a numeric suffix.
func headerNames(raw []string, opts Options) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.TrimSpace(h)
		if mapped, ok := opts.HeaderMap[h]; ok {
			h = mapped
		}
		if h == "" {
			h = fmt.Sprintf("column%d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s_%d", h, n)
		}
		out[i] = h
	}
	return out
}

// cell prepares one text cell according to opts.
func cell(s string, opts Options) any {
	if !opts.NoTrim {
		s = strings.TrimSpace(s)
	}
	if opts.NoCoerce {
		if s == "" {
			return nil
		}
		return s
	}
	return Coerce(s)
}
