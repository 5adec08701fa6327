// Package export writes a dataset into a SQL table through a
// storage.Repository: guard, infer the schema, create the table, then insert
// in batches tagged with a snapshot id.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/message"

	"griddemo/internal/grid"
	"griddemo/internal/metrics"
	"griddemo/internal/storage"
	"griddemo/pkg/records"
)

// SnapshotColumn is prepended to every exported table. All rows written by
// one Run share its value.
const SnapshotColumn = "snapshot_id"

// DefaultBatchSize is the number of rows per InsertRows call.
const DefaultBatchSize = 1000

// ErrRejected matches errors returned when the row-count guard rejects the
// dataset.
var ErrRejected = errors.New("export: dataset rejected")

// RejectedError carries the guard outcome of a rejected export.
type RejectedError struct {
	Guard grid.GuardResult
}

func (e *RejectedError) Error() string { return "export: " + e.Guard.Message }

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// Options controls Run. The zero value exports into a table named after the
// dataset, with the default guard and batch size.
type Options struct {
	// Table overrides the target table; may be schema-qualified.
	Table string

	// BatchSize is the rows per insert (DefaultBatchSize when <= 0).
	BatchSize int

	// SkipGuard exports datasets of any size.
	SkipGuard bool

	// MaxRows is the guard ceiling (grid.MaxRows when <= 0).
	MaxRows int

	// Printer formats the guard message; nil uses the host locale.
	Printer *message.Printer

	Metrics metrics.Backend
	Logger  *log.Logger

	// NewID returns the snapshot id; defaults to uuid.New.
	NewID func() uuid.UUID
}

// Result summarizes a completed export.
type Result struct {
	SnapshotID uuid.UUID `json:"snapshot_id"`
	Table      string    `json:"table"`
	Rows       int64     `json:"rows"`
	Batches    int       `json:"batches"`
}

func (o Options) withDefaults(ds records.Dataset) Options {
	if o.Table == "" {
		o.Table = TableName(ds.Name)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	o.MaxRows = grid.Limit(o.MaxRows)
	o.Metrics = metrics.OrNop(o.Metrics)
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.NewID == nil {
		o.NewID = uuid.New
	}
	return o
}

// Run exports ds into repo. A guard rejection returns a *RejectedError
// (errors.Is(err, ErrRejected)) before anything is written. Rows already
// inserted stay in place when a later batch fails.
func Run(ctx context.Context, repo storage.Repository, ds records.Dataset, opts Options) (Result, error) {
	opts = opts.withDefaults(ds)

	if !opts.SkipGuard {
		g := grid.Guard{MaxRows: opts.MaxRows, Printer: opts.Printer}.Check(ds)
		opts.Metrics.IncCounter(metrics.GuardTotal, 1, metrics.Labels{
			"dataset": ds.Name,
			"result":  metrics.GuardResult(g.Accepted),
		})
		if !g.Accepted {
			return Result{}, &RejectedError{Guard: g}
		}
	}

	schema := grid.InferSchema(ds)
	if len(schema) == 0 {
		return Result{}, fmt.Errorf("export: dataset %s has no columns", ds.Name)
	}
	spec, err := TableFor(opts.Table, ds.Rows, schema)
	if err != nil {
		return Result{}, err
	}
	if err := repo.EnsureTable(ctx, spec); err != nil {
		return Result{}, fmt.Errorf("export: %w", err)
	}

	res := Result{SnapshotID: opts.NewID(), Table: spec.Name}
	columns := spec.ColumnNames()
	kinds := make([]storage.ColumnKind, len(spec.Columns))
	for i, c := range spec.Columns {
		kinds[i] = c.Kind
	}
	labels := metrics.Labels{"table": spec.Name}

	for start := 0; start < len(ds.Rows); start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := min(start+opts.BatchSize, len(ds.Rows))
		batch := make([][]any, 0, end-start)
		for _, r := range ds.Rows[start:end] {
			batch = append(batch, rowValues(res.SnapshotID, r, schema, kinds))
		}

		n, err := repo.InsertRows(ctx, spec.Name, columns, batch)
		if err != nil {
			return res, fmt.Errorf("export: batch %d: %w", res.Batches+1, err)
		}
		res.Rows += n
		res.Batches++
		opts.Metrics.IncCounter(metrics.ExportRowsTotal, float64(n), labels)
		opts.Metrics.IncCounter(metrics.ExportBatches, 1, labels)
	}

	opts.Logger.Printf("export: %s: %d row(s) in %d batch(es) into %s (snapshot %s)",
		ds.Name, res.Rows, res.Batches, spec.Name, res.SnapshotID)
	return res, nil
}

// TableFor builds the table spec for rows: the snapshot column followed by
// one nullable column per schema field.
func TableFor(table string, rows []records.Record, schema grid.Schema) (storage.TableSpec, error) {
	spec := storage.TableSpec{
		Name:    table,
		Columns: []storage.ColumnSpec{{Name: SnapshotColumn, Kind: storage.KindUUID}},
	}
	for _, col := range schema {
		if strings.EqualFold(col.Field, SnapshotColumn) {
			return storage.TableSpec{}, fmt.Errorf("export: field %q collides with the snapshot column", col.Field)
		}
		spec.Columns = append(spec.Columns, storage.ColumnSpec{
			Name:     col.Field,
			Kind:     ColumnKind(rows, col),
			Nullable: true,
		})
	}
	if err := spec.Validate(); err != nil {
		return storage.TableSpec{}, fmt.Errorf("export: %w", err)
	}
	return spec, nil
}

// TableName derives a portable table name from a dataset name: lower case,
// runs of other characters collapsed to "_", never starting with a digit.
func TableName(dataset string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(dataset)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if name == "" {
		return "dataset"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	return name
}
