package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"griddemo/internal/catalog"
	"griddemo/internal/config"
	"griddemo/internal/export"
	"griddemo/internal/loader"
	"griddemo/internal/sampledata"
	"griddemo/internal/storage"
	"griddemo/pkg/records"
)

type exportFlags struct {
	dataset   string
	file      string
	backend   string
	dsn       string
	table     string
	batchSize int
	maxRows   int
	skipGuard bool
}

func newExportCmd(ro *rootOptions) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dataset into a SQL table",
		Long: `Export a preset (--dataset) or a file (--file) into sqlite, postgres or mssql.

The DSN is taken from --dsn, then DSN, then DSN_HOST/DSN_PORT/DSN_USER/
DSN_PASSWORD/DSN_DB (+ DSN_PARAMS, DSN_SSLMODE, DSN_ENCRYPT, DSN_SQLITE),
then storage.dsn from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ro.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			kind := config.NormalizeBackend(cfg.Storage.Kind)
			dsn, err := config.ResolveDSN(kind, f.dsn, cfg.Storage.DSN, os.LookupEnv)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ds, err := f.load(ctx, cfg)
			if err != nil {
				return err
			}

			repo, err := storage.New(ctx, storage.Config{Kind: kind, DSN: dsn})
			if err != nil {
				return fmt.Errorf("open %s: %w", kind, err)
			}
			defer repo.Close()

			res, err := export.Run(ctx, repo, ds, export.Options{
				Table:     cfg.Storage.Table,
				BatchSize: cfg.Storage.BatchSize,
				SkipGuard: f.skipGuard,
				MaxRows:   cfg.MaxRows,
				Printer:   printerFor(cfg),
				Logger:    log.New(cmd.ErrOrStderr(), "", log.LstdFlags),
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.dataset, "dataset", "", "preset (or data-dir file) name to export")
	fl.StringVar(&f.file, "file", "", "path of a .csv/.json/.html file to export")
	fl.StringVar(&f.backend, "backend", "", "sqlite, postgres or mssql (default sqlite)")
	fl.StringVar(&f.dsn, "dsn", "", "database DSN (overrides DSN env vars and config)")
	fl.StringVar(&f.table, "table", "", "target table, optionally schema-qualified (default: dataset name)")
	fl.IntVar(&f.batchSize, "batch-size", 0, "rows per insert (default 1000)")
	fl.IntVar(&f.maxRows, "max-rows", 0, "row-count ceiling (default 25000)")
	fl.BoolVar(&f.skipGuard, "skip-guard", false, "export datasets over the row-count ceiling")
	cmd.MarkFlagsMutuallyExclusive("dataset", "file")
	cmd.MarkFlagsOneRequired("dataset", "file")
	return cmd
}

func (f *exportFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("backend") {
		cfg.Storage.Kind = f.backend
	}
	if fl.Changed("table") {
		cfg.Storage.Table = f.table
	}
	if fl.Changed("batch-size") {
		cfg.Storage.BatchSize = f.batchSize
	}
	if fl.Changed("max-rows") {
		cfg.MaxRows = f.maxRows
	}
}

func (f *exportFlags) load(ctx context.Context, cfg config.Config) (records.Dataset, error) {
	if f.file != "" {
		return loader.LoadFile(ctx, f.file, loader.Options{})
	}
	cat, err := catalog.New(ctx, catalog.Options{
		Presets:   sampledata.Presets(),
		Generator: sampledata.NewGenerator(),
		DataDir:   cfg.DataDir,
		Logger:    catalog.Discard,
	})
	if err != nil {
		return records.Dataset{}, err
	}
	return cat.Get(f.dataset)
}
