package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"griddemo/internal/catalog"
	"griddemo/internal/config"
	"griddemo/internal/metrics"
	"griddemo/internal/metrics/datadog"
	"griddemo/internal/sampledata"
	"griddemo/internal/server"
)

type serveFlags struct {
	addr       string
	dataDir    string
	regenerate string
	maxRows    int
	debounce   time.Duration
	datadog    bool
	ddTags     string
}

func newServeCmd(ro *rootOptions) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ro.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, log.Default())
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func (f *serveFlags) register(fl *pflag.FlagSet) {
	fl.StringVar(&f.addr, "addr", "", "listen address (default :8080, env "+config.EnvAddr+")")
	fl.StringVar(&f.dataDir, "data-dir", "", "directory of .csv/.json/.html datasets to serve and watch")
	fl.StringVar(&f.regenerate, "regenerate", "", `cron expression for regenerating presets (e.g. "@every 10m")`)
	fl.IntVar(&f.maxRows, "max-rows", 0, "row-count ceiling (default 25000)")
	fl.DurationVar(&f.debounce, "watch-debounce", 0, "delay before reloading a changed file (default 500ms)")
	fl.BoolVar(&f.datadog, "datadog", false, "submit metrics to Datadog (needs DD_API_KEY)")
	fl.StringVar(&f.ddTags, "dd-tags", "", "extra Datadog tags, comma separated")
}

// apply overrides cfg with the flags set on the command line.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("addr") {
		cfg.Addr = f.addr
	}
	if fl.Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if fl.Changed("regenerate") {
		cfg.Regenerate = f.regenerate
	}
	if fl.Changed("max-rows") {
		cfg.MaxRows = f.maxRows
	}
	if fl.Changed("watch-debounce") {
		cfg.WatchDebounce = config.Duration(f.debounce)
	}
	if fl.Changed("datadog") {
		cfg.Datadog.Enabled = f.datadog
	}
	if fl.Changed("dd-tags") {
		cfg.Datadog.Tags = datadog.ParseTagsCSV(f.ddTags)
	}
}

func runServe(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	cat, err := catalog.New(ctx, catalog.Options{
		Presets:   sampledata.Presets(),
		Generator: sampledata.NewGenerator(),
		DataDir:   cfg.DataDir,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if cfg.Regenerate != "" {
		stopCron, err := cat.Schedule(cfg.Regenerate)
		if err != nil {
			return err
		}
		defer stopCron()
	}

	if cfg.DataDir != "" {
		go func() {
			if err := cat.Watch(ctx, time.Duration(cfg.WatchDebounce)); err != nil {
				logger.Printf("serve: watch stopped: %v", err)
			}
		}()
	}

	var backend metrics.Backend = metrics.Nop{}
	if cfg.Datadog.Enabled {
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			Service:    cfg.Datadog.Service,
			Tags:       cfg.Datadog.Tags,
			FlushEvery: time.Duration(cfg.Datadog.FlushEvery),
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := dd.Close(); err != nil {
				logger.Printf("serve: datadog flush: %v", err)
			}
		}()
		backend = dd
	}

	srv := server.New(server.Options{
		Datasets: cat,
		MaxRows:  cfg.MaxRows,
		Printer:  printerFor(cfg),
		Metrics:  backend,
		Logger:   logger,
	})
	return srv.ListenAndServe(ctx, cfg.Addr)
}
