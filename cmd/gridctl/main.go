// Command gridctl serves, generates, probes and exports grid datasets.
//
//	gridctl serve --addr :8080 --data-dir ./data --regenerate "@every 10m"
//	gridctl generate --count 1000 --format csv > employees.csv
//	gridctl probe employees.csv
//	gridctl export --dataset medium --backend sqlite --dsn file:grid.db
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"griddemo/internal/config"
	"griddemo/internal/locale"

	// storage backends register themselves with storage.New
	_ "griddemo/internal/storage/mssql"
	_ "griddemo/internal/storage/postgres"
	_ "griddemo/internal/storage/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	locale     string
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:           "gridctl",
		Short:         "Serve, generate, probe and export data grid datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&ro.configPath, "config", "", "path to a JSON config file")
	root.PersistentFlags().StringVar(&ro.locale, "locale", "", "locale for number grouping (e.g. de-DE); default from LANG")

	root.AddCommand(
		newServeCmd(ro),
		newGenerateCmd(),
		newProbeCmd(ro),
		newExportCmd(ro),
	)
	return root
}

// load reads the config file and environment, then applies the root flags.
func (ro *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("locale") {
		cfg.Locale = ro.locale
	}
	return cfg, nil
}

func printerFor(cfg config.Config) *message.Printer {
	return locale.Printer(locale.Parse(cfg.Locale))
}
