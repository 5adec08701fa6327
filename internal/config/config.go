// Package config holds the gridctl settings. Values are layered: defaults,
// then an optional JSON file, then GRID_* environment variables. Command
// flags are applied last by the caller.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"griddemo/internal/grid"
)

// LookupFunc reads an environment variable; os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// Environment variable names.
const (
	EnvAddr       = "GRID_ADDR"
	EnvDataDir    = "GRID_DATA_DIR"
	EnvMaxRows    = "GRID_MAX_ROWS"
	EnvLocale     = "GRID_LOCALE"
	EnvRegenerate = "GRID_REGENERATE"
	EnvDebounce   = "GRID_WATCH_DEBOUNCE"
	EnvDatadog    = "GRID_DATADOG"
	EnvDDTags     = "GRID_DD_TAGS"
	EnvBackend    = "GRID_BACKEND"
	EnvTable      = "GRID_TABLE"
	EnvBatchSize  = "GRID_BATCH_SIZE"
)

// Config is the full gridctl configuration.
type Config struct {
	Addr    string `json:"addr"`
	DataDir string `json:"data_dir"`
	MaxRows int    `json:"max_rows"`

	// Locale is a BCP 47 tag; empty means the host locale.
	Locale string `json:"locale"`

	// Regenerate is a cron expression for refreshing generated presets.
	// Empty disables it.
	Regenerate string `json:"regenerate"`

	WatchDebounce Duration `json:"watch_debounce"`

	Datadog Datadog `json:"datadog"`
	Storage Storage `json:"storage"`
}

// Datadog configures the metrics exporter.
type Datadog struct {
	Enabled    bool     `json:"enabled"`
	Service    string   `json:"service"`
	Tags       []string `json:"tags"`
	FlushEvery Duration `json:"flush_every"`
}

// Storage configures export targets.
type Storage struct {
	// Kind: "sqlite" | "postgres" | "mssql"
	Kind      string `json:"kind"`
	DSN       string `json:"dsn"`
	Table     string `json:"table"`
	BatchSize int    `json:"batch_size"`
}

// Duration is a time.Duration written as a Go duration string ("500ms").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"500ms\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:          ":8080",
		MaxRows:       grid.MaxRows,
		WatchDebounce: Duration(500 * time.Millisecond),
		Datadog: Datadog{
			Service:    "griddemo",
			FlushEvery: Duration(60 * time.Second),
		},
		Storage: Storage{
			Kind:      "sqlite",
			BatchSize: 1000,
		},
	}
}

// Load returns Default overlaid with the JSON file at path (if path is not
// empty) and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadFile overlays the JSON document at path. Unknown keys are an error.
func (c *Config) ReadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays GRID_* variables found by lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str(EnvAddr, &c.Addr)
	str(EnvDataDir, &c.DataDir)
	str(EnvLocale, &c.Locale)
	str(EnvRegenerate, &c.Regenerate)
	str(EnvBackend, &c.Storage.Kind)
	str(EnvTable, &c.Storage.Table)

	var errs []error
	errs = append(errs, num(EnvMaxRows, &c.MaxRows), num(EnvBatchSize, &c.Storage.BatchSize))

	if v, ok := lookup(EnvDebounce); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvDebounce, err))
		} else {
			c.WatchDebounce = Duration(d)
		}
	}
	if v, ok := lookup(EnvDatadog); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvDatadog, err))
		} else {
			c.Datadog.Enabled = b
		}
	}
	if v, ok := lookup(EnvDDTags); ok && strings.TrimSpace(v) != "" {
		c.Datadog.Tags = splitCSV(v)
	}
	return errors.Join(errs...)
}

// Validate rejects settings no command can run with. A zero MaxRows is
// valid and means the default ceiling (see grid.Limit).
func (c Config) Validate() error {
	var errs []error
	if c.MaxRows < 0 {
		errs = append(errs, fmt.Errorf("max_rows must be >= 0, got %d", c.MaxRows))
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("watch_debounce must be >= 0"))
	}
	if c.Storage.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("storage.batch_size must be >= 0, got %d", c.Storage.BatchSize))
	}
	if c.Storage.Kind != "" && NormalizeBackend(c.Storage.Kind) == "" {
		errs = append(errs, fmt.Errorf("storage.kind %q is not one of sqlite, postgres, mssql", c.Storage.Kind))
	}
	return errors.Join(errs...)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
