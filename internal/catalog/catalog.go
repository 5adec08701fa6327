// Package catalog is the registry of datasets the server can hand out: the
// built-in presets plus any loadable files found in a data directory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"griddemo/internal/loader"
	"griddemo/internal/sampledata"
	"griddemo/pkg/records"
)

// ErrNotFound is returned by Get for unknown dataset names.
var ErrNotFound = errors.New("dataset not found")

// Source tells where a catalog entry comes from.
type Source string

const (
	SourcePreset Source = "preset"
	SourceFile   Source = "file"
)

// Entry describes one dataset without materializing it.
type Entry struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Rows   int    `json:"rows"`
	Tree   bool   `json:"tree"`
	Source Source `json:"source"`
}

// Options configures a Catalog.
type Options struct {
	// Presets defaults to sampledata.Presets().
	Presets []sampledata.Preset

	// Generator draws random presets; nil means a freshly seeded one.
	Generator *sampledata.Generator

	// DataDir, when set, is scanned for CSV, JSON and HTML files.
	DataDir string

	// Load is passed to the file loaders.
	Load loader.Options

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Catalog is safe for concurrent use. Datasets it returns are shared and
// must not be mutated.
type Catalog struct {
	presets []sampledata.Preset
	dataDir string
	load    loader.Options
	logger  *log.Logger

	genMu sync.Mutex
	gen   *sampledata.Generator

	// buildPreset is c.build outside of tests.
	buildPreset func(sampledata.Preset) records.Dataset

	mu      sync.RWMutex
	built   map[string]records.Dataset
	pending map[string]*presetBuild
	files   map[string]fileEntry
}

// presetBuild is a first-use generation shared by concurrent Get calls.
type presetBuild struct {
	once sync.Once
	ds   records.Dataset
}

type fileEntry struct {
	path string
	ds   records.Dataset
}

// New builds a catalog and performs the initial data directory scan.
func New(ctx context.Context, opts Options) (*Catalog, error) {
	c := &Catalog{
		presets: opts.Presets,
		dataDir: opts.DataDir,
		load:    opts.Load,
		logger:  opts.Logger,
		gen:     opts.Generator,
		built:   make(map[string]records.Dataset),
		pending: make(map[string]*presetBuild),
		files:   make(map[string]fileEntry),
	}
	c.buildPreset = c.build
	if c.presets == nil {
		c.presets = sampledata.Presets()
	}
	if c.gen == nil {
		c.gen = sampledata.NewGenerator()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.dataDir != "" {
		if err := c.Reload(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Discard is a logger for callers that want a silent catalog.
var Discard = log.New(io.Discard, "", 0)

func (c *Catalog) preset(name string) (sampledata.Preset, bool) {
	for _, p := range c.presets {
		if p.Name == name {
			return p, true
		}
	}
	return sampledata.Preset{}, false
}

// Get returns the named dataset. Presets are generated on first use and
// then reused until Regenerate. Generation runs without holding the catalog
// lock, so other datasets stay readable meanwhile.
func (c *Catalog) Get(name string) (records.Dataset, error) {
	c.mu.RLock()
	if ds, ok := c.built[name]; ok {
		c.mu.RUnlock()
		return ds, nil
	}
	if f, ok := c.files[name]; ok {
		c.mu.RUnlock()
		return f.ds, nil
	}
	c.mu.RUnlock()

	p, ok := c.preset(name)
	if !ok {
		return records.Dataset{}, fmt.Errorf("catalog: %q: %w", name, ErrNotFound)
	}

	c.mu.Lock()
	if ds, ok := c.built[name]; ok {
		c.mu.Unlock()
		return ds, nil
	}
	b, ok := c.pending[name]
	if !ok {
		b = &presetBuild{}
		c.pending[name] = b
	}
	c.mu.Unlock()

	b.once.Do(func() { b.ds = c.buildPreset(p) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[name] == b {
		delete(c.pending, name)
	}
	if ds, ok := c.built[name]; ok {
		return ds, nil
	}
	c.built[name] = b.ds
	return b.ds, nil
}

func (c *Catalog) build(p sampledata.Preset) records.Dataset {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return p.Build(c.gen)
}

// List returns presets in their configured order followed by files sorted
// by name.
func (c *Catalog) List() []Entry {
	out := make([]Entry, 0, len(c.presets))
	for _, p := range c.presets {
		rows := p.Count
		if p.Tree {
			rows = len(sampledata.TreeRecords())
		}
		out = append(out, Entry{Name: p.Name, Label: p.Label(), Rows: rows, Tree: p.Tree, Source: SourcePreset})
	}

	c.mu.RLock()
	files := make([]Entry, 0, len(c.files))
	for name, f := range c.files {
		files = append(files, Entry{
			Name:   name,
			Label:  filepath.Base(f.path),
			Rows:   f.ds.Len(),
			Tree:   f.ds.Tree,
			Source: SourceFile,
		})
	}
	c.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return append(out, files...)
}

// Regenerate redraws every random preset that has been built so far. The
// static tree preset is left alone.
func (c *Catalog) Regenerate() {
	c.mu.RLock()
	var names []string
	for name := range c.built {
		names = append(names, name)
	}
	c.mu.RUnlock()

	fresh := make(map[string]records.Dataset, len(names))
	for _, name := range names {
		p, ok := c.preset(name)
		if !ok || p.Tree {
			continue
		}
		fresh[name] = c.buildPreset(p)
	}

	c.mu.Lock()
	for name, ds := range fresh {
		c.built[name] = ds
	}
	c.mu.Unlock()
	c.logger.Printf("catalog: regenerated %d preset(s)", len(fresh))
}

// Reload rescans the data directory. Files that fail to load are logged and
// skipped; a file whose name collides with a preset is ignored.
func (c *Catalog) Reload(ctx context.Context) error {
	entries, err := os.ReadDir(c.dataDir)
	if err != nil {
		return fmt.Errorf("catalog: read data dir: %w", err)
	}

	files := make(map[string]fileEntry)
	for _, e := range entries {
		if e.IsDir() || !loader.Supported(e.Name()) {
			continue
		}
		path := filepath.Join(c.dataDir, e.Name())
		ds, ok := c.loadFile(ctx, path)
		if !ok {
			continue
		}
		if prev, dup := files[ds.Name]; dup {
			c.logger.Printf("catalog: %s shadows %s, keeping the first", path, prev.path)
			continue
		}
		files[ds.Name] = fileEntry{path: path, ds: ds}
	}

	c.mu.Lock()
	c.files = files
	c.mu.Unlock()
	c.logger.Printf("catalog: loaded %d file(s) from %s", len(files), c.dataDir)
	return nil
}

// ReloadFile refreshes a single data file, dropping it when it no longer
// exists or no longer loads.
func (c *Catalog) ReloadFile(ctx context.Context, path string) {
	if !loader.Supported(path) {
		return
	}
	name := loader.DatasetName(path)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c.mu.Lock()
		if f, ok := c.files[name]; ok && f.path == path {
			delete(c.files, name)
			c.logger.Printf("catalog: removed %s", name)
		}
		c.mu.Unlock()
		return
	}

	ds, ok := c.loadFile(ctx, path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		if f, exists := c.files[name]; exists && f.path == path {
			delete(c.files, name)
		}
		return
	}
	if f, exists := c.files[name]; exists && f.path != path {
		c.logger.Printf("catalog: %s shadows %s, keeping the first", path, f.path)
		return
	}
	c.files[name] = fileEntry{path: path, ds: ds}
	c.logger.Printf("catalog: reloaded %s (%d rows)", name, ds.Len())
}

func (c *Catalog) loadFile(ctx context.Context, path string) (records.Dataset, bool) {
	ds, err := loader.LoadFile(ctx, path, c.load)
	if err != nil {
		c.logger.Printf("catalog: skip %s: %v", path, err)
		return records.Dataset{}, false
	}
	if _, ok := c.preset(ds.Name); ok {
		c.logger.Printf("catalog: skip %s: name %q is a preset", path, ds.Name)
		return records.Dataset{}, false
	}
	return ds, true
}
