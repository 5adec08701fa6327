package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// DefaultDebounce is how long Watch waits after the last event on a file
// before reloading it.
const DefaultDebounce = 500 * time.Millisecond

// Schedule runs Regenerate on the given cron expression (standard five
// fields or descriptors such as "@every 10m"). The returned stop function
// waits for a running regeneration to finish.
func (c *Catalog) Schedule(expr string) (stop func(), err error) {
	cr := cron.New()
	if _, err := cr.AddFunc(expr, c.Regenerate); err != nil {
		return nil, fmt.Errorf("catalog: invalid schedule %q: %w", expr, err)
	}
	cr.Start()
	c.logger.Printf("catalog: regenerating presets on %q", expr)
	return func() { <-cr.Stop().Done() }, nil
}

// Watch reloads data directory files as they are created, written, renamed
// or removed, until ctx is done. Bursts of events on one file collapse into
// a single reload after debounce (DefaultDebounce when <= 0).
func (c *Catalog) Watch(ctx context.Context, debounce time.Duration) error {
	if c.dataDir == "" {
		return errors.New("catalog: watch: no data directory")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dataDir); err != nil {
		return fmt.Errorf("catalog: watch %s: %w", c.dataDir, err)
	}
	c.logger.Printf("catalog: watching %s", c.dataDir)

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(event.Name)
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(debounce, func() {
				c.ReloadFile(ctx, path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Printf("catalog: watcher error: %v", err)
		}
	}
}
