// Package watcher reloads the catalog file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"typeahead/internal/clock"
	"typeahead/internal/debounce"
	"typeahead/internal/domain"
	"typeahead/internal/eventbus"
	"typeahead/internal/source/catalog"
)

// DefaultSettle is how long the file must stay quiet before it is reloaded.
// Editors often save with several writes in a row.
const DefaultSettle = 100 * time.Millisecond

// Target receives the reloaded entries
type Target interface {
	Replace(entries []domain.Result)
}

// Option configures a Watcher
type Option func(*Watcher)

// WithSettle sets the quiet period before a reload
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithOnReload registers a function called after every successful reload,
// used to drop cached results for the old catalog
func WithOnReload(fn func()) Option {
	return func(w *Watcher) { w.onReload = fn }
}

// WithClock sets the clock used for the settle timer
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// Watcher watches one catalog file. It watches the containing directory so
// that saves which replace the file are seen too.
type Watcher struct {
	path     string
	target   Target
	bus      eventbus.EventBus
	settle   time.Duration
	clock    clock.Clock
	onReload func()

	fsw       *fsnotify.Watcher
	debouncer *debounce.Debouncer[string]
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// New creates a watcher for the catalog at path. bus may be nil.
func New(path string, target Target, bus eventbus.EventBus, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	w := &Watcher{
		path:   abs,
		target: target,
		bus:    bus,
		settle: DefaultSettle,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = debounce.New(w.clock, w.settle, w.reload)
	return w, nil
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	log.Printf("Watching catalog %s", w.path)
	return nil
}

// Stop stops watching and waits for the event loop to exit. A reload
// already waiting out the settle period is dropped.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	w.debouncer.Cancel()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debouncer.Call(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Catalog watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload(string) {
	entries, err := catalog.Load(w.path)
	if err != nil {
		log.Printf("Catalog reload failed, keeping previous entries: %v", err)
		w.publish(eventbus.CatalogErrorEvent{Path: w.path, Err: err})
		return
	}

	w.target.Replace(entries)
	if w.onReload != nil {
		w.onReload()
	}
	log.Printf("Catalog reloaded from %s: %d entries", w.path, len(entries))
	w.publish(eventbus.CatalogReloadedEvent{Path: w.path, Entries: len(entries)})
}

func (w *Watcher) publish(event eventbus.DomainEvent) {
	if w.bus != nil {
		w.bus.Publish(event)
	}
}
