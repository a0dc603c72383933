package studio

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CatalogWatcher reloads a catalog file into a Client when it changes on
// disk. The parent directory is watched so editors that save by rename are
// picked up too.
type CatalogWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	client   *Client
	path     string
	debounce time.Duration
	onReload func(*Catalog, error)
	logger   *zap.Logger

	pending time.Time // zero when no change is waiting
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherOption configures a CatalogWatcher.
type WatcherOption func(*CatalogWatcher)

// WithDebounce sets how long the file must be quiet before it is reloaded.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *CatalogWatcher) { w.debounce = d }
}

// OnReload is called after every reload attempt. err is non-nil when the
// file could not be parsed; the client keeps its previous catalog then.
func OnReload(fn func(*Catalog, error)) WatcherOption {
	return func(w *CatalogWatcher) { w.onReload = fn }
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l *zap.Logger) WatcherOption {
	return func(w *CatalogWatcher) { w.logger = l }
}

// NewCatalogWatcher prepares a watcher for path. Call Start to begin.
func NewCatalogWatcher(client *Client, path string, opts ...WatcherOption) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &CatalogWatcher{
		watcher:  fw,
		client:   client,
		path:     abs,
		debounce: 250 * time.Millisecond,
		logger:   zap.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce < 10*time.Millisecond {
		w.debounce = 10 * time.Millisecond
	}
	return w, nil
}

// Start begins watching. It does not block.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if w.stopCh == nil {
		return fmt.Errorf("catalog watcher stopped")
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	go w.run(ctx, w.stopCh)
	w.logger.Info("watching catalog", zap.String("path", w.path))
	return nil
}

// Stop ends the watch loop and releases the watcher. Safe to call more
// than once, and before Start.
func (w *CatalogWatcher) Stop() {
	w.mu.Lock()
	if w.stopCh == nil {
		w.mu.Unlock()
		return
	}
	running := w.running
	w.running = false
	close(w.stopCh)
	w.stopCh = nil
	w.mu.Unlock()

	if running {
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing catalog watcher", zap.Error(err))
	}
}

func (w *CatalogWatcher) run(ctx context.Context, stopCh <-chan struct{}) {
	defer close(w.doneCh)

	tick := time.NewTicker(w.debounce / 4)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *CatalogWatcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debug("catalog changed", zap.String("op", event.Op.String()))
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *CatalogWatcher) flush(now time.Time) {
	w.mu.Lock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	cat, err := LoadCatalogFile(w.path)
	if err == nil {
		err = w.client.ReplaceCatalog(cat)
	}
	if err != nil {
		w.logger.Warn("catalog reload failed", zap.String("path", w.path), zap.Error(err))
	} else {
		w.logger.Info("catalog reloaded", zap.String("path", w.path))
	}
	if w.onReload != nil {
		w.onReload(cat, err)
	}
}
