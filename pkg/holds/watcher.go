package holds

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is how long the watcher waits after the last
// file event before reloading. Editors and git checkouts produce bursts
// of writes and renames for a single logical change.
const DefaultDebounceInterval = 250 * time.Millisecond

// Watcher reloads a hold Registry when its file changes on disk. It
// watches the file's parent directory rather than the file itself:
// editors and git replace files by rename, which would silently detach a
// watch on the file.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer

	// onReload, if set, is called after every reload attempt with its
	// outcome. The daemon hooks metrics here.
	onReload func(error)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the registry's file. onReload may be
// nil.
func NewWatcher(registry *Registry, logger *slog.Logger, onReload func(error)) (*Watcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("watcher requires a registry")
	}
	if logger == nil {
		logger = slog.Default().With("component", "holds.watcher")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		registry: registry,
		watcher:  fsw,
		logger:   logger,
		debounce: newDebouncer(DefaultDebounceInterval),
		onReload: onReload,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, reloading the registry after each debounced change, until
// the context is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	dir := filepath.Dir(w.registry.Path())
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Base(w.registry.Path())
	w.logger.Info("hold registry watcher started", "path", w.registry.Path())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("hold registry watcher stopped")
			return nil

		case <-w.stopCh:
			w.logger.Info("hold registry watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldReload(event, target) {
				continue
			}
			w.logger.Debug("hold registry changed", "op", event.Op.String())
			w.debounce.trigger(w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching; a transient inotify error must not end
			// hold enforcement updates.
			w.logger.Error("hold registry watch error", "error", err)
		}
	}
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

// shouldReload filters directory events down to ones touching the
// registry file. Chmod-only events never change content.
func (w *Watcher) shouldReload(event fsnotify.Event, target string) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return filepath.Base(event.Name) == target
}

func (w *Watcher) reload() {
	err := w.registry.Load()
	if err != nil {
		// The previous set stays in force; see Registry.Load.
		w.logger.Error("hold registry reload failed, previous holds remain active", "error", err)
	} else {
		w.logger.Info("hold registry reloaded", "holds", w.registry.Len())
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

// debouncer collapses event bursts: the callback fires once, an interval
// after the last trigger.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}
		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
