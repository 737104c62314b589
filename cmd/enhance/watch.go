package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// reloadDebounce groups the burst of events an editor save produces.
const reloadDebounce = 300 * time.Millisecond

// pageWatcher calls reload once per burst of changes to one file.
type pageWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	clock    clockwork.Clock
	reload   func()
	log      *zap.Logger

	// pending counts the scheduled or running reload.
	pending sync.WaitGroup
}

// newPageWatcher watches the directory of path, which survives editors
// that replace the file on save.
func newPageWatcher(path string, debounce time.Duration, clock clockwork.Clock, reload func(), log *zap.Logger) (*pageWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving watched page: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &pageWatcher{
		path:     abs,
		watcher:  watcher,
		debounce: debounce,
		clock:    clock,
		reload:   reload,
		log:      log.Named("watch"),
	}, nil
}

// Run forwards changes until ctx is done or the watcher is closed. It
// returns once a reload already running has finished.
func (w *pageWatcher) Run(ctx context.Context) {
	w.run(ctx, w.watcher.Events, w.watcher.Errors)
}

func (w *pageWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	var timer clockwork.Timer
	defer func() {
		w.cancel(timer)
		w.pending.Wait()
	}()

	w.log.Debug("watching page", zap.String("path", w.path))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			w.log.Debug("page changed", zap.Stringer("op", event.Op))
			w.cancel(timer)
			w.pending.Add(1)
			timer = w.clock.AfterFunc(w.debounce, func() {
				defer w.pending.Done()
				w.reload()
			})
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// cancel stops timer. A timer that already fired keeps its pending count
// until its reload returns.
func (w *pageWatcher) cancel(timer clockwork.Timer) {
	if timer != nil && timer.Stop() {
		w.pending.Done()
	}
}

func (w *pageWatcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// Close stops the underlying watcher.
func (w *pageWatcher) Close() error {
	return w.watcher.Close()
}
