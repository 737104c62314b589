package main

// Notes:
// - pageWatcher: the end-to-end case uses a real fsnotify watcher on a temp
//   dir with a short debounce. Editors vary in the events they emit, so
//   only a plain write is exercised there. Debounce and shutdown cases feed
//   events through run with a fake clock.

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func TestPageWatcher_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := writeFile(t, dir, "post.html", "<p>v1</p>")

	var reloads atomic.Int32
	w, err := newPageWatcher(page, 10*time.Millisecond, clockwork.NewRealClock(), func() { reloads.Add(1) }, zap.NewNop())
	if err != nil {
		t.Fatalf("newPageWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(page, []byte("<p>v2</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if reloads.Load() == 0 {
		t.Fatal("no reload after writing the page")
	}
}

func TestPageWatcher_Matches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := writeFile(t, dir, "post.html", "")
	w, err := newPageWatcher(page, time.Second, clockwork.NewRealClock(), func() {}, zap.NewNop())
	if err != nil {
		t.Fatalf("newPageWatcher() error = %v", err)
	}
	defer w.Close()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write", event: fsnotify.Event{Name: page, Op: fsnotify.Write}, want: true},
		{name: "create", event: fsnotify.Event{Name: page, Op: fsnotify.Create}, want: true},
		{name: "chmod", event: fsnotify.Event{Name: page, Op: fsnotify.Chmod}, want: false},
		{name: "remove", event: fsnotify.Event{Name: page, Op: fsnotify.Remove}, want: false},
		{name: "sibling", event: fsnotify.Event{Name: filepath.Join(dir, "other.html"), Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := w.matches(tt.event); got != tt.want {
				t.Errorf("matches(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNewPageWatcher_MissingDir(t *testing.T) {
	t.Parallel()

	page := filepath.Join(t.TempDir(), "gone", "post.html")
	if _, err := newPageWatcher(page, time.Second, clockwork.NewRealClock(), func() {}, zap.NewNop()); err == nil {
		t.Error("newPageWatcher() error = nil for a missing directory")
	}
}

// startRun runs w over events until ctx is done and closes the returned
// channel when run has returned.
func startRun(ctx context.Context, w *pageWatcher, events chan fsnotify.Event) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.run(ctx, events, make(chan error))
	}()
	return done
}

func TestPageWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := writeFile(t, dir, "post.html", "")
	clock := clockwork.NewFakeClock()
	reloaded := make(chan struct{}, 4)
	w, err := newPageWatcher(page, time.Second, clock, func() { reloaded <- struct{}{} }, zap.NewNop())
	if err != nil {
		t.Fatalf("newPageWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events := make(chan fsnotify.Event)
	done := startRun(ctx, w, events)

	for range 3 {
		events <- fsnotify.Event{Name: page, Op: fsnotify.Write}
		clock.Advance(500 * time.Millisecond)
	}
	events <- fsnotify.Event{Name: filepath.Join(dir, "other.html"), Op: fsnotify.Write}
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext() error = %v", err)
	}
	select {
	case <-reloaded:
		t.Fatal("reload before the burst settled")
	default:
	}

	clock.Advance(time.Second)
	select {
	case <-reloaded:
	case <-ctx.Done():
		t.Fatal("no reload after the debounce")
	}

	cancel()
	<-done
	if n := len(reloaded); n != 0 {
		t.Errorf("%d extra reloads", n)
	}
}

func TestPageWatcher_RunWaitsForReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := writeFile(t, dir, "post.html", "")
	clock := clockwork.NewFakeClock()
	started := make(chan struct{})
	release := make(chan struct{})
	w, err := newPageWatcher(page, time.Second, clock, func() {
		close(started)
		<-release
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("newPageWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan fsnotify.Event)
	done := startRun(ctx, w, events)

	events <- fsnotify.Event{Name: page, Op: fsnotify.Create}
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("BlockUntilContext() error = %v", err)
	}
	clock.Advance(time.Second)
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("reload never started")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("run returned while a reload was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the reload finished")
	}
}

func TestPageWatcher_ExitDropsScheduledReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := writeFile(t, dir, "post.html", "")
	clock := clockwork.NewFakeClock()
	var reloads atomic.Int32
	w, err := newPageWatcher(page, time.Second, clock, func() { reloads.Add(1) }, zap.NewNop())
	if err != nil {
		t.Fatalf("newPageWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan fsnotify.Event)
	done := startRun(ctx, w, events)

	events <- fsnotify.Event{Name: page, Op: fsnotify.Write}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run blocked on a reload that never fired")
	}

	clock.Advance(time.Second)
	if n := reloads.Load(); n != 0 {
		t.Errorf("reloads = %d after exit, want 0", n)
	}
}
