// Package watcher re-runs the pipeline when the source workbook changes.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the source must stay quiet before a run.
const DefaultDebounce = 500 * time.Millisecond

// TriggerFunc is invoked once per settled burst of changes.
type TriggerFunc func(ctx context.Context) error

// Stats tracks watcher activity.
type Stats struct {
	Events    int
	Runs      int
	Failures  int
	LastError error
	LastRun   time.Time
}

// Watcher watches a workbook file, or a directory of CSV sheets, and calls
// its trigger after changes settle. Triggers run one at a time on the event
// loop goroutine.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	source   string
	isDir    bool
	debounce time.Duration
	trigger  TriggerFunc
	logger   *zap.Logger

	pending  bool
	lastSeen time.Time
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}

	stats Stats
}

// New creates a watcher for source. A non-positive debounce uses DefaultDebounce.
func New(source string, debounce time.Duration, trigger TriggerFunc, logger *zap.Logger) (*Watcher, error) {
	if trigger == nil {
		return nil, errors.New("trigger is required")
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolving source path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("accessing source: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		source:   filepath.Clean(abs),
		isDir:    info.IsDir(),
		debounce: debounce,
		trigger:  trigger,
		logger:   logger,
	}, nil
}

// Start begins watching. It is non-blocking; the event loop ends when ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	// Editors often replace the file on save, so the parent directory is
	// watched rather than the file itself.
	dir := w.source
	if !w.isDir {
		dir = filepath.Dir(w.source)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.fsw = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	w.logger.Info("watching source", zap.String("path", w.source), zap.Duration("debounce", w.debounce))

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and waits for it to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Done is closed once the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doneCh
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Error("closing file watcher", zap.Error(err))
		}
	}()

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watcher context cancelled")
			return

		case <-w.stopCh:
			w.logger.Debug("watcher stopped")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))

		case <-ticker.C:
			if w.settled() {
				w.fire(ctx)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("source changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.stats.Events++
	w.pending = true
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

// matches reports whether an event path belongs to the watched source.
func (w *Watcher) matches(name string) bool {
	name = filepath.Clean(name)
	if w.isDir {
		return filepath.Dir(name) == w.source && strings.EqualFold(filepath.Ext(name), ".csv")
	}
	return name == w.source
}

// settled reports whether a pending change has been quiet for the debounce window.
func (w *Watcher) settled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.lastSeen) < w.debounce {
		return false
	}
	w.pending = false
	return true
}

func (w *Watcher) fire(ctx context.Context) {
	err := w.trigger(ctx)

	w.mu.Lock()
	w.stats.Runs++
	w.stats.LastRun = time.Now()
	w.stats.LastError = err
	if err != nil {
		w.stats.Failures++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("triggered run failed", zap.Error(err))
	}
}
