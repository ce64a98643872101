// Package watcher re-runs a conversion whenever its input file changes.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ginjaninja78/rcli/internal/types"
)

// DefaultDebounce is the quiet period that must follow the last write before
// the handler runs.
const DefaultDebounce = 200 * time.Millisecond

// ChangeHandler is called after the watched file settles.
type ChangeHandler func(ctx context.Context) error

// FileWatcher watches a single file.
type FileWatcher struct {
	path   string
	delay  time.Duration
	logger *slog.Logger
}

// New creates a FileWatcher for path. A non-positive delay uses
// DefaultDebounce.
func New(path string, delay time.Duration, logger *slog.Logger) *FileWatcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		path:   path,
		delay:  delay,
		logger: logger.With("component", "watcher"),
	}
}

// Run blocks until ctx is cancelled, calling handler once per burst of writes
// to the file. The parent directory is watched so that editors which replace
// the file through a rename are still seen. A failing handler is logged and
// watching continues.
func (fw *FileWatcher) Run(ctx context.Context, handler ChangeHandler) error {
	target, err := filepath.Abs(fw.path)
	if err != nil {
		return types.NewIOError("resolve "+fw.path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return types.NewIOError("create watcher", err)
	}
	defer w.Close()

	dir := filepath.Dir(target)
	if err := w.Add(dir); err != nil {
		return types.NewIOError("watch "+dir, err)
	}

	fw.logger.Info("watching for changes", "path", target)

	timer := time.NewTimer(fw.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event, target) {
				continue
			}
			fw.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(fw.delay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			if err := handler(ctx); err != nil {
				fw.logger.Error("handler failed", "path", target, "error", err)
			}
		}
	}
}

// relevant reports whether event changed the content at target.
func relevant(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
