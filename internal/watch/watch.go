// Package watch subscribes to file-creation events on the intake directory
// and dispatches each new file to a Handler.
package watch

import (
	"context"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one newly created intake file. Implementations own all
// per-file error handling; the watcher only isolates panics.
type Handler interface {
	HandleCreated(ctx context.Context, path string)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, path string)

// HandleCreated calls f(ctx, path).
func (f HandlerFunc) HandleCreated(ctx context.Context, path string) {
	f(ctx, path)
}

// Watch starts an fsnotify watcher on dir (non-recursive) and invokes h for
// each file-creation event, strictly in arrival order, until ctx is
// cancelled. Directory creation is ignored. One bad file never halts
// monitoring of subsequent files.
func Watch(ctx context.Context, dir string, h Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
				logger.Debug("watcher: ignoring subdirectory", slog.String("path", ev.Name))
				continue
			}
			safeHandle(ctx, h, ev.Name, logger)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// safeHandle invokes the handler and converts a panic into a log entry so
// the event loop keeps running.
func safeHandle(ctx context.Context, h Handler, path string, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("watcher: handler panicked",
				slog.String("path", path),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	h.HandleCreated(ctx, path)
}
