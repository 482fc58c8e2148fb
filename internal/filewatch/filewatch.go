// Package filewatch cancels a context when watched definition files change,
// driving the application's hot-reload loop.
package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/panelforge/panelforge/internal/ctxlog"
)

// UntilChangeContext returns a context that is canceled when any of the
// given paths is written, created, removed, or renamed. The returned cancel
// function releases the watcher; callers must call it. Directories may be
// watched; any change inside them counts.
func UntilChangeContext(ctx context.Context, paths ...string) (context.Context, context.CancelFunc, error) {
	cctx, cancel := context.WithCancelCause(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	logger := ctxlog.FromContext(ctx)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				logger.Debug("Watched file changed.", "path", event.Name, "op", event.Op.String())
				cancel(fmt.Errorf("%s changed (%s)", event.Name, event.Op.String()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("File watcher error.", "error", err)
			}
		}
	}()

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			cancel(err)
			return nil, nil, fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	return cctx, func() { cancel(nil) }, nil
}
