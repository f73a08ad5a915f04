package theme

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports the stored preference whenever the state file changes, for
// example when another instance toggles the theme. The channel closes when
// ctx ends.
func Watch(ctx context.Context, path string, log *slog.Logger) (<-chan Mode, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// the parent is watched because Save replaces the file by rename
	if err = w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	ch := make(chan Mode)
	go func() {
		defer close(ch)
		defer w.Close()
		name := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("theme watcher error", "error", err)
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				mode, ok, err := Load(path)
				if err != nil || !ok {
					continue
				}
				select {
				case ch <- mode:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
