// Package watcher observes the games directory for changes made outside the
// bot, for example an operator editing a quest file over SSH. It only
// reports; quest files are re-read on every access so no state needs
// refreshing.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher logs external modifications to the games directory.
type Watcher struct {
	dir string
	log *slog.Logger
}

// New constructs a Watcher for the given directory.
func New(dir string, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}

	return &Watcher{dir: dir, log: log}
}

// Run watches the directory until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.log.Info("watching games directory", slog.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.logEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("games directory watch error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) logEvent(event fsnotify.Event) {
	game := filepath.Base(event.Name)

	switch {
	case event.Has(fsnotify.Create):
		w.log.Info("game file created externally", slog.String("game", game))
	case event.Has(fsnotify.Write):
		w.log.Info("game file modified externally", slog.String("game", game))
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.log.Warn("game file removed externally", slog.String("game", game))
	}
}
