// Package watch triggers rebuilds when project sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a directory tree and calls OnChange after changes settle.
type Watcher struct {
	Root string
	// Ignore lists directory names, or paths relative to Root, that are not watched.
	Ignore   []string
	Debounce time.Duration
	OnChange func(ctx context.Context) error
	Logger   zerolog.Logger

	watcher *fsnotify.Watcher
}

// Run watches until ctx is cancelled or OnChange returns an error.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.watcher = watcher
	defer func() {
		_ = watcher.Close() // Ignore close error on shutdown
	}()

	if err := w.addTree(w.Root); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w.Logger.Info().
		Str("event", "watch.started").
		Str("root", w.Root).
		Msg("watching for changes")

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info().Str("event", "watch.stopped").Msg("watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}

			w.Logger.Debug().
				Str("event", "watch.change").
				Str("path", event.Name).
				Str("op", event.Op.String()).
				Msg("file changed")

			// new directories are watched as they appear
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.Logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch directory")
					}
				}
			}

			timer.Reset(debounce)

		case <-timer.C:
			if err := w.OnChange(ctx); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error().Err(err).Str("event", "watch.error").Msg("watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return !w.ignored(event.Name)
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
		if slices.Contains(w.Ignore, part) {
			return true
		}
	}

	for _, ig := range w.Ignore {
		ig = filepath.ToSlash(filepath.Clean(ig))
		if rel == ig || strings.HasPrefix(rel, ig+"/") {
			return true
		}
	}

	return false
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.Root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
