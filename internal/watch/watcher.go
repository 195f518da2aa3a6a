// Package watch triggers rebuilds when content files change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adyingdeath/blog/internal/storage"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc is called once per settled burst with the changed paths,
// relative to the content root when possible and sorted.
type ChangeFunc func(ctx context.Context, changed []string)

type options struct {
	debounce time.Duration
	files    []string
}

// Option configures Watch.
type Option func(*options)

// WithDebounce sets the settle interval.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithFiles also watches individual files outside the content root, such
// as the projects file.
func WithFiles(paths ...string) Option {
	return func(o *options) {
		for _, p := range paths {
			if p != "" {
				o.files = append(o.files, p)
			}
		}
	}
}

// Watch watches root recursively until ctx is cancelled and calls onChange
// after each settled burst of document changes. Directories created at
// runtime are added to the watch list. Any removal or rename under root
// counts as a change, since it may take documents with it.
func Watch(ctx context.Context, root string, logger *slog.Logger, onChange ChangeFunc, opts ...Option) error {
	o := options{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	extra := make(map[string]struct{}, len(o.files))
	for _, f := range o.files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		extra[abs] = struct{}{}
		// Watch the parent so editors that replace the file are seen.
		if err := w.Add(filepath.Dir(abs)); err != nil {
			logger.Warn("watcher: add file failed", slog.String("path", f), slog.String("error", err.Error()))
		}
	}

	logger.Info("watcher: started", slog.String("root", root))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending = map[string]struct{}{}
	)
	schedule := func(path string) {
		pending[path] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(o.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(o.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			logger.Debug("watcher: change settled", slog.Int("paths", len(changed)))
			onChange(ctx, changed)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					schedule(rel(root, absPath))
					continue
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}

			if abs, err := filepath.Abs(absPath); err == nil {
				if _, ok := extra[abs]; ok {
					schedule(absPath)
					continue
				}
			}
			// A directory moved or deleted arrives as a single event named
			// after the directory, so it cannot be filtered by extension.
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if r := rel(root, absPath); r != ".." && !strings.HasPrefix(r, "../") {
					schedule(r)
				}
				continue
			}
			if !storage.IsDocument(absPath) {
				continue
			}
			schedule(rel(root, absPath))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(r)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
