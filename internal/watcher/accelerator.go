package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// startAccelerator attaches an optional fsnotify-backed watch to wr's
// root that wakes its poll cycle early on an OS-reported change. It never
// produces ChangeEvents itself and never bypasses ResolveWithParents — an
// ignored descendant's events are discarded exactly as a polling cycle
// would discard them. If the watcher cannot be created the root simply
// falls back to plain interval polling; this is an accelerator, not a
// dependency.
func (e *Engine) startAccelerator(ctx context.Context, wr *watchedRoot) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("accelerator unavailable, falling back to polling",
			slog.String("root", wr.path), slog.String("error", err.Error()))
		return
	}

	if err := addRecursive(fsw, wr.path); err != nil {
		slog.Warn("accelerator failed to watch root, falling back to polling",
			slog.String("root", wr.path), slog.String("error", err.Error()))
		_ = fsw.Close()
		return
	}

	go func() {
		defer func() { _ = fsw.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				e.handleAcceleratorEvent(fsw, wr, ev)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				slog.Warn("accelerator watch error",
					slog.String("root", wr.path), slog.String("error", err.Error()))
			}
		}
	}()
}

func (e *Engine) handleAcceleratorEvent(fsw *fsnotify.Watcher, wr *watchedRoot, ev fsnotify.Event) {
	info, statErr := os.Stat(ev.Name)
	isDir := statErr == nil && info.IsDir()

	// ResolveWithParents is mandatory here: fsnotify routinely reports
	// descendants of directories the project ignores.
	if _, ok := wr.proj.ResolveWithParents(ev.Name, isDir); !ok {
		return
	}

	if isDir && (ev.Op&fsnotify.Create) != 0 {
		_ = addRecursive(fsw, ev.Name)
	}

	select {
	case wr.wakeCh <- struct{}{}:
	default:
	}
}

// addRecursive registers fsnotify watches on root and every descendant
// directory. It applies no ignore rules itself: events from ignored
// directories are discarded per event by handleAcceleratorEvent.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	if err := fsw.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil // root became unreadable mid-setup; accelerator degrades gracefully
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		_ = addRecursive(fsw, filepath.Join(root, entry.Name()))
	}
	return nil
}
