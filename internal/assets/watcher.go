package assets

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mimahin/gmgbd/internal/models"
	"github.com/mimahin/gmgbd/internal/storage"
)

// EventCallback is called for every observed asset change.
// kind is one of "created", "updated", "deleted"; path is relative to the
// asset root.
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the asset root and reports changes to
// servable asset files until ctx is cancelled.
//
// New directories are added to the watch list as they appear. Renames are
// followed by a short debounced reconciliation against a fresh listing, since
// fsnotify only reports the old name.
func Watch(ctx context.Context, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	known := make(map[string]struct{})
	if files, err := store.List(""); err == nil {
		for _, f := range files {
			known[f.Path] = struct{}{}
		}
	}

	emit := func(kind, rel string) {
		switch kind {
		case "deleted":
			delete(known, rel)
		default:
			known[rel] = struct{}{}
		}
		if cb != nil {
			cb(kind, rel)
		}
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(store, known, logger, emit)

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
					}
					// Files copied in together with the directory produce no
					// events of their own.
					scheduleReconcile()
					continue
				}
			}

			if !isAssetFile(absPath) {
				continue
			}
			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				logger.Debug("watcher: asset created", slog.String("path", rel))
				emit("created", rel)

			case ev.Op&fsnotify.Write != 0:
				logger.Debug("watcher: asset updated", slog.String("path", rel))
				emit("updated", rel)

			case ev.Op&fsnotify.Remove != 0:
				logger.Debug("watcher: asset deleted", slog.String("path", rel))
				emit("deleted", rel)

			case ev.Op&fsnotify.Rename != 0:
				emit("deleted", rel)
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile diffs a fresh listing against the known set and emits the
// differences.
func reconcile(store storage.Provider, known map[string]struct{}, logger *slog.Logger, emit func(kind, rel string)) {
	files, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}
	}
	for p := range known {
		if _, ok := disk[p]; !ok {
			emit("deleted", p)
		}
	}
	for p := range disk {
		if _, ok := known[p]; !ok {
			emit("created", p)
		}
	}
}

func isAssetFile(p string) bool {
	name := filepath.Base(p)
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := models.KindForPath(name)
	return ok
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
