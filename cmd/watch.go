package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/countygis/parcels/pkg/snapshot"
	"github.com/fsnotify/fsnotify"
)

// snapshotWatcher triggers a reload when the snapshot file is rewritten.
// The parent directory is watched because the snapshot is replaced through a
// rename, which drops a watch placed on the file itself.
type snapshotWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func newSnapshotWatcher(path string) (*snapshotWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating snapshot watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &snapshotWatcher{path: filepath.Clean(path), watcher: watcher}, nil
}

// run blocks until ctx is done, calling reload once per burst of changes.
func (w *snapshotWatcher) run(ctx context.Context, debounce time.Duration, reload func()) {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			logger.Warnf("failed to close snapshot watcher: %v", err)
		}
	}()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Editors and the snapshot writer replace the file, so creates
			// and renames matter as much as writes
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debugf("snapshot changed: %s (%s)", event.Name, event.Op)

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			modTime, err := snapshot.Stat(w.path)
			if err != nil {
				logger.Warnf("snapshot %s is gone, keeping the loaded dataset", w.path)
				continue
			}
			logger.Debugf("snapshot modified at %s", modTime.Format(time.RFC3339))
			reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("snapshot watcher error: %v", err)
		}
	}
}
