package runner

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"xfid/config"
	"xfid/logger"
	"xfid/utils"
)

// Watch re-runs the pass whenever files under cfg.StartPaths change. Bursts
// of events are collapsed into one re-run per cfg.WatchDebounce quiet period.
// It blocks until ctx is cancelled.
func Watch(ctx context.Context, cfg *config.Config, run func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, startPath := range cfg.StartPaths {
		if err := addRecursive(watcher, startPath); err != nil {
			return err
		}
	}

	debounceWindow := cfg.WatchDebounce
	if debounceWindow <= 0 {
		debounceWindow = 500 * time.Millisecond
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !utils.IsPathWithin(event.Name, cfg.StartPaths) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories need their own watch.
				if err := addRecursive(watcher, event.Name); err != nil {
					logger.Debugf("Could not watch %s: %v", event.Name, err)
				}
			}
			logger.Debugf("Change detected: %s", event.Name)
			debounce = time.After(debounceWindow)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("Watch error: %v", err)
		case <-debounce:
			debounce = nil
			logger.Info("Changes settled, re-running analysis")
			if err := run(ctx); err != nil {
				logger.Errorf("Re-run failed: %v", err)
			}
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skipWatchDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func skipWatchDir(name string) bool {
	switch name {
	case ".git", "node_modules", ".xfid":
		return true
	}
	return false
}
