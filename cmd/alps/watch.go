package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// watch calls onChange, debounced, whenever a file matching one of the
// patterns is written, created, renamed or removed. It blocks until ctx is
// done.
func watch(ctx context.Context, patterns []string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return failure(err)
	}
	defer fsw.Close()

	for _, root := range watchRoots(patterns) {
		addWatchesRecursive(fsw, root, logger)
	}
	logger.Info("Watching for changes", "patterns", patterns, "debounce", debounce)

	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addWatchesRecursive(fsw, event.Name, logger)
					continue
				}
			}
			if !matchesAny(patterns, event.Name) {
				continue
			}
			logger.Debug("Document change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", "error", err)

		case <-timer.C:
			onChange()
		}
	}
}

// watchRoots returns the static base directory of every pattern.
func watchRoots(patterns []string) []string {
	seen := map[string]struct{}{}
	var roots []string
	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		base = filepath.FromSlash(base)
		if info, err := os.Stat(base); err == nil && !info.IsDir() {
			base = filepath.Dir(base)
		}
		if _, dup := seen[base]; dup {
			continue
		}
		seen[base] = struct{}{}
		roots = append(roots, base)
	}
	return roots
}

// addWatchesRecursive adds watches to root and all directories below it,
// skipping hidden ones.
func addWatchesRecursive(fsw *fsnotify.Watcher, root string, logger *slog.Logger) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.PathMatch(filepath.Clean(pattern), filepath.Clean(name)); ok {
			return true
		}
	}
	return false
}
