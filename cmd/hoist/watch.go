package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hoistjs/hoist/internal/logger"
)

// Editors often save a file as several events in a row
var watchDebounce = 100 * time.Millisecond

// Runs the build, then runs it again after any of the files it read changes.
// Directories are watched instead of the files themselves since many editors
// save by replacing the file, which would drop a watch on the file. Returns
// when the context is canceled.
func watch(ctx context.Context, manifestPath string, build func() ([]string, bool), log logger.Log) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("Failed to start watching: %w", err)
	}
	defer watcher.Close()
	defer log.Done()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	track := func(paths []string) {
		clear(files)
		for _, path := range paths {
			path = filepath.Clean(path)
			files[path] = true
			if dir := filepath.Dir(path); !dirs[dir] {
				if err := watcher.Add(dir); err != nil {
					log.AddMsg(logger.Msg{Kind: logger.Warning, Text: fmt.Sprintf("Cannot watch %s: %s", dir, err.Error())})
					continue
				}
				dirs[dir] = true
			}
		}
	}

	paths, _ := build()
	track(append(paths, manifestPath))
	log.AddInfo(fmt.Sprintf("Watching %d files for changes", len(files)))

	var rebuild <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				rebuild = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.AddMsg(logger.Msg{Kind: logger.Warning, Text: fmt.Sprintf("File watcher error: %s", err.Error())})

		case <-rebuild:
			rebuild = nil
			paths, _ := build()
			track(append(paths, manifestPath))
		}
	}
}
