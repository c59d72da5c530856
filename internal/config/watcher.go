package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file when it changes and sends the result on the
// returned channel. Editors often replace files via rename, so the parent
// directory is watched rather than the file itself. Close the stop channel to
// end watching.
func Watch(path string, stop <-chan struct{}) (<-chan *Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	updates := make(chan *Config, 1)

	go func() {
		defer watcher.Close()

		var debounceTimer *time.Timer
		debounceDelay := 200 * time.Millisecond

		// Protect against sending to closed channel from timer callback
		var closed bool
		var mu sync.Mutex

		defer func() {
			mu.Lock()
			closed = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
			close(updates)
		}()

		for {
			select {
			case <-stop:
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				mu.Lock()
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, func() {
					mu.Lock()
					defer mu.Unlock()
					if closed {
						return
					}

					cfg, err := LoadFrom(path)
					if err != nil {
						// A half-written or broken file keeps the last good
						// config in effect.
						slog.Warn("config reload failed", "path", path, "error", err)
						return
					}
					select {
					case updates <- cfg:
					default:
					}
				})
				mu.Unlock()

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return updates, nil
}
