package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchRules watches the directory containing the alias-transform
// rules file (if one is configured) and invokes onChange whenever it
// is written, letting a running process pick up rule edits without
// restarting — grounded on the teacher's fsnotify-based watch of
// .beads/config.yaml. Returns a no-op closer if no rules file is
// configured.
func WatchRules(onChange func()) (closer func() error, err error) {
	path := AliasTransformRulesFile()
	if path == "" {
		return func() error { return nil }, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}
