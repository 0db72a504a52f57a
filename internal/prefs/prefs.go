package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// File is a JSON-backed preference store. Recognized options are
// enableOverlay, debug and userTiming, all false by default. External
// edits are picked up live via a filesystem watcher, so the file
// behaves like the synced preference source the session expects.
type File struct {
	path    string
	mu      sync.RWMutex
	opts    vitals.Options
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Load reads preferences from path. A missing file is not an error:
// all options default to false until the file appears.
func Load(path string) (*File, error) {
	f := &File{path: path, done: make(chan struct{})}

	if err := f.reload(); err != nil {
		return nil, err
	}

	return f, nil
}

// Snapshot returns the current options
func (f *File) Snapshot() vitals.Options {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.opts
}

// reload re-reads the backing file, keeping defaults when it is absent
func (f *File) reload() error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.mu.Lock()
		f.opts = vitals.Options{}
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	var opts vitals.Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("failed to parse preferences JSON: %w", err)
	}

	f.mu.Lock()
	f.opts = opts
	f.mu.Unlock()

	return nil
}

// Watch starts following the preference file for external changes.
// The watch is on the containing directory so atomic rename-in-place
// editors are handled too.
func (f *File) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	f.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != f.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := f.reload(); err != nil {
					logrus.Warnf("Failed to reload preferences: %v", err)
					continue
				}
				logrus.Debugf("Preferences reloaded from %s", f.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.Warnf("Preference watcher error: %v", err)
			case <-f.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the watcher
func (f *File) Close() error {
	close(f.done)
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}
