package watcher

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Event represents a change to one of the watched files.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher reports writes to a fixed set of files using OS-level notifications.
// It watches the parent directories so that editors which save by renaming a
// temp file over the original are still seen.
type Watcher struct {
	fsw    *fsnotify.Watcher
	Events chan Event
	files  map[string]bool
}

// New creates a Watcher for the given file paths.
func New(paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		Events: make(chan Event, 64),
		files:  make(map[string]bool),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Printf("watcher: cannot watch %s: %v", dir, err)
		}
	}

	return w, nil
}

// Start begins listening for file events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(ev.Name)] {
				continue
			}
			// Forward content changes only (write, create).
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.Events <- Event{Path: filepath.Clean(ev.Name), Op: ev.Op}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// Paths returns the files being watched.
func (w *Watcher) Paths() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}
