package texture

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"github.com/richinsley/goreveal/logging"
)

// Watcher reports rewrites of image files so they can be reloaded. It
// watches the parent directory because editors usually replace files
// rather than writing them in place.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan string
	done    chan struct{}

	mu    sync.Mutex
	files map[string]string // cleaned absolute path -> path as requested
	dirs  map[string]bool
}

// NewWatcher starts a watcher with nothing watched.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		watcher: fw,
		changes: make(chan string),
		done:    make(chan struct{}),
		files:   make(map[string]string),
		dirs:    make(map[string]bool),
	}
	go w.loop()
	return w, nil
}

// Watch adds path. Changes are reported with path exactly as given here.
func (w *Watcher) Watch(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = path
	return nil
}

// Changes delivers requested paths whose file was written or recreated.
// A path is queued at most once until it is received, so a burst of writes
// before the reader catches up is reported once.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var queue []string
	pending := make(map[string]bool)
	for {
		var out chan<- string
		var next string
		if len(queue) > 0 {
			out, next = w.changes, queue[0]
		}
		select {
		case <-w.done:
			return
		case out <- next:
			queue = queue[1:]
			delete(pending, next)
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			path, watched := w.files[filepath.Clean(event.Name)]
			w.mu.Unlock()
			if !watched || pending[path] {
				continue
			}
			pending[path] = true
			queue = append(queue, path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Logger().Warn("File watcher error", "error", err)
		}
	}
}
