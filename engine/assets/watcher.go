package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blokengine/blok/engine/core"
)

// IsModelPath reports whether the path names a file one of the importer
// backends can read.
func IsModelPath(path string) bool {
	switch filepath.Ext(path) {
	case ".obj", ".gltf", ".glb":
		return true
	default:
		return false
	}
}

/**
 * @brief Maintains a live index of the model files under the search
 * paths. The index is informational: the mesh system probes the search
 * paths itself during resolution. Interested parties can subscribe to
 * EVENT_CODE_ASSET_MODIFIED / EVENT_CODE_ASSET_REMOVED to learn that a
 * file backing an already-cached mesh changed on disk (the cache never
 * evicts, so acting on that is the caller's business).
 */
type Watcher struct {
	mu     sync.RWMutex
	models map[string]time.Time

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	closed   bool
}

func NewWatcher() (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		models:   make(map[string]time.Time),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Initialize indexes the given search paths and starts watching them
// recursively. Missing directories are skipped with a warning so a
// partially populated search-path list still works.
func (w *Watcher) Initialize(searchPaths []string) error {
	if w.closed {
		return errors.New("watcher already closed")
	}
	if err := core.EventSystemInitialize(); err != nil {
		return err
	}

	go w.start()

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err != nil {
			core.LogWarn("search path '%s' cannot be watched: %s", path, err)
			continue
		}
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether the index currently holds the given file.
func (w *Watcher) Contains(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.models[path]
	return ok
}

// Paths returns the indexed model files in sorted order.
func (w *Watcher) Paths() []string {
	w.mu.RLock()
	paths := make([]string, 0, len(w.models))
	for path := range w.models {
		paths = append(paths, path)
	}
	w.mu.RUnlock()

	sort.Strings(paths)
	return paths
}

func (w *Watcher) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return nil
}

func (w *Watcher) start() {
	for {
		select {
		case e := <-w.fsnotify.Events:
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := w.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch new directory '%s': %s", e.Name, err)
					}
				}
				continue
			}
			if !IsModelPath(e.Name) {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.index(e.Name)
				core.EventFire(core.EVENT_CODE_ASSET_MODIFIED, core.EventContext{Path: e.Name})
			}
			if e.Op&fsnotify.Remove != 0 {
				w.remove(e.Name)
				core.EventFire(core.EVENT_CODE_ASSET_REMOVED, core.EventContext{Path: e.Name})
			}

		case err := <-w.fsnotify.Errors:
			if err != nil {
				core.LogError(err.Error())
			}

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds the directory and all sub-directories to the watch
// list, indexing model files along the way.
func (w *Watcher) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		if IsModelPath(walkPath) {
			w.index(walkPath)
		}
		return nil
	})
}

func (w *Watcher) index(path string) {
	w.mu.Lock()
	w.models[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) remove(path string) {
	w.mu.Lock()
	delete(w.models, path)
	w.mu.Unlock()
}
