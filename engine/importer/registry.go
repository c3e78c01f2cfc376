package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/blokengine/blok/engine/core"
)

/**
 * @brief Dispatches imports to a format backend based on the file
 * extension, the way a multi-format importer front end does. Backends are
 * registered at construction; registration is not safe for concurrent use
 * with Import.
 */
type Registry struct {
	backends map[string]Importer
}

// NewRegistry returns a registry with all built-in format backends
// registered (glTF/GLB and OBJ).
func NewRegistry() *Registry {
	r := &Registry{
		backends: make(map[string]Importer),
	}
	r.Register(&GLTFImporter{})
	r.Register(&OBJImporter{})
	return r
}

func (r *Registry) Register(backend Importer) {
	for _, ext := range backend.Extensions() {
		ext = strings.ToLower(ext)
		if _, exists := r.backends[ext]; exists {
			core.LogWarn("importer for extension '%s' already registered, keeping the first", ext)
			continue
		}
		r.backends[ext] = backend
	}
}

// Extensions returns every extension a backend is registered for.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.backends))
	for ext := range r.backends {
		exts = append(exts, ext)
	}
	return exts
}

/**
 * @brief Imports the file at path through the backend registered for its
 * extension and validates the result: a nil scene, a scene flagged
 * incomplete, or a scene without a root node are all import failures.
 */
func (r *Registry) Import(path string, flags PostProcess) (*Scene, error) {
	ext := strings.ToLower(filepath.Ext(path))
	backend, ok := r.backends[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, ext)
	}

	scene, err := importGuarded(backend, path, flags)
	if err != nil {
		return nil, err
	}
	if scene == nil || scene.Flags&SceneFlagIncomplete != 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrSceneIncomplete, path)
	}
	if scene.RootNode == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingRootNode, path)
	}
	return scene, nil
}

// importGuarded invokes the backend and converts a parser panic on
// malformed input into an ordinary import error, so one bad candidate
// file cannot take down the process or wedge an in-flight resolution.
func importGuarded(backend Importer, path string, flags PostProcess) (scene *Scene, err error) {
	defer func() {
		if r := recover(); r != nil {
			scene = nil
			err = fmt.Errorf("importer backend panicked on '%s': %v", path, r)
		}
	}()
	return backend.Import(path, flags)
}
