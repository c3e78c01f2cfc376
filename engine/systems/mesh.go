package systems

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/importer"
	"github.com/blokengine/blok/engine/math"
	"github.com/blokengine/blok/engine/renderer"
	"github.com/blokengine/blok/engine/resources"
)

/** @brief The configuration for the mesh system. */
type MeshSystemConfig struct {
	/** @brief Ordered list of base directories logical names are resolved against. */
	SearchPaths []string
}

/**
 * @brief Resolves logical filenames to mesh resources and caches the
 * result per name. The cache never evicts: once a name resolves, the same
 * resource is returned for the remainder of the system's lifetime.
 * Acquire may be called from any goroutine; at most one import is in
 * flight per name. GPU work still happens on the calling goroutine, so
 * callers must arrange for that goroutine to own the graphics context.
 */
type MeshSystem struct {
	backend     renderer.Backend
	importer    importer.Importer
	searchPaths []string

	mu       sync.RWMutex
	cache    map[string]*resources.Mesh
	inflight map[string]*resolveCall
}

// resolveCall is the single-flight slot for one in-progress resolution.
type resolveCall struct {
	wg   sync.WaitGroup
	mesh *resources.Mesh
	err  error
}

func NewMeshSystem(backend renderer.Backend, imp importer.Importer, config *MeshSystemConfig) (*MeshSystem, error) {
	if backend == nil {
		return nil, fmt.Errorf("failed to create MeshSystem: renderer backend is nil")
	}
	if imp == nil {
		return nil, fmt.Errorf("failed to create MeshSystem: importer is nil")
	}
	if config == nil || len(config.SearchPaths) == 0 {
		core.LogWarn("mesh system created without search paths; only direct construction will work.")
	}

	core.MetricsInitialize()

	ms := &MeshSystem{
		backend:  backend,
		importer: imp,
		cache:    make(map[string]*resources.Mesh),
		inflight: make(map[string]*resolveCall),
	}
	if config != nil {
		ms.searchPaths = append(ms.searchPaths, config.SearchPaths...)
	}
	return ms, nil
}

/**
 * @brief Resolves a logical filename to a mesh resource. A cached name
 * returns the identical resource with no I/O. Otherwise every search path
 * is tried in order; the first import that succeeds supplies the mesh.
 * Resolution failure leaves the cache untouched, so a later call retries
 * from scratch.
 */
func (ms *MeshSystem) Acquire(name string) (*resources.Mesh, error) {
	ms.mu.Lock()
	if mesh, ok := ms.cache[name]; ok {
		ms.mu.Unlock()
		core.MetricsCacheHit()
		return mesh, nil
	}
	if call, ok := ms.inflight[name]; ok {
		// Another goroutine is already importing this name; share its result.
		ms.mu.Unlock()
		call.wg.Wait()
		return call.mesh, call.err
	}
	call := &resolveCall{}
	call.wg.Add(1)
	ms.inflight[name] = call
	ms.mu.Unlock()

	core.MetricsCacheMiss()
	mesh, err := ms.resolve(name)

	ms.mu.Lock()
	if err == nil {
		// Publish only after full construction, so readers never observe
		// a partially built resource.
		ms.cache[name] = mesh
	}
	delete(ms.inflight, name)
	ms.mu.Unlock()

	call.mesh = mesh
	call.err = err
	call.wg.Done()

	return mesh, err
}

func (ms *MeshSystem) resolve(name string) (*resources.Mesh, error) {
	clock := core.NewClock()

	for _, base := range ms.searchPaths {
		candidate := filepath.Join(base, name)

		clock.Start()
		core.MetricsImportAttempt()
		scene, err := ms.importer.Import(candidate, importer.DefaultPostProcess)
		if err != nil {
			// Non-fatal: try the next search path.
			core.MetricsImportFailure()
			core.LogDebug("failed to load mesh '%s' (err: '%s')", candidate, err)
			continue
		}

		configs, err := collectGeometries(scene)
		if err != nil {
			core.MetricsImportFailure()
			core.LogDebug("failed to extract geometry from '%s' (err: '%s')", candidate, err)
			continue
		}
		if len(configs) == 0 {
			core.MetricsImportFailure()
			core.LogDebug("scene '%s' contains no geometry", candidate)
			continue
		}

		// First mesh in traversal order wins; the siblings are dropped
		// here, before any of them touches the GPU.
		if len(configs) > 1 {
			core.LogDebug("mesh '%s' contains %d geometries, keeping the first ('%s')", candidate, len(configs), configs[0].name)
		}
		canonical := configs[0]

		mesh, err := resources.NewMesh(ms.backend, canonical.vertices, canonical.faces)
		if err != nil {
			// GPU allocation failure is fatal to the resolution, not retried
			// against further search paths.
			return nil, err
		}
		mesh.Name = name

		clock.Update()
		core.MetricsImportCompleted(clock.ElapsedMS())
		core.LogDebug("loaded mesh '%s'", candidate)
		return mesh, nil
	}

	core.LogError("failed to load mesh '%s'", name)
	return nil, fmt.Errorf("%w: %s", core.ErrMeshNotFound, name)
}

/**
 * @brief Constructs a mesh directly from vertex and face data, bypassing
 * resolution. When name is non-empty the mesh is also cached under it;
 * a name that is already cached is an error, since cached entries are
 * immutable for the life of the system.
 */
func (ms *MeshSystem) AcquireFromData(name string, vertices []math.Vertex3D, faces []resources.Face) (*resources.Mesh, error) {
	if name != "" {
		ms.mu.RLock()
		_, exists := ms.cache[name]
		ms.mu.RUnlock()
		if exists {
			return nil, fmt.Errorf("mesh name '%s' is already cached", name)
		}
	}

	mesh, err := resources.NewMesh(ms.backend, vertices, faces)
	if err != nil {
		return nil, err
	}
	mesh.Name = name

	if name != "" {
		ms.mu.Lock()
		if _, exists := ms.cache[name]; exists {
			ms.mu.Unlock()
			mesh.Destroy()
			return nil, fmt.Errorf("mesh name '%s' is already cached", name)
		}
		ms.cache[name] = mesh
		ms.mu.Unlock()
	}
	return mesh, nil
}

// Cached returns the cached mesh for the name, or nil. Never triggers a load.
func (ms *MeshSystem) Cached(name string) *resources.Mesh {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.cache[name]
}

// SearchPaths returns a copy of the ordered search-path list.
func (ms *MeshSystem) SearchPaths() []string {
	paths := make([]string, len(ms.searchPaths))
	copy(paths, ms.searchPaths)
	return paths
}

/**
 * @brief Destroys every cached mesh and empties the cache. Intended for
 * the owner of the graphics context at shutdown; the system remains
 * usable afterwards, but previously returned meshes are dead.
 */
func (ms *MeshSystem) ReleaseAll() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for name, mesh := range ms.cache {
		mesh.Destroy()
		delete(ms.cache, name)
	}
}
