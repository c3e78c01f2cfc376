package testbed

import (
	"github.com/blokengine/blok/engine/assets"
	"github.com/blokengine/blok/engine/config"
	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/importer"
	"github.com/blokengine/blok/engine/platform"
	"github.com/blokengine/blok/engine/renderer/opengl"
	"github.com/blokengine/blok/engine/resources"
	"github.com/blokengine/blok/engine/systems"
)

/**
 * @brief A minimal application exercising the mesh resource pipeline:
 * it resolves the configured meshes once, reports pipeline metrics and
 * keeps the window alive so asset changes on disk are reported.
 */
type Demo struct {
	config   *config.Config
	platform *platform.Platform
	backend  *opengl.Backend
	meshes   *systems.MeshSystem
	watcher  *assets.Watcher

	loaded []*resources.Mesh
}

func NewDemo(configPath string) (*Demo, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(cfg.Logging.Level)

	p, err := platform.New()
	if err != nil {
		return nil, err
	}

	return &Demo{
		config:   cfg,
		platform: p,
		backend:  opengl.New(),
	}, nil
}

func (d *Demo) Initialize() error {
	if err := d.platform.Startup(d.config.AppName, 100, 100, 1280, 720); err != nil {
		return err
	}
	if err := d.backend.Initialize(); err != nil {
		return err
	}

	meshes, err := systems.NewMeshSystem(d.backend, importer.NewRegistry(), &systems.MeshSystemConfig{
		SearchPaths: d.config.Assets.SearchPaths,
	})
	if err != nil {
		return err
	}
	d.meshes = meshes

	watcher, err := assets.NewWatcher()
	if err != nil {
		return err
	}
	d.watcher = watcher
	if err := d.watcher.Initialize(d.config.Assets.SearchPaths); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_ASSET_MODIFIED, func(code core.SystemEventCode, context core.EventContext) {
		core.LogInfo("asset '%s' changed on disk; cached meshes keep the old data until restart.", context.Path)
	})

	core.LogInfo("%d model files indexed under the search paths.", len(d.watcher.Paths()))
	return nil
}

func (d *Demo) Run() error {
	for _, name := range d.config.Assets.Preload {
		mesh, err := d.meshes.Acquire(name)
		if err != nil {
			core.LogError("preload of '%s' failed: %s", name, err)
			continue
		}
		core.LogInfo("mesh '%s': %d vertices, %d faces, extents %+v.", name, len(mesh.Vertices), len(mesh.Faces), mesh.Extents)
		d.loaded = append(d.loaded, mesh)
	}

	hits, misses, attempts, failures := core.MetricsSnapshot()
	core.LogInfo("pipeline metrics: %d cache hits, %d misses, %d import attempts (%d failed), avg import %.2fms.",
		hits, misses, attempts, failures, core.MetricsImportAvgMS())

	for !d.platform.ShouldClose() {
		d.platform.PollEvents()
	}
	return nil
}

// Stop requests the run loop to exit. Safe to call from another goroutine.
func (d *Demo) Stop() {
	if d.platform != nil && d.platform.Window != nil {
		d.platform.Window.SetShouldClose(true)
	}
}

func (d *Demo) Shutdown() error {
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.meshes != nil {
		d.meshes.ReleaseAll()
	}
	if d.backend != nil {
		if err := d.backend.Shutdown(); err != nil {
			return err
		}
	}
	return d.platform.Shutdown()
}
