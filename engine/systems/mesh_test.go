package systems

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/importer"
	"github.com/blokengine/blok/engine/math"
	"github.com/blokengine/blok/engine/renderer"
	"github.com/blokengine/blok/engine/resources"
)

// fakeBackend counts uploads and releases instead of touching a GPU.
type fakeBackend struct {
	mu       sync.Mutex
	uploads  int
	destroys int
	failNext bool
	next     uint32
}

func (fb *fakeBackend) Initialize() error { return nil }
func (fb *fakeBackend) Shutdown() error   { return nil }

func (fb *fakeBackend) UploadGeometry(vertices []math.Vertex3D, indices []uint32) (*renderer.GeometryBuffers, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.failNext {
		fb.failNext = false
		return nil, fmt.Errorf("device out of memory")
	}
	fb.uploads++
	fb.next++
	return &renderer.GeometryBuffers{VAO: fb.next, VBO: fb.next, EBO: fb.next}, nil
}

func (fb *fakeBackend) DestroyGeometry(buffers *renderer.GeometryBuffers) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if buffers != nil {
		fb.destroys++
	}
}

// fakeImporter serves canned scenes by path and records every attempt.
type fakeImporter struct {
	mu       sync.Mutex
	scenes   map[string]*importer.Scene
	attempts []string
	delay    time.Duration
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{scenes: make(map[string]*importer.Scene)}
}

func (fi *fakeImporter) Extensions() []string { return []string{".obj"} }

func (fi *fakeImporter) Import(path string, flags importer.PostProcess) (*importer.Scene, error) {
	fi.mu.Lock()
	fi.attempts = append(fi.attempts, path)
	scene, ok := fi.scenes[path]
	fi.mu.Unlock()

	if fi.delay > 0 {
		time.Sleep(fi.delay)
	}
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return scene, nil
}

func (fi *fakeImporter) attemptCount() int {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return len(fi.attempts)
}

// triangleMesh builds a geometry block whose first vertex x coordinate is
// the given marker, so tests can tell meshes apart after extraction.
func triangleMesh(name string, marker float32) *importer.MeshData {
	return &importer.MeshData{
		Name: name,
		Positions: []math.Vec3{
			{X: marker, Y: 0, Z: 0},
			{X: marker + 1, Y: 0, Z: 0},
			{X: marker, Y: 1, Z: 0},
		},
		Normals: []math.Vec3{
			{Z: 1}, {Z: 1}, {Z: 1},
		},
		Tangents: []math.Vec3{
			{X: 1}, {X: 1}, {X: 1},
		},
		Bitangents: []math.Vec3{
			{Y: 1}, {Y: 1}, {Y: 1},
		},
		Faces: [][]uint32{{0, 1, 2}},
	}
}

// singleMeshScene builds a scene with one geometry block on one node.
func singleMeshScene(name string) *importer.Scene {
	return &importer.Scene{
		Meshes: []*importer.MeshData{triangleMesh(name, 0)},
		RootNode: &importer.Node{
			Name:     "RootNode",
			Children: []*importer.Node{{Name: name, MeshIndices: []uint32{0}}},
		},
	}
}

func newTestSystem(t *testing.T, fi *fakeImporter, paths ...string) (*MeshSystem, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	ms, err := NewMeshSystem(fb, fi, &MeshSystemConfig{SearchPaths: paths})
	if err != nil {
		t.Fatalf("NewMeshSystem failed: %v", err)
	}
	return ms, fb
}

func TestAcquireCachesResult(t *testing.T) {
	fi := newFakeImporter()
	fi.scenes[filepath.Join("models", "tri.obj")] = singleMeshScene("tri")
	ms, fb := newTestSystem(t, fi, "models")

	first, err := ms.Acquire("tri.obj")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	second, err := ms.Acquire("tri.obj")
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	if first != second {
		t.Error("Acquire returned a different resource for a cached name")
	}
	if got := fi.attemptCount(); got != 1 {
		t.Errorf("importer invoked %d times, want 1", got)
	}
	if fb.uploads != 1 {
		t.Errorf("backend uploads = %d, want 1", fb.uploads)
	}
}

func TestSearchPathOrdering(t *testing.T) {
	fi := newFakeImporter()
	// The asset exists only under the second search path.
	fi.scenes[filepath.Join("b", "tri.obj")] = singleMeshScene("tri")
	ms, _ := newTestSystem(t, fi, "a", "b")

	mesh, err := ms.Acquire("tri.obj")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if mesh.Name != "tri.obj" {
		t.Errorf("mesh.Name = %q, want %q", mesh.Name, "tri.obj")
	}

	want := []string{filepath.Join("a", "tri.obj"), filepath.Join("b", "tri.obj")}
	if len(fi.attempts) != len(want) {
		t.Fatalf("attempts = %v, want %v", fi.attempts, want)
	}
	for i := range want {
		if fi.attempts[i] != want[i] {
			t.Errorf("attempt %d = %q, want %q", i, fi.attempts[i], want[i])
		}
	}
}

func TestFirstMeshSelection(t *testing.T) {
	fi := newFakeImporter()
	// Three geometry blocks in traversal order, markers 10, 20, 30.
	fi.scenes[filepath.Join("models", "multi.obj")] = &importer.Scene{
		Meshes: []*importer.MeshData{
			triangleMesh("m1", 10),
			triangleMesh("m2", 20),
			triangleMesh("m3", 30),
		},
		RootNode: &importer.Node{
			Name: "RootNode",
			Children: []*importer.Node{
				{Name: "m1", MeshIndices: []uint32{0}},
				{Name: "m2", MeshIndices: []uint32{1}},
				{Name: "m3", MeshIndices: []uint32{2}},
			},
		},
	}
	ms, fb := newTestSystem(t, fi, "models")

	mesh, err := ms.Acquire("multi.obj")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if got := mesh.Vertices[0].Position.X; got != 10 {
		t.Errorf("canonical mesh marker = %v, want 10 (first in traversal order)", got)
	}
	// The discarded siblings must never reach the GPU or the cache.
	if fb.uploads != 1 {
		t.Errorf("backend uploads = %d, want 1", fb.uploads)
	}
	if cached := ms.Cached("multi.obj"); cached != mesh {
		t.Error("cache does not hold the canonical mesh")
	}
}

func TestResolutionFailureLeavesCacheUntouched(t *testing.T) {
	fi := newFakeImporter()
	ms, _ := newTestSystem(t, fi, "a", "b")

	if _, err := ms.Acquire("missing.obj"); !errors.Is(err, core.ErrMeshNotFound) {
		t.Fatalf("Acquire error = %v, want ErrMeshNotFound", err)
	}
	if ms.Cached("missing.obj") != nil {
		t.Error("failed resolution wrote a cache entry")
	}

	// The file shows up later; a retry must resolve from scratch.
	fi.mu.Lock()
	fi.scenes[filepath.Join("b", "missing.obj")] = singleMeshScene("missing")
	fi.mu.Unlock()

	mesh, err := ms.Acquire("missing.obj")
	if err != nil {
		t.Fatalf("retry Acquire failed: %v", err)
	}
	if ms.Cached("missing.obj") != mesh {
		t.Error("retry did not populate the cache")
	}
}

func TestConcurrentAcquireImportsOnce(t *testing.T) {
	fi := newFakeImporter()
	fi.delay = 10 * time.Millisecond
	fi.scenes[filepath.Join("models", "tri.obj")] = singleMeshScene("tri")
	ms, fb := newTestSystem(t, fi, "models")

	const workers = 8
	results := make([]*resources.Mesh, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			mesh, err := ms.Acquire("tri.obj")
			if err != nil {
				t.Errorf("concurrent Acquire failed: %v", err)
				return
			}
			results[slot] = mesh
		}(i)
	}
	wg.Wait()

	if got := fi.attemptCount(); got != 1 {
		t.Errorf("importer invoked %d times under concurrency, want 1", got)
	}
	if fb.uploads != 1 {
		t.Errorf("backend uploads = %d, want 1", fb.uploads)
	}
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d received a different resource", i)
		}
	}
}

func TestAcquireFromData(t *testing.T) {
	fi := newFakeImporter()
	ms, _ := newTestSystem(t, fi, "models")

	vertices := []math.Vertex3D{
		{Position: math.Vec3{X: 0}},
		{Position: math.Vec3{X: 1}},
		{Position: math.Vec3{Y: 1}},
	}
	faces := []resources.Face{{0, 1, 2}}

	anonymous, err := ms.AcquireFromData("", vertices, faces)
	if err != nil {
		t.Fatalf("AcquireFromData failed: %v", err)
	}
	if anonymous.Name != "" {
		t.Errorf("anonymous mesh has name %q", anonymous.Name)
	}

	named, err := ms.AcquireFromData("direct", vertices, faces)
	if err != nil {
		t.Fatalf("named AcquireFromData failed: %v", err)
	}
	if ms.Cached("direct") != named {
		t.Error("named mesh was not cached")
	}
	if _, err := ms.AcquireFromData("direct", vertices, faces); err == nil {
		t.Error("duplicate name did not fail")
	}
}

func TestReleaseAll(t *testing.T) {
	fi := newFakeImporter()
	fi.scenes[filepath.Join("models", "tri.obj")] = singleMeshScene("tri")
	ms, fb := newTestSystem(t, fi, "models")

	if _, err := ms.Acquire("tri.obj"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	ms.ReleaseAll()

	if fb.destroys != 1 {
		t.Errorf("backend destroys = %d, want 1", fb.destroys)
	}
	if ms.Cached("tri.obj") != nil {
		t.Error("cache not empty after ReleaseAll")
	}
}

func TestAcquireSkipsUnparsableCandidate(t *testing.T) {
	// The candidate in the first search path references a normal index
	// that was never declared, which makes the OBJ parser panic. The
	// resolution must treat that like any other failed candidate and
	// move on to the second search path.
	broken := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//2 3//3
`
	valid := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`
	dirA := t.TempDir()
	dirB := t.TempDir()
	if err := os.WriteFile(filepath.Join(dirA, "tri.obj"), []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dirB, "tri.obj"), []byte(valid), 0o644); err != nil {
		t.Fatal(err)
	}

	fb := &fakeBackend{}
	ms, err := NewMeshSystem(fb, importer.NewRegistry(), &MeshSystemConfig{
		SearchPaths: []string{dirA, dirB},
	})
	if err != nil {
		t.Fatalf("NewMeshSystem failed: %v", err)
	}

	mesh, err := ms.Acquire("tri.obj")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if len(mesh.Vertices) != 3 {
		t.Errorf("vertex count = %d, want 3", len(mesh.Vertices))
	}
	if fb.uploads != 1 {
		t.Errorf("backend uploads = %d, want 1", fb.uploads)
	}

	// The resolution slot must have been released; another Acquire of
	// the same name is a plain cache hit.
	again, err := ms.Acquire("tri.obj")
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if again != mesh {
		t.Error("second Acquire returned a different resource")
	}
}

func TestGPUFailureIsFatal(t *testing.T) {
	fi := newFakeImporter()
	fi.scenes[filepath.Join("a", "tri.obj")] = singleMeshScene("tri")
	fi.scenes[filepath.Join("b", "tri.obj")] = singleMeshScene("tri")
	ms, fb := newTestSystem(t, fi, "a", "b")
	fb.failNext = true

	if _, err := ms.Acquire("tri.obj"); err == nil {
		t.Fatal("Acquire succeeded despite upload failure")
	}
	// The failure must not fall through to the next search path.
	if got := fi.attemptCount(); got != 1 {
		t.Errorf("importer invoked %d times, want 1", got)
	}
	if ms.Cached("tri.obj") != nil {
		t.Error("failed upload wrote a cache entry")
	}
}
