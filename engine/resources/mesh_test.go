package resources

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/math"
	"github.com/blokengine/blok/engine/renderer"
)

type recordingBackend struct {
	uploads  int
	destroys int
	fail     bool
}

func (rb *recordingBackend) Initialize() error { return nil }
func (rb *recordingBackend) Shutdown() error   { return nil }

func (rb *recordingBackend) UploadGeometry(vertices []math.Vertex3D, indices []uint32) (*renderer.GeometryBuffers, error) {
	if rb.fail {
		return nil, fmt.Errorf("device out of memory")
	}
	rb.uploads++
	return &renderer.GeometryBuffers{VAO: 1, VBO: 2, EBO: 3}, nil
}

func (rb *recordingBackend) DestroyGeometry(buffers *renderer.GeometryBuffers) {
	if buffers != nil {
		rb.destroys++
	}
}

func testTriangle() ([]math.Vertex3D, []Face) {
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(-1, -2, 0)},
		{Position: math.NewVec3(3, 0, 0)},
		{Position: math.NewVec3(0, 4, 5)},
	}
	return vertices, []Face{{0, 1, 2}}
}

func TestNewMeshUploadsAndMeasures(t *testing.T) {
	rb := &recordingBackend{}
	vertices, faces := testTriangle()

	mesh, err := NewMesh(rb, vertices, faces)
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}
	if rb.uploads != 1 {
		t.Errorf("uploads = %d, want 1", rb.uploads)
	}
	if mesh.UniqueID == "" {
		t.Error("mesh has no unique id")
	}
	if mesh.Buffers() == nil {
		t.Error("mesh has no GPU buffers")
	}

	wantMin := math.NewVec3(-1, -2, 0)
	wantMax := math.NewVec3(3, 4, 5)
	if !mesh.Extents.Min.Compare(wantMin, math.K_FLOAT_EPSILON) {
		t.Errorf("extents min = %+v, want %+v", mesh.Extents.Min, wantMin)
	}
	if !mesh.Extents.Max.Compare(wantMax, math.K_FLOAT_EPSILON) {
		t.Errorf("extents max = %+v, want %+v", mesh.Extents.Max, wantMax)
	}
}

func TestNewMeshRejectsEmptyGeometry(t *testing.T) {
	rb := &recordingBackend{}
	vertices, faces := testTriangle()

	if _, err := NewMesh(rb, nil, faces); !errors.Is(err, core.ErrMalformedGeometry) {
		t.Errorf("empty vertices: error = %v, want ErrMalformedGeometry", err)
	}
	if _, err := NewMesh(rb, vertices, nil); !errors.Is(err, core.ErrMalformedGeometry) {
		t.Errorf("empty faces: error = %v, want ErrMalformedGeometry", err)
	}
	if rb.uploads != 0 {
		t.Errorf("rejected geometry reached the backend (%d uploads)", rb.uploads)
	}
}

func TestNewMeshUploadFailure(t *testing.T) {
	rb := &recordingBackend{fail: true}
	vertices, faces := testTriangle()

	if _, err := NewMesh(rb, vertices, faces); err == nil {
		t.Fatal("NewMesh succeeded despite upload failure")
	}
	if rb.destroys != 0 {
		t.Errorf("destroys = %d, want 0", rb.destroys)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	rb := &recordingBackend{}
	vertices, faces := testTriangle()

	mesh, err := NewMesh(rb, vertices, faces)
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}

	mesh.Destroy()
	mesh.Destroy()
	if rb.destroys != 1 {
		t.Errorf("destroys = %d, want 1", rb.destroys)
	}
	if mesh.Buffers() != nil {
		t.Error("buffers still set after Destroy")
	}

	var nilMesh *Mesh
	nilMesh.Destroy()
}

func TestFlattenFaces(t *testing.T) {
	faces := []Face{{0, 1, 2}, {2, 1, 3}}
	want := []uint32{0, 1, 2, 2, 1, 3}

	got := FlattenFaces(faces)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d = %d, want %d", i, got[i], want[i])
		}
	}
}
