package resources

import (
	"fmt"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/math"
	"github.com/blokengine/blok/engine/renderer"
)

/** @brief Exactly three vertex indices forming one triangle. */
type Face [3]uint32

/**
 * @brief A renderable mesh resource: an immutable vertex/face pair plus
 * the GPU buffers holding the same data on device. A mesh is created
 * either directly from data or through the mesh system's resolution path;
 * its GPU footprint is fixed for its lifetime. The owner must call
 * Destroy to release the device handles; there is no finalizer.
 */
type Mesh struct {
	/** @brief Unique resource identifier. */
	UniqueID string
	/** @brief The logical filename the mesh was resolved under. Empty for meshes built directly from data. */
	Name string
	/** @brief The vertices of the mesh. Treated as immutable after construction. */
	Vertices []math.Vertex3D
	/** @brief The triangle faces of the mesh, indexing into Vertices. */
	Faces []Face
	/** @brief The axis-aligned extents of the mesh in local coordinates. */
	Extents math.Extents3D

	backend   renderer.Backend
	buffers   *renderer.GeometryBuffers
	destroyed bool
}

// FlattenFaces returns the face indices as one flat triangle list, the
// form the index buffer is uploaded in.
func FlattenFaces(faces []Face) []uint32 {
	indices := make([]uint32, 0, len(faces)*3)
	for _, f := range faces {
		indices = append(indices, f[0], f[1], f[2])
	}
	return indices
}

/**
 * @brief Constructs a mesh from vertices and faces and uploads both to
 * the GPU through the given backend. On upload failure nothing is leaked
 * and no mesh is returned; GPU allocation failures are not retried.
 */
func NewMesh(backend renderer.Backend, vertices []math.Vertex3D, faces []Face) (*Mesh, error) {
	if backend == nil {
		return nil, fmt.Errorf("cannot create mesh without a renderer backend")
	}
	if len(vertices) == 0 || len(faces) == 0 {
		return nil, fmt.Errorf("%w: mesh requires at least one vertex and one face", core.ErrMalformedGeometry)
	}

	buffers, err := backend.UploadGeometry(vertices, FlattenFaces(faces))
	if err != nil {
		return nil, err
	}

	return &Mesh{
		UniqueID: core.IdentifierAcquireNewID(),
		Vertices: vertices,
		Faces:    faces,
		Extents:  math.GeometryCalculateExtents(vertices),
		backend:  backend,
		buffers:  buffers,
	}, nil
}

// Buffers exposes the GPU handle set, e.g. for draw submission by a
// caller that owns the graphics context.
func (m *Mesh) Buffers() *renderer.GeometryBuffers {
	return m.buffers
}

/**
 * @brief Releases the mesh's GPU handles. Idempotent: repeated calls and
 * calls on a nil mesh are no-ops, so every exit path of an owning scope
 * may call it unconditionally.
 */
func (m *Mesh) Destroy() {
	if m == nil || m.destroyed {
		return
	}
	m.destroyed = true
	if m.buffers != nil {
		m.backend.DestroyGeometry(m.buffers)
		m.buffers = nil
	}
}
