package renderer

import (
	"unsafe"

	"github.com/blokengine/blok/engine/math"
)

/**
 * @brief The on-device handles owned by one mesh: a vertex-array binding
 * object and the vertex/index buffers it ties together. Handles are
 * opaque to everything outside the backend that created them.
 */
type GeometryBuffers struct {
	VAO uint32
	VBO uint32
	EBO uint32
}

/**
 * @brief One entry of the fixed vertex attribute layout. Slot numbers and
 * byte offsets are part of the shader contract and never change at
 * runtime.
 */
type VertexAttribute struct {
	Slot           uint32
	ComponentCount int32
	ByteOffset     uintptr
}

/** @brief The byte stride of one interleaved vertex. */
const VertexStride = int32(unsafe.Sizeof(math.Vertex3D{}))

/**
 * @brief The attribute layout of the interleaved vertex buffer. Offsets
 * are derived from the Vertex3D memory layout, which is the wire format:
 * slot 0 position, 1 texcoord, 2 tangent, 3 bitangent, 4 normal.
 */
var VertexAttributes = [5]VertexAttribute{
	{Slot: 0, ComponentCount: 3, ByteOffset: unsafe.Offsetof(math.Vertex3D{}.Position)},
	{Slot: 1, ComponentCount: 2, ByteOffset: unsafe.Offsetof(math.Vertex3D{}.Texcoord)},
	{Slot: 2, ComponentCount: 3, ByteOffset: unsafe.Offsetof(math.Vertex3D{}.Tangent)},
	{Slot: 3, ComponentCount: 3, ByteOffset: unsafe.Offsetof(math.Vertex3D{}.Bitangent)},
	{Slot: 4, ComponentCount: 3, ByteOffset: unsafe.Offsetof(math.Vertex3D{}.Normal)},
}

/**
 * @brief The GPU resource backend. All methods must be called from the
 * thread that owns the graphics context; the backend performs no
 * marshalling of its own. Allocation failures are unrecoverable from the
 * pipeline's point of view and are never retried.
 */
type Backend interface {
	Initialize() error
	Shutdown() error

	// UploadGeometry creates a vertex-array binding plus vertex and index
	// buffers, uploads the interleaved vertex data and the flattened
	// triangle indices, and declares the fixed attribute layout. On error
	// no handles are leaked.
	UploadGeometry(vertices []math.Vertex3D, indices []uint32) (*GeometryBuffers, error)

	// DestroyGeometry releases the handles. Safe to call with nil or with
	// already-released buffers.
	DestroyGeometry(buffers *GeometryBuffers)
}
