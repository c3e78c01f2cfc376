package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/math"
	"github.com/blokengine/blok/engine/renderer"
)

/**
 * @brief OpenGL 4.1 core implementation of the resource backend. Requires
 * a current GL context on the calling thread (see engine/platform).
 */
type Backend struct {
	initialized bool
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Initialize() error {
	if b.initialized {
		return nil
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL bindings: %w", err)
	}
	b.initialized = true
	core.LogInfo("OpenGL backend initialized, version '%s'.", gl.GoStr(gl.GetString(gl.VERSION)))
	return nil
}

func (b *Backend) Shutdown() error {
	b.initialized = false
	return nil
}

func (b *Backend) UploadGeometry(vertices []math.Vertex3D, indices []uint32) (*renderer.GeometryBuffers, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("cannot upload geometry without vertices")
	}

	buffers := &renderer.GeometryBuffers{}
	gl.GenVertexArrays(1, &buffers.VAO)
	gl.GenBuffers(1, &buffers.VBO)
	gl.GenBuffers(1, &buffers.EBO)

	gl.BindVertexArray(buffers.VAO)

	// The Vertex3D memory layout is sequential, so the slice backing
	// array is uploaded verbatim as the interleaved vertex buffer.
	gl.BindBuffer(gl.ARRAY_BUFFER, buffers.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(unsafe.Sizeof(math.Vertex3D{})), gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buffers.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	for _, attr := range renderer.VertexAttributes {
		gl.EnableVertexAttribArray(attr.Slot)
		gl.VertexAttribPointerWithOffset(attr.Slot, attr.ComponentCount, gl.FLOAT, false, renderer.VertexStride, attr.ByteOffset)
	}

	gl.BindVertexArray(0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		// Out of memory or invalid context. Release whatever was
		// created before reporting the failure.
		b.DestroyGeometry(buffers)
		return nil, fmt.Errorf("OpenGL error 0x%x while uploading geometry", glErr)
	}

	return buffers, nil
}

func (b *Backend) DestroyGeometry(buffers *renderer.GeometryBuffers) {
	if buffers == nil {
		return
	}
	if buffers.VAO != 0 {
		gl.DeleteVertexArrays(1, &buffers.VAO)
		buffers.VAO = 0
	}
	if buffers.VBO != 0 {
		gl.DeleteBuffers(1, &buffers.VBO)
		buffers.VBO = 0
	}
	if buffers.EBO != 0 {
		gl.DeleteBuffers(1, &buffers.EBO)
		buffers.EBO = 0
	}
}
