package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh pairs a static vertex buffer with the index buffer that draws it.
type Mesh struct {
	VertexBuffer VertexBuffer
	IndexBuffer  IndexBuffer
	Primitive    driver.Primitive
}

// NewMesh uploads vertices and indices into static buffers drawn as triangles.
//
// Parameters:
//   - ctx: the render context to create the buffers on
//   - vertices: the vertex records
//   - indices: the triangle indices
//
// Returns:
//   - *Mesh: the mesh owning both buffers
//   - error: any error from creating the buffers
func NewMesh[T any, I Index](ctx RenderContext, vertices []T, indices []I) (*Mesh, error) {
	vb, err := NewVertexBuffer(ctx, vertices, driver.BufferUsageStaticDraw)
	if err != nil {
		return nil, err
	}
	ib, err := NewIndexBuffer(ctx, indices, driver.BufferUsageStaticDraw)
	if err != nil {
		vb.Dispose()
		return nil, err
	}
	return &Mesh{VertexBuffer: vb, IndexBuffer: ib, Primitive: driver.PrimitiveTriangles}, nil
}

// Render sets the program's "transform" uniform when it has one and draws every index of the mesh.
func (m *Mesh) Render(ctx RenderContext, program ShaderProgram, transform mgl32.Mat4) error {
	if isNil(ctx) || isNil(program) {
		return errors.Wrap(ErrInvalidArgument, "render mesh: context and program are required")
	}
	if err := program.base().ensureUndisposed("render mesh"); err != nil {
		return err
	}
	program.TrySetUniformMat4("transform", transform)
	return ctx.Render(m.Primitive, m.VertexBuffer, m.IndexBuffer, program)
}

// Dispose disposes both buffers.
func (m *Mesh) Dispose() {
	m.VertexBuffer.Dispose()
	m.IndexBuffer.Dispose()
}
