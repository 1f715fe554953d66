package renderer

import (
	"maps"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// ShaderProgram is a linked vertex and fragment program together with the reflection of its inputs and uniforms.
type ShaderProgram interface {
	Resource
	vertex.AttributeLookup

	// Bind makes the program the one in use on ctx.
	Bind(ctx RenderContext) error

	// EnsureUnbound stops using the program on ctx if it is the program in use.
	EnsureUnbound(ctx RenderContext) error

	// VertexSource returns the source the vertex stage was built from.
	VertexSource() string

	// FragmentSource returns the source the fragment stage was built from.
	FragmentSource() string

	// Attributes returns the active vertex inputs by name.
	Attributes() map[string]int32

	// Uniforms returns the active uniforms by name.
	Uniforms() map[string]driver.UniformInfo

	// AttributeLocation returns the location of the named vertex input.
	AttributeLocation(name string) (int32, bool)

	// HasUniform reports whether the program declares an active uniform called name.
	HasUniform(name string) bool

	// SetUniformMat4 binds the program and writes a 4x4 matrix uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//   - m: the matrix, column-major
	//
	// Returns:
	//   - error: ErrUseAfterDispose, ErrInvalidArgument when the program has no such uniform
	SetUniformMat4(name string, m mgl32.Mat4) error
	SetUniformInt(name string, v int32) error
	SetUniformFloat(name string, v float32) error
	SetUniformVec2(name string, v mgl32.Vec2) error
	SetUniformVec3(name string, v mgl32.Vec3) error
	SetUniformVec4(name string, v mgl32.Vec4) error

	// TrySetUniformMat4 writes the uniform when the program declares it and reports whether it did.
	TrySetUniformMat4(name string, m mgl32.Mat4) bool
	TrySetUniformInt(name string, v int32) bool
	TrySetUniformFloat(name string, v float32) bool

	// Rebuild links a new program from the given sources and swaps it in under the same resource.
	// On failure the current program is kept.
	//
	// Parameters:
	//   - vertexSource: the new vertex stage source
	//   - fragmentSource: the new fragment stage source
	//
	// Returns:
	//   - error: ErrShaderCompile with the driver's log, or ErrUseAfterDispose
	Rebuild(vertexSource, fragmentSource string) error
}

type shaderProgram struct {
	resource
	vertexSource   string
	fragmentSource string
	attributes     map[string]int32
	locations      map[int32]bool
	uniforms       map[string]driver.UniformInfo
}

var _ ShaderProgram = &shaderProgram{}

// NewShaderProgram compiles and links a program from vertex and fragment stage sources.
//
// Parameters:
//   - ctx: the render context to create the program on
//   - vertexSource: the vertex stage source
//   - fragmentSource: the fragment stage source
//
// Returns:
//   - ShaderProgram: the linked program
//   - error: ErrInvalidArgument for empty sources, ErrShaderCompile with the driver's log
func NewShaderProgram(ctx RenderContext, vertexSource, fragmentSource string) (ShaderProgram, error) {
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	if vertexSource == "" || fragmentSource == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "shader program requires vertex and fragment sources")
	}
	h, err := c.drv.CreateProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, errors.Wrapf(ErrShaderCompile, "%v", err)
	}

	p := &shaderProgram{
		resource:       newResource(c, driver.LabelProgram, h, ""),
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
	}
	p.reflect()
	c.register(p)
	return p, nil
}

// reflect reloads the attribute and uniform tables from the driver.
func (p *shaderProgram) reflect() {
	drv := p.ctx.drv
	p.attributes = make(map[string]int32)
	p.locations = make(map[int32]bool)
	for _, a := range drv.ActiveAttributes(p.handle) {
		p.attributes[a.Name] = a.Location
		p.locations[a.Location] = true
	}
	p.uniforms = make(map[string]driver.UniformInfo)
	for _, u := range drv.ActiveUniforms(p.handle) {
		p.uniforms[u.Name] = u
	}
}

func (p *shaderProgram) Bind(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "bind shader program: render context is nil")
	}
	return ctx.BindShaderProgram(p)
}

func (p *shaderProgram) EnsureUnbound(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "unbind shader program: render context is nil")
	}
	return ctx.EnsureShaderProgramUnbound(p)
}

func (p *shaderProgram) VertexSource() string {
	return p.vertexSource
}

func (p *shaderProgram) FragmentSource() string {
	return p.fragmentSource
}

func (p *shaderProgram) Attributes() map[string]int32 {
	return maps.Clone(p.attributes)
}

func (p *shaderProgram) Uniforms() map[string]driver.UniformInfo {
	return maps.Clone(p.uniforms)
}

func (p *shaderProgram) AttributeLocation(name string) (int32, bool) {
	loc, ok := p.attributes[name]
	return loc, ok
}

func (p *shaderProgram) HasAttributeLocation(location int) bool {
	return p.locations[int32(location)]
}

func (p *shaderProgram) HasUniform(name string) bool {
	_, ok := p.uniforms[name]
	return ok
}

// uniform binds the program and resolves the location of name.
func (p *shaderProgram) uniform(name string) (int32, error) {
	if err := p.ensureUndisposed("set uniform " + name); err != nil {
		return 0, err
	}
	u, ok := p.uniforms[name]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidArgument, "program %s has no uniform %q", p.describe(), name)
	}
	if err := p.ctx.BindShaderProgram(p); err != nil {
		return 0, err
	}
	return u.Location, nil
}

func (p *shaderProgram) SetUniformMat4(name string, m mgl32.Mat4) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	p.ctx.drv.UniformMatrix4(loc, m)
	return nil
}

func (p *shaderProgram) SetUniformInt(name string, v int32) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	p.ctx.drv.Uniform1i(loc, v)
	return nil
}

func (p *shaderProgram) SetUniformFloat(name string, v float32) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	p.ctx.drv.Uniform1f(loc, v)
	return nil
}

func (p *shaderProgram) SetUniformVec2(name string, v mgl32.Vec2) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	p.ctx.drv.Uniform2f(loc, v[0], v[1])
	return nil
}

func (p *shaderProgram) SetUniformVec3(name string, v mgl32.Vec3) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	p.ctx.drv.Uniform3f(loc, v[0], v[1], v[2])
	return nil
}

func (p *shaderProgram) SetUniformVec4(name string, v mgl32.Vec4) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	p.ctx.drv.Uniform4f(loc, v[0], v[1], v[2], v[3])
	return nil
}

func (p *shaderProgram) TrySetUniformMat4(name string, m mgl32.Mat4) bool {
	if !p.HasUniform(name) {
		return false
	}
	return p.SetUniformMat4(name, m) == nil
}

func (p *shaderProgram) TrySetUniformInt(name string, v int32) bool {
	if !p.HasUniform(name) {
		return false
	}
	return p.SetUniformInt(name, v) == nil
}

func (p *shaderProgram) TrySetUniformFloat(name string, v float32) bool {
	if !p.HasUniform(name) {
		return false
	}
	return p.SetUniformFloat(name, v) == nil
}

func (p *shaderProgram) Rebuild(vertexSource, fragmentSource string) error {
	if err := p.ensureUndisposed("rebuild shader program"); err != nil {
		return err
	}
	drv := p.ctx.drv
	h, err := drv.CreateProgram(vertexSource, fragmentSource)
	if err != nil {
		return errors.Wrapf(ErrShaderCompile, "%v", err)
	}

	if p.bound != nil {
		_ = p.bound.EnsureShaderProgramUnbound(p)
	}
	old := p.handle
	drv.DeleteProgram(old)
	p.handle = h
	p.vertexSource, p.fragmentSource = vertexSource, fragmentSource
	p.reflect()
	if p.label != "" {
		drv.ObjectLabel(p.kind, h, p.label)
	}
	p.ctx.logger.Info("shader program rebuilt", "old", old, "new", h)
	return nil
}

func (p *shaderProgram) Dispose() {
	if p.disposed {
		return
	}
	if p.bound != nil {
		_ = p.bound.EnsureShaderProgramUnbound(p)
	}
	p.ctx.drv.DeleteProgram(p.handle)
	p.finishDispose()
}
