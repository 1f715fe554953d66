// Package driver defines the native graphics API consumed by the render context.
// A Driver exposes a bind-to-modify model: objects are generated as opaque handles, bound to a target, and then
// modified through that target. A Driver keeps no binding cache of its own; the render context is the only caller of
// the Bind* methods and is the single source of truth for what is bound.
package driver

// Handle is an opaque identifier for a native graphics object.
type Handle uint32

// Zero is the reserved handle meaning "no object".
const Zero Handle = 0

// Limits describes capabilities queried from the driver once at context creation.
type Limits struct {
	// MaxTextureImageUnits is the number of texture units available to fragment shaders.
	MaxTextureImageUnits int
	// HasDebug reports whether ObjectLabel forwards labels to a native debug layer.
	HasDebug bool
	// Renderer names the device or backend, for logging.
	Renderer string
}

// AttributeInfo describes a vertex input declared by a linked program.
type AttributeInfo struct {
	Name     string
	Location int32
}

// UniformInfo describes a uniform declared by a linked program.
type UniformInfo struct {
	Name     string
	Location int32
	// Size is the byte size of the uniform when the driver knows it, otherwise zero.
	Size int
}

// Driver is the native graphics API used by the render context and the resource types.
// All methods must be called from the thread that owns the native context.
type Driver interface {
	// Limits returns the capabilities of the underlying context.
	//
	// Returns:
	//   - Limits: the queried limits
	Limits() Limits

	// ObjectLabel attaches a debug label to a native object. Drivers without a debug layer may ignore it.
	//
	// Parameters:
	//   - kind: the kind of object the handle refers to
	//   - h: the object handle
	//   - label: the label to attach
	ObjectLabel(kind LabelKind, h Handle, label string)

	GenBuffer() Handle
	DeleteBuffer(h Handle)
	BindBuffer(target BufferTarget, h Handle)

	// BufferData (re)allocates the storage of the buffer bound to target.
	//
	// Parameters:
	//   - target: the target the buffer is bound to
	//   - size: the size of the allocation in bytes
	//   - data: initial contents, or nil to leave the storage uninitialized
	//   - usage: the expected usage pattern
	BufferData(target BufferTarget, size int, data []byte, usage BufferUsage)

	// BufferSubData writes data into the buffer bound to target starting at offset bytes.
	BufferSubData(target BufferTarget, offset int, data []byte)

	GenTexture() Handle
	DeleteTexture(h Handle)

	// ActiveTexture selects the texture unit that subsequent BindTexture calls affect.
	ActiveTexture(unit int)
	BindTexture(target TextureTarget, h Handle)

	// TexImage2D allocates level 0 of the texture bound to target (or one cube face) as RGBA8.
	//
	// Parameters:
	//   - target: TextureTarget2D or one of the cube map face targets
	//   - width: the width in pixels
	//   - height: the height in pixels
	//   - pixels: RGBA pixels with bottom-origin rows, or nil to allocate only
	TexImage2D(target TextureTarget, width, height int, pixels []byte)

	// TexImage2DFromBuffer allocates level 0 of the bound texture reading pixels from the bound pixel unpack buffer.
	TexImage2DFromBuffer(target TextureTarget, width, height, offset int)

	TexSubImage2D(target TextureTarget, x, y, width, height int, pixels []byte)

	// TexImage3D allocates level 0 of the bound array texture as RGBA8 with depth layers.
	TexImage3D(target TextureTarget, width, height, depth int, pixels []byte)
	TexSubImage3D(target TextureTarget, x, y, z, width, height, depth int, pixels []byte)

	// TexParameter sets a sampling parameter on the texture bound to target.
	// Value is a TextureFilter or TextureWrap converted to int32.
	TexParameter(target TextureTarget, param TextureParameter, value int32)
	GenerateMipmap(target TextureTarget)

	// GetTexImage reads back level 0 of the bound texture as RGBA8 pixels.
	//
	// Returns:
	//   - []byte: the pixels with bottom-origin rows
	//   - error: an error if the driver cannot read textures back
	GetTexImage(target TextureTarget, width, height int) ([]byte, error)

	GenFramebuffer() Handle
	DeleteFramebuffer(h Handle)
	BindFramebuffer(h Handle)
	FramebufferTexture2D(attachment Attachment, target TextureTarget, tex Handle)
	FramebufferRenderbuffer(attachment Attachment, rb Handle)
	CheckFramebufferStatus() FramebufferStatus
	GenRenderbuffer() Handle
	DeleteRenderbuffer(h Handle)
	BindRenderbuffer(h Handle)
	RenderbufferStorage(format RenderbufferFormat, width, height int)

	// CreateProgram compiles and links a program from vertex and fragment sources.
	//
	// Parameters:
	//   - vertexSource: the vertex stage source
	//   - fragmentSource: the fragment stage source
	//
	// Returns:
	//   - Handle: the linked program handle
	//   - error: the compile or link log if either step failed
	CreateProgram(vertexSource, fragmentSource string) (Handle, error)
	DeleteProgram(h Handle)
	UseProgram(h Handle)
	ActiveAttributes(program Handle) []AttributeInfo
	ActiveUniforms(program Handle) []UniformInfo

	// Uniform setters write to the program currently in use.
	UniformMatrix4(location int32, m [16]float32)
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)

	GenVertexArray() Handle
	DeleteVertexArray(h Handle)
	BindVertexArray(h Handle)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)

	// VertexAttribPointer describes attribute index as read from the buffer currently bound to BufferTargetArray.
	//
	// Parameters:
	//   - index: the attribute location
	//   - size: the number of components
	//   - typ: the component scalar type
	//   - normalized: whether integer components are normalized to [0, 1]
	//   - stride: the byte distance between consecutive vertices
	//   - offset: the byte offset of the attribute inside a vertex
	VertexAttribPointer(index uint32, size int32, typ ScalarType, normalized bool, stride int32, offset int)

	// DrawElements draws count indices of type typ from the bound index buffer starting at byte offset.
	DrawElements(mode Primitive, count int, typ ScalarType, offset int)

	// DrawRangeElements is DrawElements with a hint that every index lies in [start, end].
	DrawRangeElements(mode Primitive, start, end uint32, count int, typ ScalarType, offset int)

	Enable(c Capability)
	Disable(c Capability)
	BlendFunc(src, dst BlendFactor)
	CullFace(face Face)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Viewport(x, y, width, height int)
}
