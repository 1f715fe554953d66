package driver

import "fmt"

// BufferTarget is a binding point for buffers.
type BufferTarget int

const (
	BufferTargetArray BufferTarget = iota
	BufferTargetElementArray
	BufferTargetPixelUnpack
)

func (t BufferTarget) String() string {
	switch t {
	case BufferTargetArray:
		return "ArrayBuffer"
	case BufferTargetElementArray:
		return "ElementArrayBuffer"
	case BufferTargetPixelUnpack:
		return "PixelUnpackBuffer"
	default:
		return fmt.Sprintf("BufferTarget(%d)", int(t))
	}
}

// BufferUsage is the expected access pattern of a buffer's storage.
type BufferUsage int

const (
	BufferUsageStaticDraw BufferUsage = iota
	BufferUsageDynamicDraw
	BufferUsageStreamDraw
)

// TextureTarget is a binding point for textures, or one face of a cube map for uploads.
type TextureTarget int

const (
	TextureTarget2D TextureTarget = iota
	TextureTargetCubeMap
	TextureTarget2DArray
	TextureTargetCubeMapPositiveX
	TextureTargetCubeMapNegativeX
	TextureTargetCubeMapPositiveY
	TextureTargetCubeMapNegativeY
	TextureTargetCubeMapPositiveZ
	TextureTargetCubeMapNegativeZ
)

// IsCubeFace reports whether t names a single cube map face.
func (t TextureTarget) IsCubeFace() bool {
	return t >= TextureTargetCubeMapPositiveX && t <= TextureTargetCubeMapNegativeZ
}

// CubeFaceIndex returns the layer index of a cube face target in +X, -X, +Y, -Y, +Z, -Z order.
func (t TextureTarget) CubeFaceIndex() int {
	return int(t - TextureTargetCubeMapPositiveX)
}

func (t TextureTarget) String() string {
	switch t {
	case TextureTarget2D:
		return "Texture2D"
	case TextureTargetCubeMap:
		return "TextureCubeMap"
	case TextureTarget2DArray:
		return "Texture2DArray"
	}
	if t.IsCubeFace() {
		return fmt.Sprintf("CubeMapFace(%d)", t.CubeFaceIndex())
	}
	return fmt.Sprintf("TextureTarget(%d)", int(t))
}

// TextureParameter names a texture sampling parameter.
type TextureParameter int

const (
	TextureParameterMinFilter TextureParameter = iota
	TextureParameterMagFilter
	TextureParameterWrapS
	TextureParameterWrapT
	TextureParameterWrapR
)

// TextureFilter is a minification or magnification filter.
type TextureFilter int32

const (
	FilterNearest TextureFilter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

// TextureWrap is a texture coordinate wrap mode.
type TextureWrap int32

const (
	WrapRepeat TextureWrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// ScalarType is the component type of vertex attributes and indices.
type ScalarType int

const (
	ScalarFloat ScalarType = iota
	ScalarByte
	ScalarUnsignedByte
	ScalarShort
	ScalarUnsignedShort
	ScalarInt
	ScalarUnsignedInt
)

// Size returns the byte size of one component.
func (s ScalarType) Size() int {
	switch s {
	case ScalarByte, ScalarUnsignedByte:
		return 1
	case ScalarShort, ScalarUnsignedShort:
		return 2
	default:
		return 4
	}
}

// Primitive is the topology used by draw calls.
type Primitive int

const (
	PrimitivePoints Primitive = iota
	PrimitiveLines
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleStrip
)

// Count returns the number of whole primitives formed by n indices.
func (p Primitive) Count(n int) int {
	switch p {
	case PrimitivePoints:
		return n
	case PrimitiveLines:
		return n / 2
	case PrimitiveLineStrip:
		return max(n-1, 0)
	case PrimitiveTriangles:
		return n / 3
	case PrimitiveTriangleStrip:
		return max(n-2, 0)
	default:
		return 0
	}
}

// Capability is a toggleable piece of fixed-function state.
type Capability int

const (
	CapabilityDepthTest Capability = iota
	CapabilityBlend
	CapabilityCullFace
)

// BlendFactor is a source or destination blend factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// Face selects which polygon faces are culled.
type Face int

const (
	FaceBack Face = iota
	FaceFront
)

// ClearMask selects the buffers cleared by Clear.
type ClearMask uint32

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
)

// Attachment is a framebuffer attachment point.
type Attachment int

const (
	AttachmentColor0 Attachment = iota
	AttachmentDepth
)

// RenderbufferFormat is the storage format of a renderbuffer.
type RenderbufferFormat int

const (
	RenderbufferDepth24 RenderbufferFormat = iota
	RenderbufferDepth24Stencil8
)

// FramebufferStatus is the completeness status of the bound framebuffer.
type FramebufferStatus int

const (
	FramebufferComplete FramebufferStatus = iota
	FramebufferIncompleteAttachment
	FramebufferIncompleteMissingAttachment
	FramebufferUnsupported
	FramebufferUndefined
)

func (s FramebufferStatus) String() string {
	switch s {
	case FramebufferComplete:
		return "complete"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment"
	case FramebufferIncompleteMissingAttachment:
		return "missing attachment"
	case FramebufferUnsupported:
		return "unsupported"
	case FramebufferUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("FramebufferStatus(%d)", int(s))
	}
}

// LabelKind is the namespace of a handle passed to ObjectLabel.
type LabelKind int

const (
	LabelBuffer LabelKind = iota
	LabelTexture
	LabelFramebuffer
	LabelRenderbuffer
	LabelProgram
	LabelVertexArray
)
