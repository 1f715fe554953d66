package gldriver

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

func bufferTarget(t driver.BufferTarget) uint32 {
	switch t {
	case driver.BufferTargetElementArray:
		return gl.ELEMENT_ARRAY_BUFFER
	case driver.BufferTargetPixelUnpack:
		return gl.PIXEL_UNPACK_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func bufferUsage(u driver.BufferUsage) uint32 {
	switch u {
	case driver.BufferUsageDynamicDraw:
		return gl.DYNAMIC_DRAW
	case driver.BufferUsageStreamDraw:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func textureTarget(t driver.TextureTarget) uint32 {
	if t.IsCubeFace() {
		return gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(t.CubeFaceIndex())
	}
	switch t {
	case driver.TextureTargetCubeMap:
		return gl.TEXTURE_CUBE_MAP
	case driver.TextureTarget2DArray:
		return gl.TEXTURE_2D_ARRAY
	default:
		return gl.TEXTURE_2D
	}
}

func textureParameter(p driver.TextureParameter) uint32 {
	switch p {
	case driver.TextureParameterMagFilter:
		return gl.TEXTURE_MAG_FILTER
	case driver.TextureParameterWrapS:
		return gl.TEXTURE_WRAP_S
	case driver.TextureParameterWrapT:
		return gl.TEXTURE_WRAP_T
	case driver.TextureParameterWrapR:
		return gl.TEXTURE_WRAP_R
	default:
		return gl.TEXTURE_MIN_FILTER
	}
}

// textureParameterValue translates a TextureFilter or TextureWrap value for the given parameter.
func textureParameterValue(p driver.TextureParameter, v int32) int32 {
	switch p {
	case driver.TextureParameterMinFilter, driver.TextureParameterMagFilter:
		switch driver.TextureFilter(v) {
		case driver.FilterLinear:
			return gl.LINEAR
		case driver.FilterNearestMipmapNearest:
			return gl.NEAREST_MIPMAP_NEAREST
		case driver.FilterLinearMipmapNearest:
			return gl.LINEAR_MIPMAP_NEAREST
		case driver.FilterNearestMipmapLinear:
			return gl.NEAREST_MIPMAP_LINEAR
		case driver.FilterLinearMipmapLinear:
			return gl.LINEAR_MIPMAP_LINEAR
		default:
			return gl.NEAREST
		}
	default:
		switch driver.TextureWrap(v) {
		case driver.WrapClampToEdge:
			return gl.CLAMP_TO_EDGE
		case driver.WrapMirroredRepeat:
			return gl.MIRRORED_REPEAT
		default:
			return gl.REPEAT
		}
	}
}

func scalarType(s driver.ScalarType) uint32 {
	switch s {
	case driver.ScalarByte:
		return gl.BYTE
	case driver.ScalarUnsignedByte:
		return gl.UNSIGNED_BYTE
	case driver.ScalarShort:
		return gl.SHORT
	case driver.ScalarUnsignedShort:
		return gl.UNSIGNED_SHORT
	case driver.ScalarInt:
		return gl.INT
	case driver.ScalarUnsignedInt:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}

func primitive(p driver.Primitive) uint32 {
	switch p {
	case driver.PrimitivePoints:
		return gl.POINTS
	case driver.PrimitiveLines:
		return gl.LINES
	case driver.PrimitiveLineStrip:
		return gl.LINE_STRIP
	case driver.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}

func capability(c driver.Capability) uint32 {
	switch c {
	case driver.CapabilityBlend:
		return gl.BLEND
	case driver.CapabilityCullFace:
		return gl.CULL_FACE
	default:
		return gl.DEPTH_TEST
	}
}

func blendFactor(f driver.BlendFactor) uint32 {
	switch f {
	case driver.BlendZero:
		return gl.ZERO
	case driver.BlendSrcColor:
		return gl.SRC_COLOR
	case driver.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case driver.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case driver.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case driver.BlendDstColor:
		return gl.DST_COLOR
	case driver.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case driver.BlendDstAlpha:
		return gl.DST_ALPHA
	case driver.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	default:
		return gl.ONE
	}
}

func face(f driver.Face) uint32 {
	if f == driver.FaceFront {
		return gl.FRONT
	}
	return gl.BACK
}

func clearMask(m driver.ClearMask) uint32 {
	var bits uint32
	if m&driver.ClearColorBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if m&driver.ClearDepthBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	return bits
}

func attachment(a driver.Attachment) uint32 {
	if a == driver.AttachmentDepth {
		return gl.DEPTH_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0
}

func renderbufferFormat(f driver.RenderbufferFormat) uint32 {
	if f == driver.RenderbufferDepth24Stencil8 {
		return gl.DEPTH24_STENCIL8
	}
	return gl.DEPTH_COMPONENT24
}

func framebufferStatus(status uint32) driver.FramebufferStatus {
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return driver.FramebufferComplete
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return driver.FramebufferIncompleteAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return driver.FramebufferIncompleteMissingAttachment
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return driver.FramebufferUnsupported
	default:
		return driver.FramebufferUndefined
	}
}

// uniformTypeSize returns the byte size of one element of a GLSL uniform type, or zero for samplers and unknown types.
func uniformTypeSize(xtype uint32) int {
	switch xtype {
	case gl.FLOAT, gl.INT, gl.UNSIGNED_INT, gl.BOOL:
		return 4
	case gl.FLOAT_VEC2, gl.INT_VEC2:
		return 8
	case gl.FLOAT_VEC3, gl.INT_VEC3:
		return 12
	case gl.FLOAT_VEC4, gl.INT_VEC4, gl.FLOAT_MAT2:
		return 16
	case gl.FLOAT_MAT3:
		return 36
	case gl.FLOAT_MAT4:
		return 64
	default:
		return 0
	}
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return "GL_UNKNOWN_ERROR"
	}
}
