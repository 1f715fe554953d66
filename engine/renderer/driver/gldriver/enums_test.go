package gldriver

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

func TestTextureTargets(t *testing.T) {
	assert.Equal(t, uint32(gl.TEXTURE_2D), textureTarget(driver.TextureTarget2D))
	assert.Equal(t, uint32(gl.TEXTURE_CUBE_MAP), textureTarget(driver.TextureTargetCubeMap))
	assert.Equal(t, uint32(gl.TEXTURE_2D_ARRAY), textureTarget(driver.TextureTarget2DArray))
	assert.Equal(t, uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X), textureTarget(driver.TextureTargetCubeMapPositiveX))
	assert.Equal(t, uint32(gl.TEXTURE_CUBE_MAP_NEGATIVE_Z), textureTarget(driver.TextureTargetCubeMapNegativeZ))
}

func TestTextureParameterValues(t *testing.T) {
	assert.Equal(t, int32(gl.LINEAR), textureParameterValue(driver.TextureParameterMinFilter, int32(driver.FilterLinear)))
	assert.Equal(t, int32(gl.NEAREST), textureParameterValue(driver.TextureParameterMagFilter, int32(driver.FilterNearest)))
	assert.Equal(t, int32(gl.LINEAR_MIPMAP_LINEAR), textureParameterValue(driver.TextureParameterMinFilter, int32(driver.FilterLinearMipmapLinear)))
	assert.Equal(t, int32(gl.CLAMP_TO_EDGE), textureParameterValue(driver.TextureParameterWrapS, int32(driver.WrapClampToEdge)))
	assert.Equal(t, int32(gl.MIRRORED_REPEAT), textureParameterValue(driver.TextureParameterWrapR, int32(driver.WrapMirroredRepeat)))
	assert.Equal(t, int32(gl.REPEAT), textureParameterValue(driver.TextureParameterWrapT, int32(driver.WrapRepeat)))
}

func TestScalarAndPrimitive(t *testing.T) {
	assert.Equal(t, uint32(gl.UNSIGNED_SHORT), scalarType(driver.ScalarUnsignedShort))
	assert.Equal(t, uint32(gl.FLOAT), scalarType(driver.ScalarFloat))
	assert.Equal(t, uint32(gl.UNSIGNED_BYTE), scalarType(driver.ScalarUnsignedByte))
	assert.Equal(t, uint32(gl.LINES), primitive(driver.PrimitiveLines))
	assert.Equal(t, uint32(gl.TRIANGLES), primitive(driver.PrimitiveTriangles))
	assert.Equal(t, uint32(gl.TRIANGLE_STRIP), primitive(driver.PrimitiveTriangleStrip))
}

func TestClearMask(t *testing.T) {
	assert.Equal(t, uint32(gl.COLOR_BUFFER_BIT), clearMask(driver.ClearColorBit))
	assert.Equal(t, uint32(gl.COLOR_BUFFER_BIT|gl.DEPTH_BUFFER_BIT), clearMask(driver.ClearColorBit|driver.ClearDepthBit))
	assert.Zero(t, clearMask(0))
}

func TestFramebufferStatus(t *testing.T) {
	assert.Equal(t, driver.FramebufferComplete, framebufferStatus(gl.FRAMEBUFFER_COMPLETE))
	assert.Equal(t, driver.FramebufferIncompleteMissingAttachment, framebufferStatus(gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT))
	assert.Equal(t, driver.FramebufferUndefined, framebufferStatus(0))
}

func TestUniformTypeSize(t *testing.T) {
	assert.Equal(t, 64, uniformTypeSize(gl.FLOAT_MAT4))
	assert.Equal(t, 8, uniformTypeSize(gl.FLOAT_VEC2))
	assert.Zero(t, uniformTypeSize(gl.SAMPLER_2D))
}

func TestLabelsWithoutContext(t *testing.T) {
	d := &Driver{labels: make(map[labelKey]string)}
	d.ObjectLabel(driver.LabelTexture, 3, "atlas")
	d.ObjectLabel(driver.LabelBuffer, 3, "vertices")

	l, ok := d.Label(driver.LabelTexture, 3)
	assert.True(t, ok)
	assert.Equal(t, "atlas", l)

	d.forget(driver.LabelTexture, 3)
	_, ok = d.Label(driver.LabelTexture, 3)
	assert.False(t, ok)

	l, _ = d.Label(driver.LabelBuffer, 3)
	assert.Equal(t, "vertices", l)
	assert.False(t, d.Limits().HasDebug)
}
