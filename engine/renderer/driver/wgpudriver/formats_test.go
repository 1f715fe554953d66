package wgpudriver

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// newStateDriver returns a driver with bookkeeping only. Calls that reach the device panic.
func newStateDriver() *Driver {
	return &Driver{
		logger:        common.NopLogger(),
		labels:        make(map[labelKey]string),
		buffers:       make(map[driver.Handle]*bufferObject),
		textures:      make(map[driver.Handle]*textureObject),
		framebuffers:  make(map[driver.Handle]*framebufferObject),
		renderbuffers: make(map[driver.Handle]*renderbufferObject),
		programs:      make(map[driver.Handle]*programObject),
		vertexArrays:  make(map[driver.Handle]*vertexArrayObject),
		defaultVAO:    newVertexArrayObject(),
		units:         make([][textureKinds]driver.Handle, 4),
	}
}

func TestVertexFormat(t *testing.T) {
	f, ok := vertexFormat(driver.ScalarFloat, 3, false)
	assert.True(t, ok)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, f)

	f, ok = vertexFormat(driver.ScalarUnsignedByte, 4, true)
	assert.True(t, ok)
	assert.Equal(t, wgpu.VertexFormatUnorm8x4, f)

	_, ok = vertexFormat(driver.ScalarUnsignedByte, 3, true)
	assert.False(t, ok, "three byte attributes have no wgpu format")
}

func TestFixedFunctionMappings(t *testing.T) {
	assert.Equal(t, wgpu.IndexFormatUint16, indexFormat(driver.ScalarUnsignedShort))
	assert.Equal(t, wgpu.IndexFormatUint32, indexFormat(driver.ScalarUnsignedInt))

	assert.Equal(t, wgpu.PrimitiveTopologyLineList, topology(driver.PrimitiveLines))
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, topology(driver.PrimitiveTriangles))
	assert.True(t, isStrip(driver.PrimitiveTriangleStrip))
	assert.False(t, isStrip(driver.PrimitiveTriangles))

	assert.Equal(t, wgpu.BlendFactorSrcAlpha, blendFactor(driver.BlendSrcAlpha))
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, blendFactor(driver.BlendOneMinusSrcAlpha))
	assert.Equal(t, wgpu.BlendFactorOne, blendFactor(driver.BlendOne))

	assert.Equal(t, wgpu.CullModeNone, cullMode(false, driver.FaceBack))
	assert.Equal(t, wgpu.CullModeBack, cullMode(true, driver.FaceBack))
	assert.Equal(t, wgpu.CullModeFront, cullMode(true, driver.FaceFront))

	assert.Equal(t, wgpu.FilterModeNearest, filterMode(driver.FilterNearest))
	assert.Equal(t, wgpu.FilterModeLinear, filterMode(driver.FilterLinearMipmapNearest))
	assert.Equal(t, wgpu.MipmapFilterModeLinear, mipmapFilterMode(driver.FilterNearestMipmapLinear))
	assert.Equal(t, wgpu.MipmapFilterModeNearest, mipmapFilterMode(driver.FilterLinear))

	assert.Equal(t, wgpu.AddressModeClampToEdge, addressMode(driver.WrapClampToEdge))
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, addressMode(driver.WrapMirroredRepeat))
	assert.Equal(t, wgpu.AddressModeRepeat, addressMode(driver.WrapRepeat))
}

func TestAlign4AndClamp(t *testing.T) {
	assert.Equal(t, 0, align4(0))
	assert.Equal(t, 4, align4(1))
	assert.Equal(t, 8, align4(8))
	assert.Equal(t, 0, clamp(-3, 0, 10))
	assert.Equal(t, 10, clamp(13, 0, 10))
	assert.Equal(t, 5, clamp(5, 0, 10))
}

func TestTextureKinds(t *testing.T) {
	assert.Equal(t, kind2D, kindOf(driver.TextureTarget2D))
	assert.Equal(t, kindCubeMap, kindOf(driver.TextureTargetCubeMap))
	assert.Equal(t, kindCubeMap, kindOf(driver.TextureTargetCubeMapNegativeY))
	assert.Equal(t, kind2DArray, kindOf(driver.TextureTarget2DArray))

	assert.Equal(t, 0, layerOf(driver.TextureTarget2D))
	assert.Equal(t, 0, layerOf(driver.TextureTargetCubeMapPositiveX))
	assert.Equal(t, 5, layerOf(driver.TextureTargetCubeMapNegativeZ))
}

func TestUniformArenaOffsets(t *testing.T) {
	a := uniformArena{data: make([]byte, 1024), align: 256}
	block := []byte{1, 2, 3, 4, 5}

	require.True(t, a.fits(len(block)))
	assert.Equal(t, uint32(0), a.push(block))
	assert.Equal(t, uint32(256), a.push(block))
	assert.Equal(t, uint32(512), a.push(block))
	assert.Equal(t, uint32(768), a.push(block))
	assert.False(t, a.fits(len(block)))
	assert.Equal(t, block, a.data[768:773])
}

func TestUniformSetters(t *testing.T) {
	d := newStateDriver()
	d.programs[7] = &programObject{
		refl: reflection{
			uniforms: []uniformField{
				{name: "transform", offset: 0, size: 64},
				{name: "tint", offset: 64, size: 16},
				{name: "frame", offset: 80, size: 4},
			},
			blockSize: 96,
			textures:  []textureBinding{{name: "atlas", binding: 0, samplerBinding: 1}},
		},
		uniformData: make([]byte, 96),
		units:       make([]int32, 1),
	}
	d.UseProgram(7)

	infos := d.ActiveUniforms(7)
	require.Len(t, infos, 4)
	assert.Equal(t, driver.UniformInfo{Name: "tint", Location: 1, Size: 16}, infos[1])
	assert.Equal(t, driver.UniformInfo{Name: "atlas", Location: textureLocationBase}, infos[3])

	d.Uniform4f(1, 0.5, 1, 0, 1)
	data := d.programs[7].uniformData
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(data[64:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[68:])))

	var m [16]float32
	m[15] = 2
	d.UniformMatrix4(0, m)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(data[60:])))

	d.Uniform1i(2, -3)
	assert.Equal(t, int32(-3), int32(binary.LittleEndian.Uint32(data[80:])))

	d.Uniform1i(textureLocationBase, 2)
	assert.Equal(t, int32(2), d.programs[7].units[0])

	// Writes wider than the member and unknown locations are ignored.
	d.UniformMatrix4(1, [16]float32{9})
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(data[64:])))
	d.Uniform1f(40, 1)
	d.Uniform1i(textureLocationBase+5, 1)
}

func TestVertexSlotsGroupByBuffer(t *testing.T) {
	d := newStateDriver()
	vertices := d.GenBuffer()
	colors := d.GenBuffer()
	vao := d.GenVertexArray()
	d.BindVertexArray(vao)

	d.BindBuffer(driver.BufferTargetArray, vertices)
	d.EnableVertexAttribArray(0)
	d.VertexAttribPointer(0, 2, driver.ScalarFloat, false, 16, 64)
	d.EnableVertexAttribArray(1)
	d.VertexAttribPointer(1, 2, driver.ScalarFloat, false, 16, 72)
	d.BindBuffer(driver.BufferTargetArray, colors)
	d.EnableVertexAttribArray(2)
	d.VertexAttribPointer(2, 4, driver.ScalarUnsignedByte, true, 0, 0)

	p := &programObject{refl: reflection{attributes: []driver.AttributeInfo{
		{Name: "color", Location: 2},
		{Name: "position", Location: 0},
		{Name: "uv", Location: 1},
	}}}

	slots, key, err := d.vertexSlots(p, d.currentVertexArray())
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, vertices, slots[0].buffer)
	assert.Equal(t, 64, slots[0].base)
	assert.Equal(t, uint64(16), slots[0].layout.ArrayStride)
	require.Len(t, slots[0].layout.Attributes, 2)
	assert.Equal(t, uint64(0), slots[0].layout.Attributes[0].Offset)
	assert.Equal(t, uint64(8), slots[0].layout.Attributes[1].Offset)

	assert.Equal(t, colors, slots[1].buffer)
	assert.Equal(t, uint64(4), slots[1].layout.ArrayStride, "a zero stride means tightly packed")
	assert.Equal(t, wgpu.VertexFormatUnorm8x4, slots[1].layout.Attributes[0].Format)

	_, again, err := d.vertexSlots(p, d.currentVertexArray())
	require.NoError(t, err)
	assert.Equal(t, key, again)

	d.DisableVertexAttribArray(1)
	_, _, err = d.vertexSlots(p, d.currentVertexArray())
	assert.Error(t, err)
}

func TestElementBindingFollowsVertexArray(t *testing.T) {
	d := newStateDriver()
	indices := d.GenBuffer()
	a, b := d.GenVertexArray(), d.GenVertexArray()

	d.BindVertexArray(a)
	d.BindBuffer(driver.BufferTargetElementArray, indices)
	d.BindVertexArray(b)
	assert.Equal(t, driver.Zero, d.boundBuffer(driver.BufferTargetElementArray))
	d.BindVertexArray(a)
	assert.Equal(t, indices, d.boundBuffer(driver.BufferTargetElementArray))

	d.DeleteVertexArray(a)
	assert.Equal(t, driver.Zero, d.boundBuffer(driver.BufferTargetElementArray))
}

func TestFramebufferStatusWithoutAttachments(t *testing.T) {
	d := newStateDriver()
	assert.Equal(t, driver.FramebufferComplete, d.CheckFramebufferStatus())

	fb := d.GenFramebuffer()
	d.framebuffer = fb
	assert.Equal(t, driver.FramebufferIncompleteMissingAttachment, d.CheckFramebufferStatus())

	tex := d.GenTexture()
	d.FramebufferTexture2D(driver.AttachmentColor0, driver.TextureTarget2D, tex)
	assert.Equal(t, driver.FramebufferIncompleteAttachment, d.CheckFramebufferStatus(), "texture has no storage")
}

func TestGetTexImageFromShadowCopy(t *testing.T) {
	d := newStateDriver()
	h := d.GenTexture()
	d.ActiveTexture(1)
	d.BindTexture(driver.TextureTargetCubeMap, h)

	tex := d.textures[h]
	tex.kind, tex.width, tex.height, tex.layers = kindCubeMap, 1, 1, 6
	tex.pixels = make([]byte, 6*4)
	d.writeTexture(tex, 0, 0, 3, 1, 1, 1, []byte{10, 20, 30, 40})

	px, err := d.GetTexImage(driver.TextureTargetCubeMapNegativeY, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 40}, px)

	_, err = d.GetTexImage(driver.TextureTargetCubeMapNegativeY, 2, 2)
	assert.ErrorIs(t, err, ErrDevice)

	d.ActiveTexture(0)
	_, err = d.GetTexImage(driver.TextureTarget2D, 1, 1)
	assert.ErrorIs(t, err, ErrDevice)
}
