package wgpudriver

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// vertexFormatKey is a GL-style attribute description.
type vertexFormatKey struct {
	typ        driver.ScalarType
	size       int32
	normalized bool
}

var vertexFormats = map[vertexFormatKey]wgpu.VertexFormat{
	{driver.ScalarFloat, 1, false}:        wgpu.VertexFormatFloat32,
	{driver.ScalarFloat, 2, false}:        wgpu.VertexFormatFloat32x2,
	{driver.ScalarFloat, 3, false}:        wgpu.VertexFormatFloat32x3,
	{driver.ScalarFloat, 4, false}:        wgpu.VertexFormatFloat32x4,
	{driver.ScalarUnsignedByte, 2, true}:  wgpu.VertexFormatUnorm8x2,
	{driver.ScalarUnsignedByte, 4, true}:  wgpu.VertexFormatUnorm8x4,
	{driver.ScalarUnsignedByte, 2, false}: wgpu.VertexFormatUint8x2,
	{driver.ScalarUnsignedByte, 4, false}: wgpu.VertexFormatUint8x4,
	{driver.ScalarByte, 4, true}:          wgpu.VertexFormatSnorm8x4,
	{driver.ScalarByte, 4, false}:         wgpu.VertexFormatSint8x4,
	{driver.ScalarUnsignedShort, 2, true}: wgpu.VertexFormatUnorm16x2,
	{driver.ScalarUnsignedShort, 4, true}: wgpu.VertexFormatUnorm16x4,
	{driver.ScalarShort, 2, false}:        wgpu.VertexFormatSint16x2,
	{driver.ScalarShort, 4, false}:        wgpu.VertexFormatSint16x4,
	{driver.ScalarInt, 1, false}:          wgpu.VertexFormatSint32,
	{driver.ScalarInt, 2, false}:          wgpu.VertexFormatSint32x2,
	{driver.ScalarInt, 4, false}:          wgpu.VertexFormatSint32x4,
	{driver.ScalarUnsignedInt, 1, false}:  wgpu.VertexFormatUint32,
	{driver.ScalarUnsignedInt, 2, false}:  wgpu.VertexFormatUint32x2,
	{driver.ScalarUnsignedInt, 4, false}:  wgpu.VertexFormatUint32x4,
}

// vertexFormat maps an attribute description to a wgpu vertex format.
// Combinations wgpu cannot express report false.
func vertexFormat(typ driver.ScalarType, size int32, normalized bool) (wgpu.VertexFormat, bool) {
	f, ok := vertexFormats[vertexFormatKey{typ, size, normalized}]
	return f, ok
}

func indexFormat(typ driver.ScalarType) wgpu.IndexFormat {
	if typ == driver.ScalarUnsignedInt {
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUint16
}

func topology(p driver.Primitive) wgpu.PrimitiveTopology {
	switch p {
	case driver.PrimitivePoints:
		return wgpu.PrimitiveTopologyPointList
	case driver.PrimitiveLines:
		return wgpu.PrimitiveTopologyLineList
	case driver.PrimitiveLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case driver.PrimitiveTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

// isStrip reports whether the topology needs a strip index format on the pipeline.
func isStrip(p driver.Primitive) bool {
	return p == driver.PrimitiveLineStrip || p == driver.PrimitiveTriangleStrip
}

func blendFactor(f driver.BlendFactor) wgpu.BlendFactor {
	switch f {
	case driver.BlendZero:
		return wgpu.BlendFactorZero
	case driver.BlendSrcColor:
		return wgpu.BlendFactorSrc
	case driver.BlendOneMinusSrcColor:
		return wgpu.BlendFactorOneMinusSrc
	case driver.BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case driver.BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case driver.BlendDstColor:
		return wgpu.BlendFactorDst
	case driver.BlendOneMinusDstColor:
		return wgpu.BlendFactorOneMinusDst
	case driver.BlendDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case driver.BlendOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	default:
		return wgpu.BlendFactorOne
	}
}

func cullMode(enabled bool, f driver.Face) wgpu.CullMode {
	switch {
	case !enabled:
		return wgpu.CullModeNone
	case f == driver.FaceFront:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeBack
	}
}

func filterMode(f driver.TextureFilter) wgpu.FilterMode {
	switch f {
	case driver.FilterLinear, driver.FilterLinearMipmapNearest, driver.FilterLinearMipmapLinear:
		return wgpu.FilterModeLinear
	default:
		return wgpu.FilterModeNearest
	}
}

// mipmapFilterMode returns the mip filter of a minification filter. Textures carry a single level,
// so the choice only matters once mip chains are uploaded.
func mipmapFilterMode(f driver.TextureFilter) wgpu.MipmapFilterMode {
	switch f {
	case driver.FilterNearestMipmapLinear, driver.FilterLinearMipmapLinear:
		return wgpu.MipmapFilterModeLinear
	default:
		return wgpu.MipmapFilterModeNearest
	}
}

func addressMode(w driver.TextureWrap) wgpu.AddressMode {
	switch w {
	case driver.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case driver.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

// align4 rounds n up to a multiple of 4, the copy granularity of queue writes.
func align4(n int) int {
	return (n + 3) &^ 3
}
