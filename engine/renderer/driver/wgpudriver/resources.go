package wgpudriver

import (
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// textureKind indexes the per-unit binding slots.
type textureKind int

const (
	kind2D textureKind = iota
	kindCubeMap
	kind2DArray
	textureKinds
)

// kindOf maps a binding or upload target to its unit slot. Cube faces share the cube map slot.
func kindOf(t driver.TextureTarget) textureKind {
	switch {
	case t == driver.TextureTargetCubeMap || t.IsCubeFace():
		return kindCubeMap
	case t == driver.TextureTarget2DArray:
		return kind2DArray
	default:
		return kind2D
	}
}

// bufferObject is a buffer and its CPU copy. Pixel unpack buffers have no GPU storage.
type bufferObject struct {
	data  []byte
	size  int
	gpu   *wgpu.Buffer
	label string
}

func (b *bufferObject) release() {
	if b.gpu != nil {
		b.gpu.Release()
		b.gpu = nil
	}
}

// textureObject is an RGBA8 texture, its layers' pixels, and its sampling state.
type textureObject struct {
	kind          textureKind
	width, height int
	layers        int
	pixels        []byte

	gpu         *wgpu.Texture
	view        *wgpu.TextureView
	attachViews map[int]*wgpu.TextureView

	minFilter, magFilter driver.TextureFilter
	wrapS, wrapT, wrapR  driver.TextureWrap
	sampler              *wgpu.Sampler
}

func newTextureObject() *textureObject {
	return &textureObject{
		minFilter: driver.FilterNearestMipmapLinear,
		magFilter: driver.FilterLinear,
	}
}

func (t *textureObject) release() {
	for _, v := range t.attachViews {
		v.Release()
	}
	t.attachViews = nil
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.gpu != nil {
		t.gpu.Release()
		t.gpu = nil
	}
}

func (t *textureObject) layerSize() int {
	return t.width * t.height * 4
}

// renderbufferObject is depth storage for a framebuffer.
type renderbufferObject struct {
	format driver.RenderbufferFormat
	gpu    *wgpu.Texture
	view   *wgpu.TextureView
}

func (r *renderbufferObject) release() {
	if r.view != nil {
		r.view.Release()
		r.view = nil
	}
	if r.gpu != nil {
		r.gpu.Release()
		r.gpu = nil
	}
}

func (r *renderbufferObject) depthFormat() wgpu.TextureFormat {
	if r.format == driver.RenderbufferDepth24Stencil8 {
		return wgpu.TextureFormatDepth24PlusStencil8
	}
	return wgpu.TextureFormatDepth24Plus
}

// framebufferObject records attachments; the pass resolves them to views when it begins.
type framebufferObject struct {
	color       driver.Handle
	colorLayer  int
	depth       driver.Handle
	depthIsTex  bool
	colorTarget driver.TextureTarget
}

// attribute is one vertex attribute as described by VertexAttribPointer.
type attribute struct {
	enabled    bool
	size       int32
	typ        driver.ScalarType
	normalized bool
	stride     int32
	offset     int
	buffer     driver.Handle
}

// vertexArrayObject holds attribute descriptions and the element buffer binding.
type vertexArrayObject struct {
	attribs  map[uint32]*attribute
	elements driver.Handle
}

func newVertexArrayObject() *vertexArrayObject {
	return &vertexArrayObject{attribs: make(map[uint32]*attribute)}
}

func (v *vertexArrayObject) attrib(index uint32) *attribute {
	a, ok := v.attribs[index]
	if !ok {
		a = &attribute{}
		v.attribs[index] = a
	}
	return a
}

func (d *Driver) currentVertexArray() *vertexArrayObject {
	if vao, ok := d.vertexArrays[d.vertexArray]; ok {
		return vao
	}
	return d.defaultVAO
}

// boundBuffer returns the buffer handle bound to target.
func (d *Driver) boundBuffer(target driver.BufferTarget) driver.Handle {
	switch target {
	case driver.BufferTargetElementArray:
		return d.currentVertexArray().elements
	case driver.BufferTargetPixelUnpack:
		return d.unpackBuffer
	default:
		return d.arrayBuffer
	}
}

func (d *Driver) GenBuffer() driver.Handle {
	h := d.alloc()
	d.buffers[h] = &bufferObject{}
	return h
}

func (d *Driver) DeleteBuffer(h driver.Handle) {
	b, ok := d.buffers[h]
	if !ok {
		return
	}
	d.beforeWrite(usedBuffer, h)
	b.release()
	delete(d.buffers, h)
	delete(d.labels, labelKey{driver.LabelBuffer, h})
}

func (d *Driver) BindBuffer(target driver.BufferTarget, h driver.Handle) {
	switch target {
	case driver.BufferTargetElementArray:
		d.currentVertexArray().elements = h
	case driver.BufferTargetPixelUnpack:
		d.unpackBuffer = h
	default:
		d.arrayBuffer = h
	}
}

func (d *Driver) BufferData(target driver.BufferTarget, size int, data []byte, _ driver.BufferUsage) {
	h := d.boundBuffer(target)
	b, ok := d.buffers[h]
	if !ok {
		return
	}
	d.beforeWrite(usedBuffer, h)

	b.size = size
	b.data = make([]byte, max(align4(size), 4))
	copy(b.data, data)

	if target == driver.BufferTargetPixelUnpack {
		b.release()
		return
	}
	if b.gpu == nil || b.gpu.GetSize() != uint64(len(b.data)) {
		b.release()
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: d.label(driver.LabelBuffer, h, "buffer"),
			Size:  uint64(len(b.data)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			d.logger.Error("create buffer failed", "error", err)
			return
		}
		b.gpu = buf
	}
	if len(data) > 0 {
		d.queue.WriteBuffer(b.gpu, 0, b.data)
	}
}

func (d *Driver) BufferSubData(target driver.BufferTarget, offset int, data []byte) {
	h := d.boundBuffer(target)
	b, ok := d.buffers[h]
	if !ok || offset < 0 || offset >= b.size || len(data) == 0 {
		return
	}
	d.beforeWrite(usedBuffer, h)

	n := copy(b.data[offset:b.size], data)
	if b.gpu == nil {
		return
	}
	// Queue writes must be 4 byte aligned; widen the window using the CPU copy.
	start := offset &^ 3
	end := min(align4(offset+n), len(b.data))
	d.queue.WriteBuffer(b.gpu, uint64(start), b.data[start:end])
}

func (d *Driver) GenTexture() driver.Handle {
	h := d.alloc()
	d.textures[h] = newTextureObject()
	return h
}

func (d *Driver) DeleteTexture(h driver.Handle) {
	t, ok := d.textures[h]
	if !ok {
		return
	}
	d.beforeWrite(usedTexture, h)
	t.release()
	delete(d.textures, h)
	delete(d.labels, labelKey{driver.LabelTexture, h})
}

func (d *Driver) ActiveTexture(unit int) {
	d.activeUnit = unit
}

func (d *Driver) BindTexture(target driver.TextureTarget, h driver.Handle) {
	if d.activeUnit < 0 || d.activeUnit >= len(d.units) {
		return
	}
	d.units[d.activeUnit][kindOf(target)] = h
}

// boundTexture returns the texture bound on the active unit for an upload target.
func (d *Driver) boundTexture(target driver.TextureTarget) (driver.Handle, *textureObject) {
	if d.activeUnit < 0 || d.activeUnit >= len(d.units) {
		return driver.Zero, nil
	}
	h := d.units[d.activeUnit][kindOf(target)]
	return h, d.textures[h]
}

// layerOf returns the array layer an upload target writes.
func layerOf(target driver.TextureTarget) int {
	if target.IsCubeFace() {
		return target.CubeFaceIndex()
	}
	return 0
}

// allocateTexture (re)creates GPU storage when the kind or dimensions change.
func (d *Driver) allocateTexture(h driver.Handle, t *textureObject, kind textureKind, width, height, layers int) error {
	if t.gpu != nil && t.kind == kind && t.width == width && t.height == height && t.layers == layers {
		return nil
	}
	t.release()
	t.kind, t.width, t.height, t.layers = kind, width, height, layers
	t.pixels = make([]byte, width*height*4*layers)
	if width == 0 || height == 0 {
		return nil
	}

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         d.label(driver.LabelTexture, h, "texture"),
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: uint32(layers)},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc | wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return errors.Wrapf(ErrDevice, "create texture: %v", err)
	}

	dim := wgpu.TextureViewDimension2D
	switch kind {
	case kindCubeMap:
		dim = wgpu.TextureViewDimensionCube
	case kind2DArray:
		dim = wgpu.TextureViewDimension2DArray
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormatRGBA8Unorm,
		Dimension:       dim,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(layers),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return errors.Wrapf(ErrDevice, "create texture view: %v", err)
	}
	t.gpu, t.view = tex, view
	return nil
}

// writeTexture uploads a region of one or more layers and mirrors it into the CPU copy.
func (d *Driver) writeTexture(t *textureObject, x, y, z, width, height, depth int, pixels []byte) {
	if width <= 0 || height <= 0 || depth <= 0 || len(pixels) < width*height*depth*4 {
		return
	}
	row := width * 4
	for layer := range depth {
		for r := range height {
			src := pixels[(layer*height+r)*row:][:row]
			dst := (z+layer)*t.layerSize() + ((y+r)*t.width+x)*4
			copy(t.pixels[dst:dst+row], src)
		}
	}
	if t.gpu == nil {
		return
	}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.gpu,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(z)},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels[:width*height*depth*4],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(row),
			RowsPerImage: uint32(height),
		},
		&wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: uint32(depth)},
	)
}

func (d *Driver) TexImage2D(target driver.TextureTarget, width, height int, pixels []byte) {
	h, t := d.boundTexture(target)
	if t == nil {
		return
	}
	d.beforeWrite(usedTexture, h)

	layers := 1
	if target.IsCubeFace() {
		layers = 6
	}
	if err := d.allocateTexture(h, t, kindOf(target), width, height, layers); err != nil {
		d.logger.Error("allocate texture failed", "error", err)
		return
	}
	if len(pixels) > 0 {
		d.writeTexture(t, 0, 0, layerOf(target), width, height, 1, pixels)
	}
}

func (d *Driver) TexImage2DFromBuffer(target driver.TextureTarget, width, height, offset int) {
	b, ok := d.buffers[d.unpackBuffer]
	if !ok || offset < 0 || offset+width*height*4 > b.size {
		return
	}
	d.TexImage2D(target, width, height, b.data[offset:offset+width*height*4])
}

func (d *Driver) TexSubImage2D(target driver.TextureTarget, x, y, width, height int, pixels []byte) {
	h, t := d.boundTexture(target)
	if t == nil || x < 0 || y < 0 || x+width > t.width || y+height > t.height {
		return
	}
	d.beforeWrite(usedTexture, h)
	d.writeTexture(t, x, y, layerOf(target), width, height, 1, pixels)
}

func (d *Driver) TexImage3D(target driver.TextureTarget, width, height, depth int, pixels []byte) {
	h, t := d.boundTexture(target)
	if t == nil {
		return
	}
	d.beforeWrite(usedTexture, h)
	if err := d.allocateTexture(h, t, kind2DArray, width, height, depth); err != nil {
		d.logger.Error("allocate texture failed", "error", err)
		return
	}
	if len(pixels) > 0 {
		d.writeTexture(t, 0, 0, 0, width, height, depth, pixels)
	}
}

func (d *Driver) TexSubImage3D(target driver.TextureTarget, x, y, z, width, height, depth int, pixels []byte) {
	h, t := d.boundTexture(target)
	if t == nil || x < 0 || y < 0 || z < 0 || x+width > t.width || y+height > t.height || z+depth > t.layers {
		return
	}
	d.beforeWrite(usedTexture, h)
	d.writeTexture(t, x, y, z, width, height, depth, pixels)
}

func (d *Driver) TexParameter(target driver.TextureTarget, param driver.TextureParameter, value int32) {
	_, t := d.boundTexture(target)
	if t == nil {
		return
	}
	switch param {
	case driver.TextureParameterMinFilter:
		t.minFilter = driver.TextureFilter(value)
	case driver.TextureParameterMagFilter:
		t.magFilter = driver.TextureFilter(value)
	case driver.TextureParameterWrapS:
		t.wrapS = driver.TextureWrap(value)
	case driver.TextureParameterWrapT:
		t.wrapT = driver.TextureWrap(value)
	case driver.TextureParameterWrapR:
		t.wrapR = driver.TextureWrap(value)
	}
	// Bind groups of the open pass keep their own reference, so the old sampler can go now.
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
}

// GenerateMipmap is accepted for compatibility. Textures carry a single level, so sampling uses level 0.
func (d *Driver) GenerateMipmap(driver.TextureTarget) {}

func (d *Driver) GetTexImage(target driver.TextureTarget, width, height int) ([]byte, error) {
	_, t := d.boundTexture(target)
	if t == nil {
		return nil, errors.Wrap(ErrDevice, "no texture bound")
	}
	if width != t.width || height != t.height {
		return nil, errors.Wrapf(ErrDevice, "read back %dx%d of a %dx%d texture", width, height, t.width, t.height)
	}
	if target.IsCubeFace() {
		start := layerOf(target) * t.layerSize()
		return append([]byte(nil), t.pixels[start:start+t.layerSize()]...), nil
	}
	return append([]byte(nil), t.pixels...), nil
}

// sampler returns the texture's sampler, creating it from the current parameters.
func (d *Driver) sampler(t *textureObject) (*wgpu.Sampler, error) {
	if t.sampler != nil {
		return t.sampler, nil
	}
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  addressMode(t.wrapS),
		AddressModeV:  addressMode(t.wrapT),
		AddressModeW:  addressMode(t.wrapR),
		MagFilter:     filterMode(t.magFilter),
		MinFilter:     filterMode(t.minFilter),
		MipmapFilter:  mipmapFilterMode(t.minFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "create sampler: %v", err)
	}
	t.sampler = s
	return s, nil
}

// newPlaceholder creates the opaque white texture sampled by texture bindings with nothing bound.
func (d *Driver) newPlaceholder() (*textureObject, error) {
	t := newTextureObject()
	if err := d.allocateTexture(driver.Zero, t, kind2D, 1, 1, 1); err != nil {
		return nil, err
	}
	d.writeTexture(t, 0, 0, 0, 1, 1, 1, []byte{255, 255, 255, 255})
	return t, nil
}

func (d *Driver) GenFramebuffer() driver.Handle {
	h := d.alloc()
	d.framebuffers[h] = &framebufferObject{}
	return h
}

func (d *Driver) DeleteFramebuffer(h driver.Handle) {
	if d.framebuffer == h {
		d.BindFramebuffer(driver.Zero)
	}
	delete(d.framebuffers, h)
	delete(d.labels, labelKey{driver.LabelFramebuffer, h})
}

// BindFramebuffer switches the render target. Pending clears apply to the target being left.
func (d *Driver) BindFramebuffer(h driver.Handle) {
	if h == d.framebuffer {
		return
	}
	if d.pendingClear != 0 {
		d.beginPass()
	}
	d.flushPass()
	d.framebuffer = h
}

func (d *Driver) FramebufferTexture2D(a driver.Attachment, target driver.TextureTarget, tex driver.Handle) {
	fb, ok := d.framebuffers[d.framebuffer]
	if !ok {
		return
	}
	if a == driver.AttachmentDepth {
		fb.depth, fb.depthIsTex = tex, true
		return
	}
	fb.color, fb.colorTarget, fb.colorLayer = tex, target, layerOf(target)
}

func (d *Driver) FramebufferRenderbuffer(a driver.Attachment, rb driver.Handle) {
	fb, ok := d.framebuffers[d.framebuffer]
	if !ok || a != driver.AttachmentDepth {
		return
	}
	fb.depth, fb.depthIsTex = rb, false
}

func (d *Driver) CheckFramebufferStatus() driver.FramebufferStatus {
	fb, ok := d.framebuffers[d.framebuffer]
	if !ok {
		if d.framebuffer == driver.Zero {
			return driver.FramebufferComplete
		}
		return driver.FramebufferUndefined
	}
	if fb.color == driver.Zero && fb.depth == driver.Zero {
		return driver.FramebufferIncompleteMissingAttachment
	}
	if fb.color != driver.Zero {
		t, ok := d.textures[fb.color]
		if !ok || t.gpu == nil {
			return driver.FramebufferIncompleteAttachment
		}
	}
	if fb.depth != driver.Zero && !fb.depthIsTex {
		rb, ok := d.renderbuffers[fb.depth]
		if !ok || rb.gpu == nil {
			return driver.FramebufferIncompleteAttachment
		}
	}
	if fb.depthIsTex {
		// Color textures are RGBA8 and cannot serve as depth attachments.
		return driver.FramebufferUnsupported
	}
	return driver.FramebufferComplete
}

func (d *Driver) GenRenderbuffer() driver.Handle {
	h := d.alloc()
	d.renderbuffers[h] = &renderbufferObject{}
	return h
}

func (d *Driver) DeleteRenderbuffer(h driver.Handle) {
	rb, ok := d.renderbuffers[h]
	if !ok {
		return
	}
	rb.release()
	delete(d.renderbuffers, h)
	delete(d.labels, labelKey{driver.LabelRenderbuffer, h})
}

func (d *Driver) BindRenderbuffer(h driver.Handle) {
	d.renderbuffer = h
}

func (d *Driver) RenderbufferStorage(format driver.RenderbufferFormat, width, height int) {
	rb, ok := d.renderbuffers[d.renderbuffer]
	if !ok {
		return
	}
	rb.release()
	rb.format = format
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         d.label(driver.LabelRenderbuffer, d.renderbuffer, "renderbuffer"),
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        rb.depthFormat(),
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.logger.Error("create renderbuffer failed", "error", err)
		return
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		d.logger.Error("create renderbuffer view failed", "error", err)
		return
	}
	rb.gpu, rb.view = tex, view
}

func (d *Driver) GenVertexArray() driver.Handle {
	h := d.alloc()
	d.vertexArrays[h] = newVertexArrayObject()
	return h
}

func (d *Driver) DeleteVertexArray(h driver.Handle) {
	if d.vertexArray == h {
		d.vertexArray = driver.Zero
	}
	delete(d.vertexArrays, h)
	delete(d.labels, labelKey{driver.LabelVertexArray, h})
}

func (d *Driver) BindVertexArray(h driver.Handle) {
	d.vertexArray = h
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	d.currentVertexArray().attrib(index).enabled = true
}

func (d *Driver) DisableVertexAttribArray(index uint32) {
	d.currentVertexArray().attrib(index).enabled = false
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, typ driver.ScalarType, normalized bool, stride int32, offset int) {
	a := d.currentVertexArray().attrib(index)
	a.size, a.typ, a.normalized, a.stride, a.offset = size, typ, normalized, stride, offset
	a.buffer = d.arrayBuffer
}
