// Package drivertest provides an in-memory driver.Driver that records every call and mirrors the native binding state,
// so tests can count native binds and compare the render context cache against what the "GPU" actually has bound.
package drivertest

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// DefaultMaxTextureUnits is the texture unit count reported when Driver.MaxTextureUnits is zero.
const DefaultMaxTextureUnits = 16

// Buffer is the spy's view of a native buffer object.
type Buffer struct {
	Data  []byte
	Usage driver.BufferUsage
	Label string
}

// Texture is the spy's view of a native texture object.
type Texture struct {
	Target               driver.TextureTarget
	Width, Height, Depth int
	Pixels               []byte
	Faces                map[driver.TextureTarget][]byte
	Params               map[driver.TextureParameter]int32
	Mipmaps              int
	Label                string
}

// Program is the spy's view of a linked program.
type Program struct {
	VertexSource   string
	FragmentSource string
	Attributes     []driver.AttributeInfo
	Uniforms       []driver.UniformInfo
	Values         map[int32]any
}

// Framebuffer is the spy's view of a framebuffer object.
type Framebuffer struct {
	Color driver.Handle
	Depth driver.Handle
}

// AttribPointer records a VertexAttribPointer call.
type AttribPointer struct {
	Buffer     driver.Handle
	Size       int32
	Type       driver.ScalarType
	Normalized bool
	Stride     int32
	Offset     int
}

// Draw is a snapshot of native state taken at each draw call.
type Draw struct {
	Mode         driver.Primitive
	Start, End   uint32
	Count        int
	IndexType    driver.ScalarType
	Offset       int
	Program      driver.Handle
	Texture0     driver.Handle
	VertexBuffer driver.Handle
	IndexBuffer  driver.Handle
	Framebuffer  driver.Handle
	DepthTest    bool
	Vertices     []byte
	Indices      []byte
	Enabled      []uint32
}

// Driver is a recording stand-in for a native graphics context.
// The zero value is not usable; construct with New.
type Driver struct {
	mu *sync.Mutex

	// MaxTextureUnits overrides the texture unit count.
	MaxTextureUnits int
	// Attributes and Uniforms are reported by every program created after they are set.
	// Uniform locations are reassigned to their index in Uniforms.
	Attributes      []driver.AttributeInfo
	Uniforms        []driver.UniformInfo
	// CompileError, when set, makes CreateProgram fail with it.
	CompileError    error
	// Status is returned by CheckFramebufferStatus when the bound framebuffer has attachments.
	Status          driver.FramebufferStatus

	next  driver.Handle
	calls []string
	count map[string]int

	Buffers       map[driver.Handle]*Buffer
	Textures      map[driver.Handle]*Texture
	Programs      map[driver.Handle]*Program
	Framebuffers  map[driver.Handle]*Framebuffer
	Renderbuffers map[driver.Handle]driver.RenderbufferFormat
	VertexArrays  map[driver.Handle]bool

	BoundBuffers      map[driver.BufferTarget]driver.Handle
	ActiveUnit        int
	UnitTextures      []map[driver.TextureTarget]driver.Handle
	BoundFramebuffer  driver.Handle
	BoundRenderbuffer driver.Handle
	CurrentProgram    driver.Handle
	BoundVertexArray  driver.Handle
	EnabledAttribs    map[uint32]bool
	Pointers          map[uint32]AttribPointer
	Capabilities      map[driver.Capability]bool
	BlendSrc          driver.BlendFactor
	BlendDst          driver.BlendFactor
	ClearRGBA         [4]float32
	ViewportRect      [4]int
	Draws             []Draw
	Clears            []driver.ClearMask

	// DeletedWhileBound lists handles that were deleted while still bound natively.
	DeletedWhileBound []string
}

var _ driver.Driver = &Driver{}

// New returns an empty recording driver.
func New() *Driver {
	return &Driver{
		mu:             &sync.Mutex{},
		count:          make(map[string]int),
		Buffers:        make(map[driver.Handle]*Buffer),
		Textures:       make(map[driver.Handle]*Texture),
		Programs:       make(map[driver.Handle]*Program),
		Framebuffers:   make(map[driver.Handle]*Framebuffer),
		Renderbuffers:  make(map[driver.Handle]driver.RenderbufferFormat),
		VertexArrays:   make(map[driver.Handle]bool),
		BoundBuffers:   make(map[driver.BufferTarget]driver.Handle),
		EnabledAttribs: make(map[uint32]bool),
		Pointers:       make(map[uint32]AttribPointer),
		Capabilities:   make(map[driver.Capability]bool),
	}
}

func (d *Driver) record(name string) {
	d.calls = append(d.calls, name)
	d.count[name]++
}

func (d *Driver) gen() driver.Handle {
	d.next++
	return d.next
}

func (d *Driver) units() []map[driver.TextureTarget]driver.Handle {
	if d.UnitTextures == nil {
		n := d.Limits().MaxTextureImageUnits
		d.UnitTextures = make([]map[driver.TextureTarget]driver.Handle, n)
		for i := range d.UnitTextures {
			d.UnitTextures[i] = make(map[driver.TextureTarget]driver.Handle)
		}
	}
	return d.UnitTextures
}

// Count returns how many times the named method was called.
func (d *Driver) Count(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count[name]
}

// Calls returns the ordered list of method names called so far.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// Reset forgets recorded calls and draws but keeps native state.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
	d.count = make(map[string]int)
	d.Draws = nil
	d.Clears = nil
}

// TextureAt returns the handle natively bound to target on unit.
func (d *Driver) TextureAt(unit int, target driver.TextureTarget) driver.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.units()
	if unit < 0 || unit >= len(u) {
		return driver.Zero
	}
	return u[unit][target]
}

// UniformValue returns the last value written to the named uniform of a program.
func (d *Driver) UniformValue(program driver.Handle, name string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.Programs[program]
	if !ok {
		return nil, false
	}
	for _, u := range p.Uniforms {
		if u.Name == name {
			v, ok := p.Values[u.Location]
			return v, ok
		}
	}
	return nil, false
}

func (d *Driver) Limits() driver.Limits {
	n := d.MaxTextureUnits
	if n == 0 {
		n = DefaultMaxTextureUnits
	}
	return driver.Limits{MaxTextureImageUnits: n, HasDebug: true, Renderer: "drivertest"}
}

func (d *Driver) ObjectLabel(kind driver.LabelKind, h driver.Handle, label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ObjectLabel")
	switch kind {
	case driver.LabelBuffer:
		if b, ok := d.Buffers[h]; ok {
			b.Label = label
		}
	case driver.LabelTexture:
		if t, ok := d.Textures[h]; ok {
			t.Label = label
		}
	}
}

func (d *Driver) GenBuffer() driver.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GenBuffer")
	h := d.gen()
	d.Buffers[h] = &Buffer{}
	return h
}

func (d *Driver) DeleteBuffer(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteBuffer")
	for target, bound := range d.BoundBuffers {
		if bound == h {
			d.DeletedWhileBound = append(d.DeletedWhileBound, fmt.Sprintf("buffer %d on %s", h, target))
			d.BoundBuffers[target] = driver.Zero
		}
	}
	delete(d.Buffers, h)
}

func (d *Driver) BindBuffer(target driver.BufferTarget, h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindBuffer")
	d.BoundBuffers[target] = h
}

func (d *Driver) bound(target driver.BufferTarget) *Buffer {
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok {
		panic(fmt.Sprintf("drivertest: no buffer bound to %s", target))
	}
	return b
}

func (d *Driver) BufferData(target driver.BufferTarget, size int, data []byte, usage driver.BufferUsage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BufferData")
	b := d.bound(target)
	b.Data = make([]byte, size)
	copy(b.Data, data)
	b.Usage = usage
}

func (d *Driver) BufferSubData(target driver.BufferTarget, offset int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BufferSubData")
	b := d.bound(target)
	if offset < 0 || offset+len(data) > len(b.Data) {
		panic(fmt.Sprintf("drivertest: BufferSubData [%d, %d) out of bounds of %d bytes", offset, offset+len(data), len(b.Data)))
	}
	copy(b.Data[offset:], data)
}

func (d *Driver) GenTexture() driver.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GenTexture")
	h := d.gen()
	d.Textures[h] = &Texture{Params: make(map[driver.TextureParameter]int32), Faces: make(map[driver.TextureTarget][]byte)}
	return h
}

func (d *Driver) DeleteTexture(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteTexture")
	for unit, targets := range d.units() {
		for target, bound := range targets {
			if bound == h {
				d.DeletedWhileBound = append(d.DeletedWhileBound, fmt.Sprintf("texture %d on unit %d %s", h, unit, target))
				targets[target] = driver.Zero
			}
		}
	}
	delete(d.Textures, h)
}

func (d *Driver) ActiveTexture(unit int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ActiveTexture")
	if unit < 0 || unit >= len(d.units()) {
		panic(fmt.Sprintf("drivertest: texture unit %d out of range", unit))
	}
	d.ActiveUnit = unit
}

func (d *Driver) BindTexture(target driver.TextureTarget, h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindTexture")
	d.units()[d.ActiveUnit][target] = h
	if t, ok := d.Textures[h]; ok && h != driver.Zero {
		t.Target = target
	}
}

func (d *Driver) boundTexture(target driver.TextureTarget) *Texture {
	bindTarget := target
	if target.IsCubeFace() {
		bindTarget = driver.TextureTargetCubeMap
	}
	t, ok := d.Textures[d.units()[d.ActiveUnit][bindTarget]]
	if !ok {
		panic(fmt.Sprintf("drivertest: no texture bound to %s on unit %d", bindTarget, d.ActiveUnit))
	}
	return t
}

func (d *Driver) TexImage2D(target driver.TextureTarget, width, height int, pixels []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TexImage2D")
	t := d.boundTexture(target)
	t.Width, t.Height, t.Depth = width, height, 1
	data := make([]byte, width*height*4)
	copy(data, pixels)
	if target.IsCubeFace() {
		t.Faces[target] = data
		return
	}
	t.Pixels = data
}

func (d *Driver) TexImage2DFromBuffer(target driver.TextureTarget, width, height, offset int) {
	d.mu.Lock()
	b := d.bound(driver.BufferTargetPixelUnpack)
	src := b.Data[offset:]
	d.mu.Unlock()
	d.TexImage2D(target, width, height, src)
	d.mu.Lock()
	d.record("TexImage2DFromBuffer")
	d.mu.Unlock()
}

func (d *Driver) TexSubImage2D(target driver.TextureTarget, x, y, width, height int, pixels []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TexSubImage2D")
	t := d.boundTexture(target)
	dst := t.Pixels
	if target.IsCubeFace() {
		dst = t.Faces[target]
	}
	for row := 0; row < height; row++ {
		copy(dst[((y+row)*t.Width+x)*4:], pixels[row*width*4:(row+1)*width*4])
	}
}

func (d *Driver) TexImage3D(target driver.TextureTarget, width, height, depth int, pixels []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TexImage3D")
	t := d.boundTexture(target)
	t.Width, t.Height, t.Depth = width, height, depth
	t.Pixels = make([]byte, width*height*depth*4)
	copy(t.Pixels, pixels)
}

func (d *Driver) TexSubImage3D(target driver.TextureTarget, x, y, z, width, height, depth int, pixels []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TexSubImage3D")
	t := d.boundTexture(target)
	layer := t.Width * t.Height * 4
	for l := 0; l < depth; l++ {
		for row := 0; row < height; row++ {
			src := pixels[(l*height+row)*width*4 : (l*height+row+1)*width*4]
			copy(t.Pixels[(z+l)*layer+((y+row)*t.Width+x)*4:], src)
		}
	}
}

func (d *Driver) TexParameter(target driver.TextureTarget, param driver.TextureParameter, value int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TexParameter")
	d.boundTexture(target).Params[param] = value
}

func (d *Driver) GenerateMipmap(target driver.TextureTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GenerateMipmap")
	d.boundTexture(target).Mipmaps++
}

func (d *Driver) GetTexImage(target driver.TextureTarget, width, height int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GetTexImage")
	t := d.boundTexture(target)
	if t.Width != width || t.Height != height {
		return nil, fmt.Errorf("drivertest: texture is %dx%d, not %dx%d", t.Width, t.Height, width, height)
	}
	return slices.Clone(t.Pixels), nil
}

func (d *Driver) GenFramebuffer() driver.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GenFramebuffer")
	h := d.gen()
	d.Framebuffers[h] = &Framebuffer{}
	return h
}

func (d *Driver) DeleteFramebuffer(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteFramebuffer")
	if d.BoundFramebuffer == h {
		d.DeletedWhileBound = append(d.DeletedWhileBound, fmt.Sprintf("framebuffer %d", h))
		d.BoundFramebuffer = driver.Zero
	}
	delete(d.Framebuffers, h)
}

func (d *Driver) BindFramebuffer(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindFramebuffer")
	d.BoundFramebuffer = h
}

func (d *Driver) FramebufferTexture2D(attachment driver.Attachment, _ driver.TextureTarget, tex driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("FramebufferTexture2D")
	fb := d.Framebuffers[d.BoundFramebuffer]
	if attachment == driver.AttachmentDepth {
		fb.Depth = tex
		return
	}
	fb.Color = tex
}

func (d *Driver) FramebufferRenderbuffer(attachment driver.Attachment, rb driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("FramebufferRenderbuffer")
	fb := d.Framebuffers[d.BoundFramebuffer]
	if attachment == driver.AttachmentDepth {
		fb.Depth = rb
		return
	}
	fb.Color = rb
}

func (d *Driver) CheckFramebufferStatus() driver.FramebufferStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CheckFramebufferStatus")
	fb, ok := d.Framebuffers[d.BoundFramebuffer]
	if !ok {
		return driver.FramebufferUndefined
	}
	if fb.Color == driver.Zero && fb.Depth == driver.Zero {
		return driver.FramebufferIncompleteMissingAttachment
	}
	return d.Status
}

func (d *Driver) GenRenderbuffer() driver.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GenRenderbuffer")
	h := d.gen()
	d.Renderbuffers[h] = driver.RenderbufferDepth24
	return h
}

func (d *Driver) DeleteRenderbuffer(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteRenderbuffer")
	if d.BoundRenderbuffer == h {
		d.BoundRenderbuffer = driver.Zero
	}
	delete(d.Renderbuffers, h)
}

func (d *Driver) BindRenderbuffer(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindRenderbuffer")
	d.BoundRenderbuffer = h
}

func (d *Driver) RenderbufferStorage(format driver.RenderbufferFormat, _, _ int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("RenderbufferStorage")
	d.Renderbuffers[d.BoundRenderbuffer] = format
}

func (d *Driver) CreateProgram(vertexSource, fragmentSource string) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateProgram")
	if d.CompileError != nil {
		return driver.Zero, d.CompileError
	}
	h := d.gen()
	uniforms := slices.Clone(d.Uniforms)
	for i := range uniforms {
		uniforms[i].Location = int32(i)
	}
	d.Programs[h] = &Program{
		VertexSource:   vertexSource,
		FragmentSource: fragmentSource,
		Attributes:     slices.Clone(d.Attributes),
		Uniforms:       uniforms,
		Values:         make(map[int32]any),
	}
	return h, nil
}

func (d *Driver) DeleteProgram(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteProgram")
	if d.CurrentProgram == h {
		d.DeletedWhileBound = append(d.DeletedWhileBound, fmt.Sprintf("program %d", h))
		d.CurrentProgram = driver.Zero
	}
	delete(d.Programs, h)
}

func (d *Driver) UseProgram(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UseProgram")
	d.CurrentProgram = h
}

func (d *Driver) ActiveAttributes(program driver.Handle) []driver.AttributeInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ActiveAttributes")
	if p, ok := d.Programs[program]; ok {
		return slices.Clone(p.Attributes)
	}
	return nil
}

func (d *Driver) ActiveUniforms(program driver.Handle) []driver.UniformInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ActiveUniforms")
	if p, ok := d.Programs[program]; ok {
		return slices.Clone(p.Uniforms)
	}
	return nil
}

func (d *Driver) setUniform(name string, location int32, v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(name)
	p, ok := d.Programs[d.CurrentProgram]
	if !ok {
		panic(fmt.Sprintf("drivertest: %s with no program in use", name))
	}
	p.Values[location] = v
}

func (d *Driver) UniformMatrix4(location int32, m [16]float32) {
	d.setUniform("UniformMatrix4", location, m)
}

func (d *Driver) Uniform1i(location int32, v int32) {
	d.setUniform("Uniform1i", location, v)
}

func (d *Driver) Uniform1f(location int32, v float32) {
	d.setUniform("Uniform1f", location, v)
}

func (d *Driver) Uniform2f(location int32, x, y float32) {
	d.setUniform("Uniform2f", location, [2]float32{x, y})
}

func (d *Driver) Uniform3f(location int32, x, y, z float32) {
	d.setUniform("Uniform3f", location, [3]float32{x, y, z})
}

func (d *Driver) Uniform4f(location int32, x, y, z, w float32) {
	d.setUniform("Uniform4f", location, [4]float32{x, y, z, w})
}

func (d *Driver) GenVertexArray() driver.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GenVertexArray")
	h := d.gen()
	d.VertexArrays[h] = true
	return h
}

func (d *Driver) DeleteVertexArray(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteVertexArray")
	if d.BoundVertexArray == h {
		d.BoundVertexArray = driver.Zero
	}
	delete(d.VertexArrays, h)
}

func (d *Driver) BindVertexArray(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindVertexArray")
	d.BoundVertexArray = h
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("EnableVertexAttribArray")
	d.EnabledAttribs[index] = true
}

func (d *Driver) DisableVertexAttribArray(index uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DisableVertexAttribArray")
	d.EnabledAttribs[index] = false
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, typ driver.ScalarType, normalized bool, stride int32, offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("VertexAttribPointer")
	d.Pointers[index] = AttribPointer{
		Buffer:     d.BoundBuffers[driver.BufferTargetArray],
		Size:       size,
		Type:       typ,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
	}
}

func (d *Driver) snapshot(mode driver.Primitive, start, end uint32, count int, typ driver.ScalarType, offset int) Draw {
	draw := Draw{
		Mode:         mode,
		Start:        start,
		End:          end,
		Count:        count,
		IndexType:    typ,
		Offset:       offset,
		Program:      d.CurrentProgram,
		Texture0:     d.units()[0][driver.TextureTarget2D],
		VertexBuffer: d.BoundBuffers[driver.BufferTargetArray],
		IndexBuffer:  d.BoundBuffers[driver.BufferTargetElementArray],
		Framebuffer:  d.BoundFramebuffer,
		DepthTest:    d.Capabilities[driver.CapabilityDepthTest],
	}
	if vb, ok := d.Buffers[draw.VertexBuffer]; ok {
		draw.Vertices = slices.Clone(vb.Data)
	}
	if ib, ok := d.Buffers[draw.IndexBuffer]; ok {
		n := count * typ.Size()
		if offset+n <= len(ib.Data) {
			draw.Indices = slices.Clone(ib.Data[offset : offset+n])
		}
	}
	for _, index := range slices.Sorted(maps.Keys(d.EnabledAttribs)) {
		if d.EnabledAttribs[index] {
			draw.Enabled = append(draw.Enabled, index)
		}
	}
	return draw
}

func (d *Driver) DrawElements(mode driver.Primitive, count int, typ driver.ScalarType, offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DrawElements")
	d.Draws = append(d.Draws, d.snapshot(mode, 0, 0, count, typ, offset))
}

func (d *Driver) DrawRangeElements(mode driver.Primitive, start, end uint32, count int, typ driver.ScalarType, offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DrawRangeElements")
	d.Draws = append(d.Draws, d.snapshot(mode, start, end, count, typ, offset))
}

func (d *Driver) Enable(c driver.Capability) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Enable")
	d.Capabilities[c] = true
}

func (d *Driver) Disable(c driver.Capability) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Disable")
	d.Capabilities[c] = false
}

func (d *Driver) BlendFunc(src, dst driver.BlendFactor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BlendFunc")
	d.BlendSrc, d.BlendDst = src, dst
}

func (d *Driver) CullFace(driver.Face) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CullFace")
}

func (d *Driver) ClearColor(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ClearColor")
	d.ClearRGBA = [4]float32{r, g, b, a}
}

func (d *Driver) Clear(mask driver.ClearMask) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Clear")
	d.Clears = append(d.Clears, mask)
}

func (d *Driver) Viewport(x, y, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Viewport")
	d.ViewportRect = [4]int{x, y, width, height}
}
