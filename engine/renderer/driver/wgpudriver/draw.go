package wgpudriver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// usedKind tells apart buffer and texture handles recorded by the open pass.
type usedKind int

const (
	usedBuffer usedKind = iota
	usedTexture
)

type usedKey struct {
	kind   usedKind
	handle driver.Handle
}

// frameState is the command recording in progress.
type frameState struct {
	surfaceTexture *wgpu.Texture
	surfaceView    *wgpu.TextureView

	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder

	targetWidth, targetHeight int
	colorFormat               wgpu.TextureFormat
	depthFormat               wgpu.TextureFormat

	used          map[usedKey]struct{}
	uniformGroups map[driver.Handle]*wgpu.BindGroup
	bindGroups    []*wgpu.BindGroup
}

// uniformArena packs the uniform blocks of every draw in a submission into one buffer addressed by dynamic offsets.
type uniformArena struct {
	gpu   *wgpu.Buffer
	data  []byte
	used  int
	align int
}

func (a *uniformArena) init(device *wgpu.Device, align int) error {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "uniform arena",
		Size:  arenaSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return errors.Wrapf(ErrDevice, "create uniform arena: %v", err)
	}
	a.gpu = buf
	a.data = make([]byte, arenaSize)
	a.align = max(align, 4)
	return nil
}

func (a *uniformArena) offset() int {
	return (a.used + a.align - 1) / a.align * a.align
}

func (a *uniformArena) fits(n int) bool {
	return a.offset()+n <= len(a.data)
}

// push copies block into the arena and returns its offset. The caller checks fits first.
func (a *uniformArena) push(block []byte) uint32 {
	off := a.offset()
	copy(a.data[off:], block)
	a.used = off + len(block)
	return uint32(off)
}

func (a *uniformArena) flush(queue *wgpu.Queue) {
	if a.used > 0 {
		queue.WriteBuffer(a.gpu, 0, a.data[:align4(a.used)])
	}
	a.used = 0
}

func (a *uniformArena) release() {
	if a.gpu != nil {
		a.gpu.Release()
		a.gpu = nil
	}
}

// pipelineKey is the fixed function state baked into a render pipeline.
type pipelineKey struct {
	primitive   driver.Primitive
	indexFormat wgpu.IndexFormat
	colorFormat wgpu.TextureFormat
	depthFormat wgpu.TextureFormat
	depthTest   bool
	blend       bool
	blendSrc    driver.BlendFactor
	blendDst    driver.BlendFactor
	cull        bool
	cullFace    driver.Face
	vertex      string
}

// vertexSlot is one vertex buffer binding produced from the attribute state.
type vertexSlot struct {
	buffer driver.Handle
	base   int
	layout wgpu.VertexBufferLayout
}

// beforeWrite submits the open pass when it references the object about to change.
func (d *Driver) beforeWrite(kind usedKind, h driver.Handle) {
	if d.frame.pass == nil {
		return
	}
	if _, ok := d.frame.used[usedKey{kind, h}]; ok {
		d.flushPass()
	}
}

func (d *Driver) markUsed(kind usedKind, h driver.Handle) {
	d.frame.used[usedKey{kind, h}] = struct{}{}
}

// renderTarget resolves the color and depth views of the bound framebuffer, or of the surface.
func (d *Driver) renderTarget() (color, depth *wgpu.TextureView, depthFormat wgpu.TextureFormat, width, height int, err error) {
	if d.framebuffer == driver.Zero {
		if d.frame.surfaceTexture == nil {
			tex, err := d.surface.GetCurrentTexture()
			if err != nil {
				return nil, nil, wgpu.TextureFormatUndefined, 0, 0, errors.Wrapf(ErrDevice, "acquire surface texture: %v", err)
			}
			view, err := tex.CreateView(nil)
			if err != nil {
				tex.Release()
				return nil, nil, wgpu.TextureFormatUndefined, 0, 0, errors.Wrapf(ErrDevice, "create surface view: %v", err)
			}
			d.frame.surfaceTexture, d.frame.surfaceView = tex, view
		}
		d.frame.colorFormat = d.surfaceFormat
		return d.frame.surfaceView, d.depthView, wgpu.TextureFormatDepth24Plus, d.width, d.height, nil
	}

	fb, ok := d.framebuffers[d.framebuffer]
	if !ok {
		return nil, nil, wgpu.TextureFormatUndefined, 0, 0, errors.Wrapf(ErrDevice, "framebuffer %d does not exist", d.framebuffer)
	}
	t, ok := d.textures[fb.color]
	if !ok || t.gpu == nil {
		return nil, nil, wgpu.TextureFormatUndefined, 0, 0, errors.Wrapf(ErrDevice, "framebuffer %d has no color attachment", d.framebuffer)
	}
	view, err := d.attachView(t, fb.colorLayer)
	if err != nil {
		return nil, nil, wgpu.TextureFormatUndefined, 0, 0, err
	}
	d.markUsed(usedTexture, fb.color)
	d.frame.colorFormat = wgpu.TextureFormatRGBA8Unorm

	depthFormat = wgpu.TextureFormatUndefined
	if rb, ok := d.renderbuffers[fb.depth]; ok && !fb.depthIsTex && rb.view != nil {
		depth, depthFormat = rb.view, rb.depthFormat()
	}
	return view, depth, depthFormat, t.width, t.height, nil
}

// attachView returns a single layer 2D view of t for use as a color attachment.
func (d *Driver) attachView(t *textureObject, layer int) (*wgpu.TextureView, error) {
	if v, ok := t.attachViews[layer]; ok {
		return v, nil
	}
	v, err := t.gpu.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormatRGBA8Unorm,
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(layer),
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "create attachment view: %v", err)
	}
	if t.attachViews == nil {
		t.attachViews = make(map[int]*wgpu.TextureView)
	}
	t.attachViews[layer] = v
	return v, nil
}

// beginPass opens a render pass on the bound target, applying and consuming pending clears.
func (d *Driver) beginPass() bool {
	if d.frame.pass != nil {
		return true
	}
	d.frame.used = make(map[usedKey]struct{})
	d.frame.uniformGroups = make(map[driver.Handle]*wgpu.BindGroup)
	color, depth, depthFormat, width, height, err := d.renderTarget()
	if err != nil {
		d.logger.Error("begin render pass failed", "error", err)
		return false
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		d.logger.Error("create command encoder failed", "error", err)
		return false
	}

	colorLoad := wgpu.LoadOpLoad
	if d.pendingClear&driver.ClearColorBit != 0 {
		colorLoad = wgpu.LoadOpClear
	}
	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       color,
			LoadOp:     colorLoad,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: d.clearColor,
		}},
	}
	if depth != nil {
		depthLoad := wgpu.LoadOpLoad
		if d.pendingClear&driver.ClearDepthBit != 0 {
			depthLoad = wgpu.LoadOpClear
		}
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
		if depthFormat == wgpu.TextureFormatDepth24PlusStencil8 {
			attachment.StencilLoadOp = wgpu.LoadOpClear
			attachment.StencilStoreOp = wgpu.StoreOpStore
		}
		desc.DepthStencilAttachment = attachment
	}

	d.frame.encoder = encoder
	d.frame.pass = encoder.BeginRenderPass(desc)
	d.frame.targetWidth, d.frame.targetHeight = width, height
	d.frame.depthFormat = wgpu.TextureFormatUndefined
	if depth != nil {
		d.frame.depthFormat = depthFormat
	}
	d.pendingClear = 0
	d.applyViewport()
	return true
}

// flushPass ends the open pass, uploads the uniform arena, and submits the recorded commands.
func (d *Driver) flushPass() {
	if d.frame.pass == nil {
		return
	}
	d.frame.pass.End()
	d.frame.pass = nil

	d.arena.flush(d.queue)
	commands, err := d.frame.encoder.Finish(nil)
	if err != nil {
		d.logger.Error("finish command encoder failed", "error", err)
	} else {
		d.queue.Submit(commands)
		commands.Release()
	}
	d.frame.encoder.Release()
	d.frame.encoder = nil

	for _, bg := range d.frame.bindGroups {
		bg.Release()
	}
	d.frame.bindGroups = d.frame.bindGroups[:0]
	d.frame.uniformGroups = nil
	d.frame.used = nil
}

// applyViewport converts the bottom-left origin viewport into the pass's top-left origin, clamped to the target.
func (d *Driver) applyViewport() {
	tw, th := d.frame.targetWidth, d.frame.targetHeight
	x, y, w, h := 0, 0, tw, th
	if d.viewportSet {
		x, y, w, h = d.viewport[0], th-(d.viewport[1]+d.viewport[3]), d.viewport[2], d.viewport[3]
	}
	x0, y0 := clamp(x, 0, tw), clamp(y, 0, th)
	x1, y1 := clamp(x+w, 0, tw), clamp(y+h, 0, th)
	d.frame.pass.SetViewport(float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 0, 1)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// vertexSlots groups the enabled attributes the program reads by source buffer and stride.
func (d *Driver) vertexSlots(p *programObject, vao *vertexArrayObject) ([]vertexSlot, string, error) {
	type group struct {
		buffer driver.Handle
		stride int32
	}
	var (
		slots []vertexSlot
		index = make(map[group]int)
	)
	locations := make([]int32, 0, len(p.refl.attributes))
	for _, a := range p.refl.attributes {
		locations = append(locations, a.Location)
	}
	slices.Sort(locations)

	for _, loc := range locations {
		a, ok := vao.attribs[uint32(loc)]
		if !ok || !a.enabled {
			return nil, "", errors.Newf("attribute %d is read by the program but not enabled", loc)
		}
		format, ok := vertexFormat(a.typ, a.size, a.normalized)
		if !ok {
			return nil, "", errors.Newf("attribute %d has no vertex format for %d x %v", loc, a.size, a.typ)
		}
		stride := a.stride
		if stride == 0 {
			stride = a.size * int32(a.typ.Size())
		}
		g := group{a.buffer, stride}
		i, ok := index[g]
		if !ok {
			i = len(slots)
			index[g] = i
			slots = append(slots, vertexSlot{
				buffer: a.buffer,
				base:   a.offset,
				layout: wgpu.VertexBufferLayout{
					ArrayStride: uint64(stride),
					StepMode:    wgpu.VertexStepModeVertex,
				},
			})
		}
		slots[i].base = min(slots[i].base, a.offset)
		slots[i].layout.Attributes = append(slots[i].layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.offset),
			ShaderLocation: uint32(loc),
		})
	}

	var key strings.Builder
	for i := range slots {
		s := &slots[i]
		fmt.Fprintf(&key, "%d:", s.layout.ArrayStride)
		for j := range s.layout.Attributes {
			attr := &s.layout.Attributes[j]
			attr.Offset -= uint64(s.base)
			fmt.Fprintf(&key, "%d/%d/%d,", attr.ShaderLocation, attr.Format, attr.Offset)
		}
		key.WriteByte(';')
	}
	return slots, key.String(), nil
}

// pipeline returns the cached pipeline of p for key, creating it on first use.
func (d *Driver) pipeline(h driver.Handle, p *programObject, key pipelineKey, slots []vertexSlot) (*wgpu.RenderPipeline, error) {
	if rp, ok := p.pipelines[key]; ok {
		return rp, nil
	}

	layouts := make([]wgpu.VertexBufferLayout, len(slots))
	for i, s := range slots {
		layouts[i] = s.layout
	}
	target := wgpu.ColorTargetState{
		Format:    key.colorFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if key.blend {
		component := wgpu.BlendComponent{
			SrcFactor: blendFactor(key.blendSrc),
			DstFactor: blendFactor(key.blendDst),
			Operation: wgpu.BlendOperationAdd,
		}
		target.Blend = &wgpu.BlendState{Color: component, Alpha: component}
	}
	primitive := wgpu.PrimitiveState{
		Topology:  topology(key.primitive),
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  cullMode(key.cull, key.cullFace),
	}
	if isStrip(key.primitive) {
		primitive.StripIndexFormat = key.indexFormat
	}

	var depthStencil *wgpu.DepthStencilState
	if key.depthFormat != wgpu.TextureFormatUndefined {
		compare := wgpu.CompareFunctionAlways
		if key.depthTest {
			compare = wgpu.CompareFunctionLess
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            key.depthFormat,
			DepthWriteEnabled: key.depthTest,
			DepthCompare:      compare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	rp, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  d.label(driver.LabelProgram, h, "program") + " pipeline",
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.vertex,
			EntryPoint: p.refl.vertexEntry,
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragment,
			EntryPoint: p.refl.fragmentEntry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive:    primitive,
		DepthStencil: depthStencil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "create render pipeline: %v", err)
	}
	p.pipelines[key] = rp
	return rp, nil
}

// uniformGroup returns the group 0 bind group of the program for the open pass.
func (d *Driver) uniformGroup(h driver.Handle, p *programObject) (*wgpu.BindGroup, error) {
	if bg, ok := d.frame.uniformGroups[h]; ok {
		return bg, nil
	}
	var entries []wgpu.BindGroupEntry
	if p.refl.blockSize > 0 {
		entries = []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  d.arena.gpu,
			Offset:  0,
			Size:    p.refl.blockSize,
		}}
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  p.uniformLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "create uniform bind group: %v", err)
	}
	d.frame.uniformGroups[h] = bg
	d.frame.bindGroups = append(d.frame.bindGroups, bg)
	return bg, nil
}

// textureGroup builds the group 1 bind group from the textures bound on each binding's unit.
func (d *Driver) textureGroup(p *programObject) (*wgpu.BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, 0, len(p.refl.textures)*2)
	for j, tb := range p.refl.textures {
		unit := int(p.units[j])
		kind := kind2D
		switch tb.viewDimension {
		case wgpu.TextureViewDimensionCube:
			kind = kindCubeMap
		case wgpu.TextureViewDimension2DArray:
			kind = kind2DArray
		}

		t := d.placeholder
		if unit >= 0 && unit < len(d.units) {
			if h := d.units[unit][kind]; h != driver.Zero {
				if bound, ok := d.textures[h]; ok && bound.gpu != nil {
					t = bound
					d.markUsed(usedTexture, h)
				}
			}
		}
		if t == d.placeholder && kind != kind2D {
			return nil, errors.Newf("texture %q has nothing bound on unit %d", tb.name, unit)
		}
		s, err := d.sampler(t)
		if err != nil {
			return nil, err
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: tb.binding, TextureView: t.view},
			wgpu.BindGroupEntry{Binding: tb.samplerBinding, Sampler: s},
		)
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  p.textureLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "create texture bind group: %v", err)
	}
	d.frame.bindGroups = append(d.frame.bindGroups, bg)
	return bg, nil
}

func (d *Driver) DrawElements(mode driver.Primitive, count int32, typ driver.ScalarType, offset int) {
	if err := d.draw(mode, count, typ, offset); err != nil {
		d.logger.Warn("draw skipped", "error", err)
	}
}

// DrawRangeElements draws like DrawElements. The index range is a hint WebGPU has no use for.
func (d *Driver) DrawRangeElements(mode driver.Primitive, _, _ uint32, count int32, typ driver.ScalarType, offset int) {
	d.DrawElements(mode, count, typ, offset)
}

func (d *Driver) draw(mode driver.Primitive, count int32, typ driver.ScalarType, offset int) error {
	if count <= 0 {
		return nil
	}
	if typ != driver.ScalarUnsignedShort && typ != driver.ScalarUnsignedInt {
		return errors.Newf("index type %v is not supported", typ)
	}
	p, ok := d.programs[d.program]
	if !ok {
		return errors.New("no program in use")
	}
	vao := d.currentVertexArray()
	elements, ok := d.buffers[vao.elements]
	if !ok || elements.gpu == nil {
		return errors.New("no element buffer bound")
	}
	slots, layoutKey, err := d.vertexSlots(p, vao)
	if err != nil {
		return err
	}
	for _, s := range slots {
		if b, ok := d.buffers[s.buffer]; !ok || b.gpu == nil {
			return errors.Newf("attribute buffer %d has no storage", s.buffer)
		}
	}

	if !d.arena.fits(len(p.uniformData)) {
		d.flushPass()
	}
	if !d.beginPass() {
		return errors.New("no render pass")
	}

	key := pipelineKey{
		primitive:   mode,
		indexFormat: indexFormat(typ),
		colorFormat: d.frame.colorFormat,
		depthFormat: d.frame.depthFormat,
		depthTest:   d.depthTest,
		blend:       d.blend,
		blendSrc:    d.blendSrc,
		blendDst:    d.blendDst,
		cull:        d.cull,
		cullFace:    d.cullFace,
		vertex:      layoutKey,
	}
	rp, err := d.pipeline(d.program, p, key, slots)
	if err != nil {
		return err
	}
	ug, err := d.uniformGroup(d.program, p)
	if err != nil {
		return err
	}

	pass := d.frame.pass
	pass.SetPipeline(rp)
	if p.refl.blockSize > 0 {
		pass.SetBindGroup(uniformGroup, ug, []uint32{d.arena.push(p.uniformData)})
	} else {
		pass.SetBindGroup(uniformGroup, ug, nil)
	}
	if p.textureLayout != nil {
		tg, err := d.textureGroup(p)
		if err != nil {
			return err
		}
		pass.SetBindGroup(textureGroup, tg, nil)
	}
	for i, s := range slots {
		pass.SetVertexBuffer(uint32(i), d.buffers[s.buffer].gpu, uint64(s.base), wgpu.WholeSize)
		d.markUsed(usedBuffer, s.buffer)
	}
	pass.SetIndexBuffer(elements.gpu, indexFormat(typ), 0, wgpu.WholeSize)
	d.markUsed(usedBuffer, vao.elements)

	pass.DrawIndexed(uint32(count), 1, uint32(offset/typ.Size()), 0, 0)
	return nil
}
