package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// checkBindable validates res before any binding change: nil, then disposed, then owned by another context.
func (c *renderContext) checkBindable(res Resource, what string) error {
	if isNil(res) {
		return errors.Wrapf(ErrInvalidArgument, "bind %s: resource is nil", what)
	}
	b := res.base()
	if err := b.ensureUndisposed("bind " + what); err != nil {
		return err
	}
	if b.ctx != c {
		return errors.Wrapf(ErrContextMismatch, "bind %s %s", what, b.describe())
	}
	if c.disposed {
		return errors.Wrapf(ErrInvalidState, "bind %s %s: render context is disposed", what, b.describe())
	}
	return nil
}

func (c *renderContext) checkSlot(slot int) error {
	if slot < 0 || slot >= len(c.units) {
		return errors.Wrapf(ErrOutOfRange, "texture unit %d not in [0, %d)", slot, len(c.units))
	}
	return nil
}

func (c *renderContext) traceBind(what string, h driver.Handle) {
	if c.verboseBinds {
		c.logger.Debug("native bind", "slot", what, "handle", h)
	}
}

func (c *renderContext) bindSlot(s *slot, res Resource, what string, native func(driver.Handle)) error {
	if err := c.checkBindable(res, what); err != nil {
		return err
	}
	h := res.Handle()
	if s.handle == h {
		c.stats.SkippedBinds++
		return nil
	}

	native(h)
	c.stats.NativeBinds++
	c.traceBind(what, h)

	if s.res != nil {
		s.res.base().release()
	}
	s.handle, s.res = h, res
	res.base().retain(c)
	return nil
}

func (c *renderContext) ensureSlotUnbound(s *slot, res Resource, what string, native func(driver.Handle)) error {
	if isNil(res) {
		return errors.Wrapf(ErrInvalidArgument, "unbind %s: resource is nil", what)
	}
	if s.res == nil || s.res.base() != res.base() {
		return nil
	}
	c.clearSlot(s, what, native)
	return nil
}

func (c *renderContext) clearSlot(s *slot, what string, native func(driver.Handle)) {
	if s.handle == driver.Zero {
		return
	}
	native(driver.Zero)
	c.stats.NativeBinds++
	c.traceBind(what, driver.Zero)

	s.res.base().release()
	*s = slot{}
}

func (c *renderContext) nativeVertexBuffer(h driver.Handle) {
	c.drv.BindBuffer(driver.BufferTargetArray, h)
}

func (c *renderContext) nativeIndexBuffer(h driver.Handle) {
	c.drv.BindBuffer(driver.BufferTargetElementArray, h)
}

func (c *renderContext) nativePixelBuffer(h driver.Handle) {
	c.drv.BindBuffer(driver.BufferTargetPixelUnpack, h)
}

func (c *renderContext) BindVertexBuffer(vb VertexBuffer) error {
	return c.bindSlot(&c.vertexBuffer, vb, "vertex buffer", c.nativeVertexBuffer)
}

func (c *renderContext) EnsureVertexBufferUnbound(vb VertexBuffer) error {
	return c.ensureSlotUnbound(&c.vertexBuffer, vb, "vertex buffer", c.nativeVertexBuffer)
}

func (c *renderContext) UnbindVertexBuffer() {
	c.clearSlot(&c.vertexBuffer, "vertex buffer", c.nativeVertexBuffer)
}

func (c *renderContext) VertexBuffer() VertexBuffer {
	if c.vertexBuffer.res == nil {
		return nil
	}
	return c.vertexBuffer.res.(VertexBuffer)
}

func (c *renderContext) BindIndexBuffer(ib IndexBuffer) error {
	return c.bindSlot(&c.indexBuffer, ib, "index buffer", c.nativeIndexBuffer)
}

func (c *renderContext) EnsureIndexBufferUnbound(ib IndexBuffer) error {
	return c.ensureSlotUnbound(&c.indexBuffer, ib, "index buffer", c.nativeIndexBuffer)
}

func (c *renderContext) UnbindIndexBuffer() {
	c.clearSlot(&c.indexBuffer, "index buffer", c.nativeIndexBuffer)
}

func (c *renderContext) IndexBuffer() IndexBuffer {
	if c.indexBuffer.res == nil {
		return nil
	}
	return c.indexBuffer.res.(IndexBuffer)
}

func (c *renderContext) BindPixelBuffer(pb PixelBuffer) error {
	return c.bindSlot(&c.pixelBuffer, pb, "pixel buffer", c.nativePixelBuffer)
}

func (c *renderContext) EnsurePixelBufferUnbound(pb PixelBuffer) error {
	return c.ensureSlotUnbound(&c.pixelBuffer, pb, "pixel buffer", c.nativePixelBuffer)
}

func (c *renderContext) UnbindPixelBuffer() {
	c.clearSlot(&c.pixelBuffer, "pixel buffer", c.nativePixelBuffer)
}

func (c *renderContext) PixelBuffer() PixelBuffer {
	if c.pixelBuffer.res == nil {
		return nil
	}
	return c.pixelBuffer.res.(PixelBuffer)
}

func (c *renderContext) BindFrameBuffer(fb FrameBuffer) error {
	return c.bindSlot(&c.frameBuffer, fb, "framebuffer", c.drv.BindFramebuffer)
}

func (c *renderContext) EnsureFrameBufferUnbound(fb FrameBuffer) error {
	return c.ensureSlotUnbound(&c.frameBuffer, fb, "framebuffer", c.drv.BindFramebuffer)
}

func (c *renderContext) UnbindFrameBuffer() {
	c.clearSlot(&c.frameBuffer, "framebuffer", c.drv.BindFramebuffer)
}

func (c *renderContext) FrameBuffer() FrameBuffer {
	if c.frameBuffer.res == nil {
		return nil
	}
	return c.frameBuffer.res.(FrameBuffer)
}

func (c *renderContext) BindShaderProgram(program ShaderProgram) error {
	return c.bindSlot(&c.program, program, "shader program", c.drv.UseProgram)
}

func (c *renderContext) EnsureShaderProgramUnbound(program ShaderProgram) error {
	return c.ensureSlotUnbound(&c.program, program, "shader program", c.drv.UseProgram)
}

func (c *renderContext) UnbindShaderProgram() {
	c.clearSlot(&c.program, "shader program", c.drv.UseProgram)
}

func (c *renderContext) ShaderProgram() ShaderProgram {
	if c.program.res == nil {
		return nil
	}
	return c.program.res.(ShaderProgram)
}

func (c *renderContext) SetActiveTextureSlot(slot int) error {
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	if c.activeUnit == slot {
		return nil
	}
	c.drv.ActiveTexture(slot)
	c.activeUnit = slot
	return nil
}

func (c *renderContext) ActiveTextureSlot() int {
	return c.activeUnit
}

func (c *renderContext) BindTexture(tex Texture, slot int) error {
	if err := c.checkBindable(tex, "texture"); err != nil {
		return err
	}
	if err := c.SetActiveTextureSlot(slot); err != nil {
		return err
	}

	kind := tex.Kind()
	unit := &c.units[slot]
	if current := unit.textures[kind]; current != nil && current.Handle() == tex.Handle() {
		c.stats.SkippedBinds++
		return nil
	}

	c.clearOtherKinds(slot, kind)

	c.drv.BindTexture(kind.Target(), tex.Handle())
	c.stats.NativeBinds++
	c.traceBind(kind.String(), tex.Handle())

	if previous := unit.textures[kind]; previous != nil {
		previous.base().release()
	}
	unit.textures[kind] = tex
	tex.base().retain(c)
	return nil
}

// unbindTextureAt drops whatever texture of kind is cached on unit slot. The slot must be valid.
func (c *renderContext) unbindTextureAt(slot int, kind TextureKind) {
	unit := &c.units[slot]
	tex := unit.textures[kind]
	if tex == nil {
		return
	}
	_ = c.SetActiveTextureSlot(slot)
	c.drv.BindTexture(kind.Target(), driver.Zero)
	c.stats.NativeBinds++
	c.traceBind(kind.String(), driver.Zero)

	tex.base().release()
	unit.textures[kind] = nil
}

func (c *renderContext) clearOtherKinds(slot int, kind TextureKind) {
	for k := range textureKindCount {
		if k != kind {
			c.unbindTextureAt(slot, k)
		}
	}
}

func (c *renderContext) EnsureTextureUnbound(tex Texture) error {
	if isNil(tex) {
		return errors.Wrap(ErrInvalidArgument, "unbind texture: resource is nil")
	}
	kind := tex.Kind()
	for slot := range c.units {
		if current := c.units[slot].textures[kind]; current != nil && current.base() == tex.base() {
			c.unbindTextureAt(slot, kind)
		}
	}
	return nil
}

func (c *renderContext) EnsureTextureUnboundAt(tex Texture, slot int) error {
	if isNil(tex) {
		return errors.Wrap(ErrInvalidArgument, "unbind texture: resource is nil")
	}
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	kind := tex.Kind()
	if current := c.units[slot].textures[kind]; current != nil && current.base() == tex.base() {
		c.unbindTextureAt(slot, kind)
	}
	return nil
}

func (c *renderContext) ClearOtherTextureKinds(slot int, kind TextureKind) error {
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	c.clearOtherKinds(slot, kind)
	return nil
}

func (c *renderContext) ClearTextureSlot(slot int) error {
	if err := c.checkSlot(slot); err != nil {
		return err
	}
	for k := range textureKindCount {
		c.unbindTextureAt(slot, k)
	}
	return nil
}

func (c *renderContext) ClearTextureSlots() {
	for slot := range c.units {
		for k := range textureKindCount {
			c.unbindTextureAt(slot, k)
		}
	}
}

func (c *renderContext) CurrentTexture(slot int) Texture {
	if c.checkSlot(slot) != nil {
		return nil
	}
	for _, tex := range c.units[slot].textures {
		if tex != nil {
			return tex
		}
	}
	return nil
}

func (c *renderContext) CurrentTextureOfKind(slot int, kind TextureKind) Texture {
	if c.checkSlot(slot) != nil || kind < 0 || kind >= textureKindCount {
		return nil
	}
	return c.units[slot].textures[kind]
}
