// Package gldriver implements driver.Driver on an OpenGL 4.1 core context.
package gldriver

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// ErrGL reports an error flag raised by the OpenGL context.
var ErrGL = errors.New("opengl error")

// labelKey identifies a labeled object across the separate handle namespaces.
type labelKey struct {
	kind   driver.LabelKind
	handle driver.Handle
}

// Driver issues OpenGL calls. The context must be current on the calling thread for every method.
type Driver struct {
	limits driver.Limits
	labels map[labelKey]string
}

var _ driver.Driver = &Driver{}

// New loads the OpenGL function pointers for the current context and queries its limits.
// The window (or another owner) must have made a 4.1 core context current on this thread.
//
// Returns:
//   - *Driver: the driver bound to the current context
//   - error: an error if the function pointers could not be loaded
func New() (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize OpenGL")
	}

	var units int32
	gl.GetIntegerv(gl.MAX_TEXTURE_IMAGE_UNITS, &units)

	// Rows of RGBA8 uploads are tightly packed.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	return &Driver{
		limits: driver.Limits{
			MaxTextureImageUnits: int(units),
			// 4.1 core has no KHR_debug, so labels only live in this driver.
			HasDebug: false,
			Renderer: fmt.Sprintf("%s (%s)", gl.GoStr(gl.GetString(gl.RENDERER)), gl.GoStr(gl.GetString(gl.VERSION))),
		},
		labels: make(map[labelKey]string),
	}, nil
}

// CheckError returns the oldest pending OpenGL error flag, or nil.
//
// Returns:
//   - error: ErrGL wrapped with the error name when a flag was set
func (d *Driver) CheckError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Wrapf(ErrGL, "%s (0x%04x)", errorName(code), code)
	}
	return nil
}

// Label returns the label recorded for a handle by ObjectLabel.
func (d *Driver) Label(kind driver.LabelKind, h driver.Handle) (string, bool) {
	l, ok := d.labels[labelKey{kind, h}]
	return l, ok
}

func (d *Driver) Limits() driver.Limits {
	return d.limits
}

func (d *Driver) ObjectLabel(kind driver.LabelKind, h driver.Handle, label string) {
	d.labels[labelKey{kind, h}] = label
}

func (d *Driver) forget(kind driver.LabelKind, h driver.Handle) {
	delete(d.labels, labelKey{kind, h})
}

func (d *Driver) GenBuffer() driver.Handle {
	var h uint32
	gl.GenBuffers(1, &h)
	return driver.Handle(h)
}

func (d *Driver) DeleteBuffer(h driver.Handle) {
	b := uint32(h)
	gl.DeleteBuffers(1, &b)
	d.forget(driver.LabelBuffer, h)
}

func (d *Driver) BindBuffer(target driver.BufferTarget, h driver.Handle) {
	gl.BindBuffer(bufferTarget(target), uint32(h))
}

func (d *Driver) BufferData(target driver.BufferTarget, size int, data []byte, usage driver.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), size, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(bufferTarget(target), size, gl.Ptr(data), bufferUsage(usage))
}

func (d *Driver) BufferSubData(target driver.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(bufferTarget(target), offset, len(data), gl.Ptr(data))
}

func (d *Driver) GenTexture() driver.Handle {
	var h uint32
	gl.GenTextures(1, &h)
	return driver.Handle(h)
}

func (d *Driver) DeleteTexture(h driver.Handle) {
	t := uint32(h)
	gl.DeleteTextures(1, &t)
	d.forget(driver.LabelTexture, h)
}

func (d *Driver) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

func (d *Driver) BindTexture(target driver.TextureTarget, h driver.Handle) {
	gl.BindTexture(textureTarget(target), uint32(h))
}

func (d *Driver) TexImage2D(target driver.TextureTarget, width, height int, pixels []byte) {
	if len(pixels) == 0 {
		gl.TexImage2D(textureTarget(target), 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		return
	}
	gl.TexImage2D(textureTarget(target), 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Driver) TexImage2DFromBuffer(target driver.TextureTarget, width, height, offset int) {
	gl.TexImage2D(textureTarget(target), 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.PtrOffset(offset))
}

func (d *Driver) TexSubImage2D(target driver.TextureTarget, x, y, width, height int, pixels []byte) {
	if len(pixels) == 0 {
		return
	}
	gl.TexSubImage2D(textureTarget(target), 0, int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Driver) TexImage3D(target driver.TextureTarget, width, height, depth int, pixels []byte) {
	if len(pixels) == 0 {
		gl.TexImage3D(textureTarget(target), 0, gl.RGBA8, int32(width), int32(height), int32(depth), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		return
	}
	gl.TexImage3D(textureTarget(target), 0, gl.RGBA8, int32(width), int32(height), int32(depth), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Driver) TexSubImage3D(target driver.TextureTarget, x, y, z, width, height, depth int, pixels []byte) {
	if len(pixels) == 0 {
		return
	}
	gl.TexSubImage3D(textureTarget(target), 0, int32(x), int32(y), int32(z), int32(width), int32(height), int32(depth), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Driver) TexParameter(target driver.TextureTarget, param driver.TextureParameter, value int32) {
	gl.TexParameteri(textureTarget(target), textureParameter(param), textureParameterValue(param, value))
}

func (d *Driver) GenerateMipmap(target driver.TextureTarget) {
	gl.GenerateMipmap(textureTarget(target))
}

func (d *Driver) GetTexImage(target driver.TextureTarget, width, height int) ([]byte, error) {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, nil
	}
	gl.GetTexImage(textureTarget(target), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if err := d.CheckError(); err != nil {
		return nil, errors.Wrap(err, "failed to read texture")
	}
	return pixels, nil
}

func (d *Driver) GenFramebuffer() driver.Handle {
	var h uint32
	gl.GenFramebuffers(1, &h)
	return driver.Handle(h)
}

func (d *Driver) DeleteFramebuffer(h driver.Handle) {
	f := uint32(h)
	gl.DeleteFramebuffers(1, &f)
	d.forget(driver.LabelFramebuffer, h)
}

func (d *Driver) BindFramebuffer(h driver.Handle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(h))
}

func (d *Driver) FramebufferTexture2D(a driver.Attachment, target driver.TextureTarget, tex driver.Handle) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment(a), textureTarget(target), uint32(tex), 0)
}

func (d *Driver) FramebufferRenderbuffer(a driver.Attachment, rb driver.Handle) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment(a), gl.RENDERBUFFER, uint32(rb))
}

func (d *Driver) CheckFramebufferStatus() driver.FramebufferStatus {
	return framebufferStatus(gl.CheckFramebufferStatus(gl.FRAMEBUFFER))
}

func (d *Driver) GenRenderbuffer() driver.Handle {
	var h uint32
	gl.GenRenderbuffers(1, &h)
	return driver.Handle(h)
}

func (d *Driver) DeleteRenderbuffer(h driver.Handle) {
	r := uint32(h)
	gl.DeleteRenderbuffers(1, &r)
	d.forget(driver.LabelRenderbuffer, h)
}

func (d *Driver) BindRenderbuffer(h driver.Handle) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, uint32(h))
}

func (d *Driver) RenderbufferStorage(format driver.RenderbufferFormat, width, height int) {
	gl.RenderbufferStorage(gl.RENDERBUFFER, renderbufferFormat(format), int32(width), int32(height))
}

func (d *Driver) GenVertexArray() driver.Handle {
	var h uint32
	gl.GenVertexArrays(1, &h)
	return driver.Handle(h)
}

func (d *Driver) DeleteVertexArray(h driver.Handle) {
	v := uint32(h)
	gl.DeleteVertexArrays(1, &v)
	d.forget(driver.LabelVertexArray, h)
}

func (d *Driver) BindVertexArray(h driver.Handle) {
	gl.BindVertexArray(uint32(h))
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *Driver) DisableVertexAttribArray(index uint32) {
	gl.DisableVertexAttribArray(index)
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, typ driver.ScalarType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, scalarType(typ), normalized, stride, uintptr(offset))
}

func (d *Driver) DrawElements(mode driver.Primitive, count int, typ driver.ScalarType, offset int) {
	gl.DrawElementsWithOffset(primitive(mode), int32(count), scalarType(typ), uintptr(offset))
}

func (d *Driver) DrawRangeElements(mode driver.Primitive, start, end uint32, count int, typ driver.ScalarType, offset int) {
	gl.DrawRangeElements(primitive(mode), start, end, int32(count), scalarType(typ), gl.PtrOffset(offset))
}

func (d *Driver) Enable(c driver.Capability) {
	gl.Enable(capability(c))
}

func (d *Driver) Disable(c driver.Capability) {
	gl.Disable(capability(c))
}

func (d *Driver) BlendFunc(src, dst driver.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (d *Driver) CullFace(f driver.Face) {
	gl.CullFace(face(f))
}

func (d *Driver) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Driver) Clear(mask driver.ClearMask) {
	gl.Clear(clearMask(mask))
}

func (d *Driver) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}
