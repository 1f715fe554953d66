package gldriver

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// compileShader compiles one stage and returns its handle, or the info log as an error.
func compileShader(stage uint32, src string) (uint32, error) {
	handle := gl.CreateShader(stage)

	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteShader(handle)
		return 0, errors.Newf("%s", strings.TrimRight(msg, "\x00"))
	}
	return handle, nil
}

func (d *Driver) CreateProgram(vertexSource, fragmentSource string) (driver.Handle, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSource)
	if err != nil {
		return driver.Zero, errors.Wrap(err, "vertex shader")
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		return driver.Zero, errors.Wrap(err, "fragment shader")
	}
	defer gl.DeleteShader(fs)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vs)
	gl.AttachShader(handle, fs)
	gl.LinkProgram(handle)
	gl.DetachShader(handle, vs)
	gl.DetachShader(handle, fs)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(handle)
		return driver.Zero, errors.Newf("link: %s", strings.TrimRight(msg, "\x00"))
	}
	return driver.Handle(handle), nil
}

func (d *Driver) DeleteProgram(h driver.Handle) {
	gl.DeleteProgram(uint32(h))
	d.forget(driver.LabelProgram, h)
}

func (d *Driver) UseProgram(h driver.Handle) {
	gl.UseProgram(uint32(h))
}

// activeName reads one active attribute or uniform name through fn into a buffer of maxLength bytes.
// Array uniforms are reported by GL as "name[0]"; the suffix is dropped.
func activeName(maxLength int32, fn func(buf *uint8, length *int32, size *int32, xtype *uint32)) (name string, size int32, xtype uint32) {
	buf := make([]uint8, max(maxLength, 1))
	var length int32
	fn(&buf[0], &length, &size, &xtype)
	name = string(buf[:length])
	name = strings.TrimSuffix(name, "[0]")
	return name, size, xtype
}

func (d *Driver) ActiveAttributes(program driver.Handle) []driver.AttributeInfo {
	p := uint32(program)
	var count, maxLength int32
	gl.GetProgramiv(p, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(p, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLength)

	attrs := make([]driver.AttributeInfo, 0, count)
	for i := range uint32(count) {
		name, _, _ := activeName(maxLength, func(buf *uint8, length *int32, size *int32, xtype *uint32) {
			gl.GetActiveAttrib(p, i, maxLength, length, size, xtype, buf)
		})
		attrs = append(attrs, driver.AttributeInfo{
			Name:     name,
			Location: gl.GetAttribLocation(p, gl.Str(name+"\x00")),
		})
	}
	return attrs
}

func (d *Driver) ActiveUniforms(program driver.Handle) []driver.UniformInfo {
	p := uint32(program)
	var count, maxLength int32
	gl.GetProgramiv(p, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(p, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLength)

	uniforms := make([]driver.UniformInfo, 0, count)
	for i := range uint32(count) {
		name, size, xtype := activeName(maxLength, func(buf *uint8, length *int32, size *int32, xtype *uint32) {
			gl.GetActiveUniform(p, i, maxLength, length, size, xtype, buf)
		})
		uniforms = append(uniforms, driver.UniformInfo{
			Name:     name,
			Location: gl.GetUniformLocation(p, gl.Str(name+"\x00")),
			Size:     uniformTypeSize(xtype) * int(size),
		})
	}
	return uniforms
}

func (d *Driver) UniformMatrix4(location int32, m [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Driver) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (d *Driver) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (d *Driver) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (d *Driver) Uniform3f(location int32, x, y, z float32) {
	gl.Uniform3f(location, x, y, z)
}

func (d *Driver) Uniform4f(location int32, x, y, z, w float32) {
	gl.Uniform4f(location, x, y, z, w)
}
