package wgpudriver

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// programObject is a linked pair of shader modules with its reflected interface and CPU uniform block.
type programObject struct {
	vertex   *wgpu.ShaderModule
	fragment *wgpu.ShaderModule
	refl     reflection

	uniformData []byte
	// units holds the texture unit sampled by each texture binding, indexed like refl.textures.
	units []int32

	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[pipelineKey]*wgpu.RenderPipeline
}

func (p *programObject) release() {
	for k, rp := range p.pipelines {
		rp.Release()
		delete(p.pipelines, k)
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	if p.textureLayout != nil {
		p.textureLayout.Release()
	}
	if p.uniformLayout != nil {
		p.uniformLayout.Release()
	}
	if p.fragment != nil && p.fragment != p.vertex {
		p.fragment.Release()
	}
	if p.vertex != nil {
		p.vertex.Release()
	}
}

// CreateProgram compiles WGSL vertex and fragment sources and builds the program's bind group layouts.
//
// Parameters:
//   - vertexSource: WGSL with a @vertex entry point
//   - fragmentSource: WGSL with a @fragment entry point, or the same module as vertexSource
//
// Returns:
//   - driver.Handle: the program handle
//   - error: a description of the missing entry point or the compile failure
func (d *Driver) CreateProgram(vertexSource, fragmentSource string) (driver.Handle, error) {
	refl := reflectProgram(vertexSource, fragmentSource)
	if refl.vertexEntry == "" {
		return driver.Zero, errors.New("vertex source has no @vertex entry point")
	}
	if refl.fragmentEntry == "" {
		return driver.Zero, errors.New("fragment source has no @fragment entry point")
	}

	h := d.alloc()
	p := &programObject{
		refl:        refl,
		uniformData: make([]byte, refl.blockSize),
		units:       make([]int32, len(refl.textures)),
		pipelines:   make(map[pipelineKey]*wgpu.RenderPipeline),
	}

	var err error
	if p.vertex, err = d.shaderModule(h, "vertex", vertexSource); err != nil {
		return driver.Zero, err
	}
	if fragmentSource == vertexSource {
		p.fragment = p.vertex
	} else if p.fragment, err = d.shaderModule(h, "fragment", fragmentSource); err != nil {
		p.release()
		return driver.Zero, err
	}

	if err := d.buildLayouts(h, p); err != nil {
		p.release()
		return driver.Zero, err
	}
	d.programs[h] = p
	return h, nil
}

func (d *Driver) shaderModule(h driver.Handle, stage, source string) (*wgpu.ShaderModule, error) {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: d.label(driver.LabelProgram, h, "program") + " " + stage,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, errors.Newf("%s stage: %v", stage, err)
	}
	return m, nil
}

// buildLayouts creates the uniform group, the texture group, and the pipeline layout of p.
// Group 0 always exists so that group 1 has a valid index even without uniforms.
func (d *Driver) buildLayouts(h driver.Handle, p *programObject) error {
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

	var uniformEntries []wgpu.BindGroupLayoutEntry
	if p.refl.blockSize > 0 {
		uniformEntries = append(uniformEntries, wgpu.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   p.refl.blockSize,
			},
		})
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   d.label(driver.LabelProgram, h, "program") + " uniforms",
		Entries: uniformEntries,
	})
	if err != nil {
		return errors.Newf("uniform layout: %v", err)
	}
	p.uniformLayout = layout
	layouts := []*wgpu.BindGroupLayout{layout}

	if len(p.refl.textures) > 0 {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(p.refl.textures)*2)
		for _, t := range p.refl.textures {
			entries = append(entries,
				wgpu.BindGroupLayoutEntry{
					Binding:    t.binding,
					Visibility: wgpu.ShaderStageFragment,
					Texture: wgpu.TextureBindingLayout{
						SampleType:    wgpu.TextureSampleTypeFloat,
						ViewDimension: t.viewDimension,
					},
				},
				wgpu.BindGroupLayoutEntry{
					Binding:    t.samplerBinding,
					Visibility: wgpu.ShaderStageFragment,
					Sampler: wgpu.SamplerBindingLayout{
						Type: wgpu.SamplerBindingTypeFiltering,
					},
				},
			)
		}
		tl, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   d.label(driver.LabelProgram, h, "program") + " textures",
			Entries: entries,
		})
		if err != nil {
			return errors.Newf("texture layout: %v", err)
		}
		p.textureLayout = tl
		layouts = append(layouts, tl)
	}

	pl, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            d.label(driver.LabelProgram, h, "program"),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return errors.Newf("pipeline layout: %v", err)
	}
	p.pipelineLayout = pl
	return nil
}

func (d *Driver) DeleteProgram(h driver.Handle) {
	p, ok := d.programs[h]
	if !ok {
		return
	}
	if d.program == h {
		d.program = driver.Zero
	}
	d.flushPass()
	p.release()
	delete(d.programs, h)
	delete(d.labels, labelKey{driver.LabelProgram, h})
}

func (d *Driver) UseProgram(h driver.Handle) {
	d.program = h
}

func (d *Driver) ActiveAttributes(program driver.Handle) []driver.AttributeInfo {
	p, ok := d.programs[program]
	if !ok {
		return nil
	}
	return append([]driver.AttributeInfo(nil), p.refl.attributes...)
}

// ActiveUniforms reports the uniform block members at locations 0..n-1 and textures at textureLocationBase+j.
func (d *Driver) ActiveUniforms(program driver.Handle) []driver.UniformInfo {
	p, ok := d.programs[program]
	if !ok {
		return nil
	}
	infos := make([]driver.UniformInfo, 0, len(p.refl.uniforms)+len(p.refl.textures))
	for i, u := range p.refl.uniforms {
		infos = append(infos, driver.UniformInfo{Name: u.name, Location: int32(i), Size: int(u.size)})
	}
	for j, t := range p.refl.textures {
		infos = append(infos, driver.UniformInfo{Name: t.name, Location: int32(textureLocationBase + j)})
	}
	return infos
}

// uniformSlot returns the bytes of the uniform at location in the program in use.
func (d *Driver) uniformSlot(location int32, size int) []byte {
	p, ok := d.programs[d.program]
	if !ok || location < 0 || int(location) >= len(p.refl.uniforms) {
		return nil
	}
	u := p.refl.uniforms[location]
	if int(u.size) < size {
		return nil
	}
	return p.uniformData[u.offset : u.offset+uint64(size)]
}

func putFloats(dst []byte, values ...float32) {
	if dst == nil {
		return
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func (d *Driver) UniformMatrix4(location int32, m [16]float32) {
	putFloats(d.uniformSlot(location, 64), m[:]...)
}

// Uniform1i on a texture location selects the unit the texture binding samples.
func (d *Driver) Uniform1i(location int32, v int32) {
	if location >= textureLocationBase {
		if p, ok := d.programs[d.program]; ok {
			if j := int(location - textureLocationBase); j < len(p.units) {
				p.units[j] = v
			}
		}
		return
	}
	if dst := d.uniformSlot(location, 4); dst != nil {
		binary.LittleEndian.PutUint32(dst, uint32(v))
	}
}

func (d *Driver) Uniform1f(location int32, v float32) {
	putFloats(d.uniformSlot(location, 4), v)
}

func (d *Driver) Uniform2f(location int32, x, y float32) {
	putFloats(d.uniformSlot(location, 8), x, y)
}

func (d *Driver) Uniform3f(location int32, x, y, z float32) {
	putFloats(d.uniformSlot(location, 12), x, y, z)
}

func (d *Driver) Uniform4f(location int32, x, y, z, w float32) {
	putFloats(d.uniformSlot(location, 16), x, y, z, w)
}
