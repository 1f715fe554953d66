package wgpudriver

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
)

// wgslTypeLayout holds the byte size and alignment for a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is a single field extracted from a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block extracted during parsing.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// uniformField is one member of the uniform block with its placement in the block.
type uniformField struct {
	name   string
	offset uint64
	size   uint64
}

// textureBinding is a sampled texture declared in the texture group with its paired sampler.
type textureBinding struct {
	name           string
	binding        uint32
	samplerBinding uint32
	viewDimension  wgpu.TextureViewDimension
}

// reflection is what a program exposes to the driver: vertex inputs, uniform block layout, and textures.
type reflection struct {
	vertexEntry   string
	fragmentEntry string
	attributes    []driver.AttributeInfo
	uniforms      []uniformField
	blockSize     uint64
	textures      []textureBinding
}

// wgslPrimitiveLayoutMap maps WGSL scalar, vector, and matrix type names to their size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat2x2<f32>": {16, 8},
	"mat2x2f":     {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// wgslTextureDimMap maps sampled texture base names to their view dimension.
var wgslTextureDimMap = map[string]wgpu.TextureViewDimension{
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_cube":     wgpu.TextureViewDimensionCube,
}

const (
	// uniformGroup holds the single uniform block at binding 0.
	uniformGroup = 0
	// textureGroup holds sampled textures, each followed by its sampler at the next binding.
	textureGroup = 1
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> u: Uniforms;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// reflectProgram extracts the program interface from a vertex and a fragment WGSL source.
// The two sources may be the same module.
//
// Parameters:
//   - vertexSource: WGSL containing the @vertex entry point and its input struct
//   - fragmentSource: WGSL containing the @fragment entry point
//
// Returns:
//   - reflection: the merged program interface
func reflectProgram(vertexSource, fragmentSource string) reflection {
	vs := stripComments(vertexSource)
	fs := stripComments(fragmentSource)

	r := reflection{
		vertexEntry:   entryPoint(vertexEntryRegex, vs),
		fragmentEntry: entryPoint(fragmentEntryRegex, fs),
	}

	vsStructs := parseStructBlocks(vs)
	for _, ps := range vsStructs {
		if !isVertexInputStruct(ps) {
			continue
		}
		for _, f := range ps.fields {
			r.attributes = append(r.attributes, driver.AttributeInfo{Name: f.name, Location: int32(f.location)})
		}
		break
	}

	structs := append(vsStructs, parseStructBlocks(fs)...)
	textures := make(map[string]textureBinding)
	samplers := make(map[uint32]bool)
	for _, src := range []string{vs, fs} {
		for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(src, -1) {
			group, _ := strconv.Atoi(m[1])
			binding, _ := strconv.Atoi(m[2])
			addressSpace := strings.TrimSpace(m[3])
			name := strings.TrimSpace(m[4])
			typeName := strings.TrimSpace(m[5])

			switch {
			case group == uniformGroup && binding == 0 && addressSpace == "uniform" && r.uniforms == nil:
				r.uniforms, r.blockSize = blockLayout(typeName, structs)
			case group == textureGroup && typeName == "sampler":
				samplers[uint32(binding)] = true
			case group == textureGroup && strings.HasPrefix(typeName, "texture_"):
				base, _, _ := strings.Cut(typeName, "<")
				dim, ok := wgslTextureDimMap[base]
				if !ok {
					continue
				}
				textures[name] = textureBinding{
					name:           name,
					binding:        uint32(binding),
					samplerBinding: uint32(binding) + 1,
					viewDimension:  dim,
				}
			}
		}
	}

	for _, t := range textures {
		if samplers[t.samplerBinding] {
			r.textures = append(r.textures, t)
		}
	}
	sort.Slice(r.textures, func(i, j int) bool { return r.textures[i].binding < r.textures[j].binding })
	return r
}

// blockLayout places every member of the named struct using WGSL uniform layout rules.
func blockLayout(typeName string, structs []parsedStruct) ([]uniformField, uint64) {
	known := computeStructSizes(structs)
	for _, ps := range structs {
		if ps.name != typeName {
			continue
		}
		var (
			fields   []uniformField
			offset   uint64
			maxAlign uint64 = 16
		)
		for _, f := range ps.fields {
			layout, ok := resolveTypeLayout(f.typeName, known)
			if !ok {
				return nil, 0
			}
			offset = roundUpAlign(layout.align, offset)
			fields = append(fields, uniformField{name: f.name, offset: offset, size: layout.size})
			offset += layout.size
			maxAlign = max(maxAlign, layout.align)
		}
		return fields, roundUpAlign(maxAlign, offset)
	}
	return nil, 0
}

// entryPoint returns the first function name matched by re, or an empty string.
func entryPoint(re *regexp.Regexp, source string) string {
	if m := re.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return ""
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives
// and previously computed struct layouts. Handles fixed-size arrays (array<T, N>).
//
// Parameters:
//   - typeName: the WGSL type name to resolve, e.g. "f32", "Light", "array<vec4f, 4>"
//   - knownTypes: already resolved struct layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false for runtime-sized arrays or unknown types
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	if strings.HasPrefix(typeName, "array<") && strings.HasSuffix(typeName, ">") {
		inner := typeName[6 : len(typeName)-1]
		parts := splitAtTopLevelCommas(inner)
		if len(parts) != 2 {
			return wgslTypeLayout{}, false
		}
		elem, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return wgslTypeLayout{}, false
		}
		// Uniform arrays have a 16 byte element stride.
		stride := roundUpAlign(max(elem.align, 16), elem.size)
		return wgslTypeLayout{count * stride, max(elem.align, 16)}, true
	}

	return wgslTypeLayout{}, false
}

// computeStructSizes computes the size and alignment of all parsed structs, resolving
// structs that contain other structs over repeated passes.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		progress := false
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}
		remaining = next
		if !progress {
			break
		}
	}
	return resolved
}

// computeStructLayout computes one struct's size and alignment. Builtin fields are skipped.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		layout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(layout.align, offset) + layout.size
		maxAlign = max(maxAlign, layout.align)
	}
	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// parseStructBlocks finds all struct { ... } blocks in comment-free WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block, extracting @location and @builtin
// attributes along with the field name and type.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		field.isBuiltin = builtinRegex.MatchString(line)
		if m := locationRegex.FindStringSubmatch(line); m != nil {
			if loc, err := strconv.Atoi(m[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}

// isVertexInputStruct reports whether the struct has @location fields and no @builtin fields.
// This distinguishes vertex inputs from vertex outputs, which carry @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// splitAtTopLevelCommas splits s at commas that are not nested inside angle brackets,
// so array<T, N> stays one piece.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line and (nested) block comments from WGSL source.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case depth == 0 && source[i] == '/' && source[i+1] == '/':
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
