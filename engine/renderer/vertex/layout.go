package vertex

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/go-gl/mathgl/mgl32"
)

// Attribute describes one vertex attribute as the GPU reads it.
type Attribute struct {
	// Name is the struct field name, or the value of its `vertex` tag.
	Name string
	// Components is the number of scalar components (1 to 4).
	Components int32
	// Type is the scalar type of each component.
	Type driver.ScalarType
	// Normalized maps integer components to [0, 1] when read by the shader.
	Normalized bool
	// Size is the byte size of a single component.
	Size int
}

// Bytes returns the byte size of the whole attribute.
func (a Attribute) Bytes() int {
	return int(a.Components) * a.Size
}

// Layout is the attribute list and stride of one vertex record type. A Layout is immutable once built.
type Layout struct {
	// Type is the vertex record type this layout was derived from.
	Type reflect.Type
	// Attributes are ordered by field declaration; an attribute's index is its shader location.
	Attributes []Attribute
	// Stride is the byte distance between consecutive vertices.
	Stride int
}

// AttributeLookup reports which attribute locations a linked program declares.
type AttributeLookup interface {
	// HasAttributeLocation reports whether the program reads a vertex input at location.
	HasAttributeLocation(location int) bool
}

var (
	layouts sync.Map

	fieldTypesMu = &sync.RWMutex{}
	fieldTypes   = map[reflect.Type]Attribute{
		reflect.TypeFor[float32]():      {Components: 1, Type: driver.ScalarFloat, Size: 4},
		reflect.TypeFor[mgl32.Vec2]():   {Components: 2, Type: driver.ScalarFloat, Size: 4},
		reflect.TypeFor[mgl32.Vec3]():   {Components: 3, Type: driver.ScalarFloat, Size: 4},
		reflect.TypeFor[mgl32.Vec4]():   {Components: 4, Type: driver.ScalarFloat, Size: 4},
		reflect.TypeFor[[2]float32]():   {Components: 2, Type: driver.ScalarFloat, Size: 4},
		reflect.TypeFor[[3]float32]():   {Components: 3, Type: driver.ScalarFloat, Size: 4},
		reflect.TypeFor[[4]float32]():   {Components: 4, Type: driver.ScalarFloat, Size: 4},
		reflect.TypeFor[int32]():        {Components: 1, Type: driver.ScalarInt, Size: 4},
		reflect.TypeFor[uint32]():       {Components: 1, Type: driver.ScalarUnsignedInt, Size: 4},
		reflect.TypeFor[common.Color](): {Components: 4, Type: driver.ScalarUnsignedByte, Normalized: true, Size: 1},
	}
)

// RegisterFieldType maps a Go field type to a vertex attribute shape so records can use it.
// The attribute's Name is ignored.
//
// Parameters:
//   - t: the Go type of the field
//   - attr: the attribute shape the field type maps to
func RegisterFieldType(t reflect.Type, attr Attribute) {
	fieldTypesMu.Lock()
	defer fieldTypesMu.Unlock()
	attr.Name = ""
	fieldTypes[t] = attr
}

// Describe returns the layout of a vertex record type, building and caching it on first use.
// Fields are read in declaration order. A field tagged `vertex:"-"` is rejected, since skipping it would
// leave a gap the stride cannot describe.
//
// Parameters:
//   - t: the vertex record struct type
//
// Returns:
//   - *Layout: the cached layout
//   - error: an error if t is not a struct, a field type has no attribute mapping, or the struct has padding
func Describe(t reflect.Type) (*Layout, error) {
	if cached, ok := layouts.Load(t); ok {
		return cached.(*Layout), nil
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("vertex type %v is not a struct", t)
	}

	fieldTypesMu.RLock()
	defer fieldTypesMu.RUnlock()

	l := &Layout{Type: t, Attributes: make([]Attribute, 0, t.NumField())}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Tag.Get("vertex") == "-" {
			return nil, fmt.Errorf("vertex type %s: field %s cannot be skipped", t, f.Name)
		}
		attr, ok := fieldTypes[f.Type]
		if !ok {
			return nil, fmt.Errorf("vertex type %s: field %s has unsupported type %s", t, f.Name, f.Type)
		}
		attr.Name = f.Name
		if name := f.Tag.Get("vertex"); name != "" {
			attr.Name = name
		}
		l.Attributes = append(l.Attributes, attr)
		l.Stride += attr.Bytes()
	}

	if uintptr(l.Stride) != t.Size() {
		return nil, fmt.Errorf("vertex type %s: attribute stride %d does not match struct size %d", t, l.Stride, t.Size())
	}

	actual, _ := layouts.LoadOrStore(t, l)
	return actual.(*Layout), nil
}

// LayoutOf returns the layout of the vertex record type T. It panics if T cannot be described,
// which is a programming error in the vertex type declaration.
func LayoutOf[T any]() *Layout {
	l, err := Describe(reflect.TypeFor[T]())
	if err != nil {
		panic(err)
	}
	return l
}

// Offset returns the byte offset of attribute index within a vertex.
func (l *Layout) Offset(index int) int {
	offset := 0
	for i := 0; i < index && i < len(l.Attributes); i++ {
		offset += l.Attributes[i].Bytes()
	}
	return offset
}

// Apply points each attribute at the vertex buffer currently bound to the array target.
// An attribute location is enabled only when the program declares an input there, and disabled otherwise.
//
// Parameters:
//   - drv: the driver to issue attribute state on
//   - program: the program that will be used to draw
//   - baseOffset: the byte offset of the first vertex inside the buffer
func (l *Layout) Apply(drv driver.Driver, program AttributeLookup, baseOffset int) {
	offset := baseOffset
	for i, attr := range l.Attributes {
		index := uint32(i)
		if program.HasAttributeLocation(i) {
			drv.EnableVertexAttribArray(index)
			drv.VertexAttribPointer(index, attr.Components, attr.Type, attr.Normalized, int32(l.Stride), offset)
		} else {
			drv.DisableVertexAttribArray(index)
		}
		offset += attr.Bytes()
	}
}
