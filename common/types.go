// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Rectangle is an integer pixel rectangle with a top-left origin.
type Rectangle struct {
	X, Y          int
	Width, Height int
}

// NewRectangle returns a Rectangle with the given position and size.
func NewRectangle(x, y, width, height int) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// Right returns the exclusive right edge of the rectangle.
func (r Rectangle) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge of the rectangle.
func (r Rectangle) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rectangle) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rectangle) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Color is a packed 8-bit RGBA color. Its memory layout matches a 4 x unsigned byte vertex attribute.
type Color struct {
	R, G, B, A uint8
}

var (
	White          = Color{255, 255, 255, 255}
	Black          = Color{0, 0, 0, 255}
	Red            = Color{255, 0, 0, 255}
	Green          = Color{0, 255, 0, 255}
	Blue           = Color{0, 0, 255, 255}
	Yellow         = Color{255, 255, 0, 255}
	Transparent    = Color{0, 0, 0, 0}
	CornflowerBlue = Color{100, 149, 237, 255}
)

// RGBA returns a Color from its 8-bit components.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Floats returns the color components normalized to [0, 1].
//
// Returns:
//   - [4]float32: the red, green, blue and alpha components
func (c Color) Floats() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}
