package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the positional state of a 2D camera: the world point at the center of the view,
// the zoom factor and the rotation. Camera reads from the controller and computes its transform.
type CameraController interface {
	// Position returns the world point shown at the center of the viewport.
	//
	// Returns:
	//   - mgl32.Vec2: the world-space center
	Position() mgl32.Vec2

	// SetPosition moves the view center to a world point.
	//
	// Parameters:
	//   - p: the world-space center
	SetPosition(p mgl32.Vec2)

	// Zoom returns the current zoom factor, where 1 maps one world unit to one pixel.
	//
	// Returns:
	//   - float32: the zoom factor
	Zoom() float32

	// SetZoom sets the zoom factor directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - zoom: the new zoom factor
	SetZoom(zoom float32)

	// ZoomBy scales the zoom factor by (1 + delta*ZoomSpeed), clamped to min/max bounds.
	// Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	ZoomBy(delta float32)

	// Rotation returns the view rotation in radians.
	Rotation() float32

	// SetRotation sets the view rotation in radians.
	SetRotation(radians float32)

	// Rotate adds delta radians to the view rotation.
	Rotate(delta float32)

	// PanBy translates the view center by a screen-space offset. The offset is scaled by PanSpeed,
	// divided by the zoom factor and rotated into world space, so panning feels the same at any zoom.
	//
	// Parameters:
	//   - dx: pixels to the right
	//   - dy: pixels down
	PanBy(dx, dy float32)

	// MinZoom returns the smallest allowed zoom factor.
	MinZoom() float32

	// MaxZoom returns the largest allowed zoom factor.
	MaxZoom() float32

	// PanSpeed returns the pan speed multiplier.
	PanSpeed() float32

	// ZoomSpeed returns the zoom speed multiplier.
	ZoomSpeed() float32
}
