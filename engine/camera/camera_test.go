package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func assertVec2(t *testing.T, expected, actual mgl32.Vec2) {
	t.Helper()
	assert.InDelta(t, expected.X(), actual.X(), eps)
	assert.InDelta(t, expected.Y(), actual.Y(), eps)
}

func TestDefaultCameraCentersOrigin(t *testing.T) {
	c := NewCamera(WithViewport(800, 600))

	assertVec2(t, mgl32.Vec2{400, 300}, c.WorldToScreen(mgl32.Vec2{0, 0}))
	assertVec2(t, mgl32.Vec2{0, 0}, c.ScreenToWorld(mgl32.Vec2{400, 300}))

	clip := c.Transform().Mul4x1(mgl32.Vec4{-400, -300, 0, 1})
	assert.InDelta(t, -1, clip.X(), eps)
	assert.InDelta(t, 1, clip.Y(), eps)
}

func TestCameraFollowsController(t *testing.T) {
	ctrl := NewCameraController(WithPosition(100, 50), WithZoom(2))
	c := NewCamera(WithViewport(200, 100), WithController(ctrl))

	assertVec2(t, mgl32.Vec2{100, 50}, c.WorldToScreen(mgl32.Vec2{100, 50}))
	assertVec2(t, mgl32.Vec2{120, 50}, c.WorldToScreen(mgl32.Vec2{110, 50}))

	lo, hi := c.VisibleBounds()
	assertVec2(t, mgl32.Vec2{50, 25}, lo)
	assertVec2(t, mgl32.Vec2{150, 75}, hi)

	ctrl.SetPosition(mgl32.Vec2{0, 0})
	assertVec2(t, mgl32.Vec2{100, 50}, c.WorldToScreen(mgl32.Vec2{100, 50}))
	c.Update()
	assertVec2(t, mgl32.Vec2{300, 150}, c.WorldToScreen(mgl32.Vec2{100, 50}))
}

func TestCameraRotation(t *testing.T) {
	ctrl := NewCameraController(WithRotation(mgl32.DegToRad(90)))
	c := NewCamera(WithViewport(100, 100), WithController(ctrl))

	assertVec2(t, mgl32.Vec2{50, 40}, c.WorldToScreen(mgl32.Vec2{10, 0}))
	assertVec2(t, mgl32.Vec2{10, 0}, c.ScreenToWorld(mgl32.Vec2{50, 40}))
}

func TestCameraYUpProjection(t *testing.T) {
	c := NewCamera(WithViewport(100, 100), WithYUp())
	clip := c.ProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -1, clip.Y(), eps)
}

func TestControllerZoomIsClamped(t *testing.T) {
	ctrl := NewCameraController(WithZoomLimits(4, 0.5), WithZoom(10))
	assert.Equal(t, float32(0.5), ctrl.MinZoom())
	assert.Equal(t, float32(4), ctrl.MaxZoom())
	assert.Equal(t, float32(4), ctrl.Zoom())

	ctrl.SetZoom(0.1)
	assert.Equal(t, float32(0.5), ctrl.Zoom())

	ctrl = NewCameraController(WithZoomSpeed(0.5))
	ctrl.ZoomBy(1)
	assert.InDelta(t, 1.5, ctrl.Zoom(), eps)
	ctrl.ZoomBy(-1)
	assert.InDelta(t, 0.75, ctrl.Zoom(), eps)
}

func TestControllerPanScalesWithZoom(t *testing.T) {
	ctrl := NewCameraController(WithZoom(2), WithPanSpeed(1))
	ctrl.PanBy(10, 4)
	assertVec2(t, mgl32.Vec2{5, 2}, ctrl.Position())

	ctrl.SetZoom(1)
	ctrl.SetRotation(mgl32.DegToRad(90))
	ctrl.PanBy(10, 0)
	assertVec2(t, mgl32.Vec2{5, 12}, ctrl.Position())

	ctrl.Rotate(-mgl32.DegToRad(90))
	assert.InDelta(t, 0, ctrl.Rotation(), eps)
}

func TestSetViewportRecomputes(t *testing.T) {
	c := NewCamera()
	w, h := c.Viewport()
	assert.Equal(t, float32(1), w)
	assert.Equal(t, float32(1), h)

	c.SetViewport(640, 480)
	assertVec2(t, mgl32.Vec2{320, 240}, c.WorldToScreen(mgl32.Vec2{}))

	c.SetController(nil)
	assert.NotNil(t, c.Controller())
}
