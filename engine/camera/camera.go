package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	viewportWidth  float32
	viewportHeight float32
	yUp            bool

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	inverseViewMatrix    mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for the 2D camera.
// The camera maps world space to viewport pixels using the position, zoom and rotation of an attached
// CameraController, then projects pixels orthographically. The combined matrix is the batch transform.
type Camera interface {
	// Viewport returns the viewport size in pixels.
	//
	// Returns:
	//   - width, height: viewport size
	Viewport() (width, height float32)

	// SetViewport sets the viewport size in pixels and recomputes matrices.
	// Call it when the window framebuffer is resized.
	//
	// Parameters:
	//   - width, height: viewport size
	SetViewport(width, height float32)

	// ViewMatrix returns the world-to-pixel matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the pixel-to-clip orthographic projection.
	ProjectionMatrix() mgl32.Mat4

	// Transform returns the combined world-to-clip matrix, suitable for SpriteBatch.BeginWithTransform.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	Transform() mgl32.Mat4

	// ScreenToWorld converts a viewport pixel position to a world position.
	//
	// Parameters:
	//   - p: the pixel position, top-left origin
	//
	// Returns:
	//   - mgl32.Vec2: the world position under p
	ScreenToWorld(p mgl32.Vec2) mgl32.Vec2

	// WorldToScreen converts a world position to a viewport pixel position.
	WorldToScreen(p mgl32.Vec2) mgl32.Vec2

	// VisibleBounds returns the axis-aligned world rectangle covering the viewport.
	//
	// Returns:
	//   - lo, hi: the world-space corners
	VisibleBounds() (lo, hi mgl32.Vec2)

	// Controller returns the attached CameraController.
	Controller() CameraController

	// SetController attaches a CameraController to the camera and recomputes matrices.
	//
	// Parameters:
	//   - ctrl: the controller to attach, nil for a default controller
	SetController(ctrl CameraController)

	// Update reads the controller state and recomputes matrices.
	// Should be called once per frame (typically in the tick callback).
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new 2D Camera with a 1x1 viewport and a default controller.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                   &sync.Mutex{},
		viewportWidth:        1,
		viewportHeight:       1,
		viewMatrix:           mgl32.Ident4(),
		projectionMatrix:     mgl32.Ident4(),
		viewProjectionMatrix: mgl32.Ident4(),
		inverseViewMatrix:    mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Viewport() (width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewportWidth, c.viewportHeight
}

func (c *cameraImpl) SetViewport(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewportWidth = max(width, 1)
	c.viewportHeight = max(height, 1)
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) Transform() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ScreenToWorld(p mgl32.Vec2) mgl32.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewMatrix.Mul4x1(p.Vec4(0, 1)).Vec2()
}

func (c *cameraImpl) WorldToScreen(p mgl32.Vec2) mgl32.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix.Mul4x1(p.Vec4(0, 1)).Vec2()
}

func (c *cameraImpl) VisibleBounds() (lo, hi mgl32.Vec2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	corners := [4]mgl32.Vec2{
		{0, 0},
		{c.viewportWidth, 0},
		{0, c.viewportHeight},
		{c.viewportWidth, c.viewportHeight},
	}
	for i, corner := range corners {
		w := c.inverseViewMatrix.Mul4x1(corner.Vec4(0, 1)).Vec2()
		if i == 0 {
			lo, hi = w, w
			continue
		}
		lo = mgl32.Vec2{min(lo.X(), w.X()), min(lo.Y(), w.Y())}
		hi = mgl32.Vec2{max(hi.X(), w.X()), max(hi.Y(), w.Y())}
	}
	return lo, hi
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctrl == nil {
		ctrl = NewCameraController()
	}
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection, view-projection and inverse view matrices
// from the controller state. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	position := c.controller.Position()
	zoom := c.controller.Zoom()
	rotation := c.controller.Rotation()
	w, h := c.viewportWidth, c.viewportHeight

	c.viewMatrix = mgl32.Translate3D(w/2, h/2, 0).
		Mul4(mgl32.HomogRotate3DZ(-rotation)).
		Mul4(mgl32.Scale3D(zoom, zoom, 1)).
		Mul4(mgl32.Translate3D(-position.X(), -position.Y(), 0))
	c.inverseViewMatrix = c.viewMatrix.Inv()

	if c.yUp {
		c.projectionMatrix = mgl32.Ortho2D(0, w, 0, h)
	} else {
		c.projectionMatrix = mgl32.Ortho2D(0, w, h, 0)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
