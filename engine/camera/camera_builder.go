package camera

type CameraBuilderOption func(*cameraImpl)

// WithViewport sets the camera's viewport size in pixels.
//
// Parameters:
//   - width, height: viewport size
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's viewport
func WithViewport(width, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewportWidth = max(width, 1)
		c.viewportHeight = max(height, 1)
	}
}

// WithYUp makes the projection place the pixel origin at the bottom-left instead of the top-left.
//
// Returns:
//   - CameraBuilderOption: a function that flips the projection's Y axis
func WithYUp() CameraBuilderOption {
	return func(c *cameraImpl) {
		c.yUp = true
	}
}

// WithController attaches a controller to the camera.
// After all options are applied, the camera recomputes its matrices from the controller's state.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
