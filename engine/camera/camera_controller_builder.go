package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial world point at the center of the view.
//
// Parameters:
//   - x: X coordinate of the view center
//   - y: Y coordinate of the view center
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(x, y float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = mgl32.Vec2{x, y}
	}
}

// WithZoom sets the initial zoom factor.
//
// Parameters:
//   - zoom: the zoom factor, 1 for pixel-exact
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom
func WithZoom(zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoom = zoom
	}
}

// WithZoomLimits sets the zoom bounds.
//
// Parameters:
//   - minZoom: the smallest zoom factor
//   - maxZoom: the largest zoom factor
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom limits
func WithZoomLimits(minZoom, maxZoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minZoom = minZoom
		cc.maxZoom = maxZoom
	}
}

// WithRotation sets the initial view rotation in radians.
func WithRotation(radians float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotation = radians
	}
}

// WithPanSpeed sets the pan speed multiplier.
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithZoomSpeed sets the zoom speed multiplier.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
