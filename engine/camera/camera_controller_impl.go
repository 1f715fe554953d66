package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec2
	zoom     float32
	rotation float32

	minZoom float32
	maxZoom float32

	panSpeed  float32
	zoomSpeed float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new 2D camera controller centered on the origin at zoom 1.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		zoom:      1.0,
		minZoom:   0.1,
		maxZoom:   16.0,
		panSpeed:  1.0,
		zoomSpeed: 0.1,
	}

	for _, option := range options {
		option(cc)
	}

	if cc.minZoom > cc.maxZoom {
		cc.minZoom, cc.maxZoom = cc.maxZoom, cc.minZoom
	}
	cc.zoom = common.Clamp(cc.zoom, cc.minZoom, cc.maxZoom)
	return cc
}

func (cc *cameraControllerImpl) Position() mgl32.Vec2 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(p mgl32.Vec2) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = p
}

func (cc *cameraControllerImpl) Zoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoom
}

func (cc *cameraControllerImpl) SetZoom(zoom float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom = common.Clamp(zoom, cc.minZoom, cc.maxZoom)
}

func (cc *cameraControllerImpl) ZoomBy(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom = common.Clamp(cc.zoom*(1+delta*cc.zoomSpeed), cc.minZoom, cc.maxZoom)
}

func (cc *cameraControllerImpl) Rotation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotation
}

func (cc *cameraControllerImpl) SetRotation(radians float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation = radians
}

func (cc *cameraControllerImpl) Rotate(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation += delta
}

func (cc *cameraControllerImpl) PanBy(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	sin, cos := common.SinCos(cc.rotation)
	sx := dx * cc.panSpeed / cc.zoom
	sy := dy * cc.panSpeed / cc.zoom
	cc.position = cc.position.Add(mgl32.Vec2{sx*cos - sy*sin, sx*sin + sy*cos})
}

func (cc *cameraControllerImpl) MinZoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minZoom
}

func (cc *cameraControllerImpl) MaxZoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxZoom
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}
