package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
)

// Viewport holds the camera that is currently rendering, if any. It is the source the batch
// frame updater queries for the culling frustum.
type Viewport interface {
	batch.CameraSource

	// Camera returns the active camera, or nil when none is set.
	Camera() Camera

	// SetCamera makes cam the active camera. nil clears it.
	//
	// Parameters:
	//   - cam: the camera to activate
	SetCamera(cam Camera)
}

type viewport struct {
	mu     *sync.RWMutex
	active Camera
}

var _ Viewport = &viewport{}

// NewViewport creates a Viewport with cam active. cam may be nil.
//
// Parameters:
//   - cam: the initially active camera
//
// Returns:
//   - Viewport: the new viewport
func NewViewport(cam Camera) Viewport {
	return &viewport{
		mu:     &sync.RWMutex{},
		active: cam,
	}
}

func (v *viewport) Camera() Camera {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active
}

func (v *viewport) SetCamera(cam Camera) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = cam
}

func (v *viewport) ActiveFrustum() (common.Frustum, bool) {
	v.mu.RLock()
	cam := v.active
	v.mu.RUnlock()
	if cam == nil {
		return common.Frustum{}, false
	}
	return cam.Frustum(), true
}
