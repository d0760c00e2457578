// Package batch groups scene objects that share a mesh into one instanced draw per
// (world, mesh, color mode). A Registry owns the groups and their renderer resources;
// a FrameUpdater culls and packs every group's members into its staging buffer once per tick.
package batch

import (
	"github.com/Carmen-Shannon/oxy-batch/common"
)

// ChunkSlots is the number of slots a batch buffer grows by. Slot capacity is always a multiple of it.
const ChunkSlots = 256

// Handle is an opaque renderer resource identifier. The zero Handle is never issued by a renderer.
type Handle uint64

// MemberID identifies one registered object. IDs increase for the lifetime of a Registry and are never reused.
type MemberID uint64

// Format describes the per-slot layout of a batch buffer.
type Format uint8

const (
	// FormatTransform stores a 3x4 row-major transform per slot (12 floats).
	FormatTransform Format = iota
	// FormatTransformColor stores a 3x4 transform followed by one packed RGBA8 color (13 floats).
	FormatTransformColor
)

// Stride returns the number of floats per slot for the format.
func (f Format) Stride() int {
	if f == FormatTransformColor {
		return common.TransformFloats + 1
	}
	return common.TransformFloats
}

// String returns a short name for logging.
func (f Format) String() string {
	if f == FormatTransformColor {
		return "transform+color"
	}
	return "transform"
}

// Renderer is the narrow contract the batching core needs from a rendering backend.
// Calls are assumed to succeed when given handles the renderer issued.
type Renderer interface {
	// CreateBuffer allocates an instance buffer of capacity slots bound to the given geometry.
	//
	// Parameters:
	//   - geometry: the mesh geometry the instances draw
	//   - capacity: the number of slots to allocate
	//   - format: the per-slot layout
	//
	// Returns:
	//   - Handle: the buffer handle
	CreateBuffer(geometry Handle, capacity int, format Format) Handle

	// ReallocateBuffer resizes an existing instance buffer to capacity slots.
	//
	// Parameters:
	//   - buffer: the buffer handle
	//   - capacity: the new slot count
	//   - format: the per-slot layout
	ReallocateBuffer(buffer Handle, capacity int, format Format)

	// UploadBuffer replaces the whole content of the buffer with data.
	//
	// Parameters:
	//   - buffer: the buffer handle
	//   - data: capacity * stride floats
	UploadBuffer(buffer Handle, data []float32)

	// SetVisibleCount sets how many leading slots of the buffer are drawn.
	//
	// Parameters:
	//   - buffer: the buffer handle
	//   - n: the number of visible instances
	SetVisibleCount(buffer Handle, n int)

	// CreateInstance creates a render instance drawing buffer inside scenario.
	//
	// Parameters:
	//   - buffer: the buffer the instance draws
	//   - scenario: the world scenario the instance lives in
	//
	// Returns:
	//   - Handle: the instance handle
	CreateInstance(buffer, scenario Handle) Handle

	// SetInstanceTransform sets the instance's base transform.
	SetInstanceTransform(instance Handle, t common.Transform)

	// SetInstanceScenario moves the instance into scenario.
	SetInstanceScenario(instance, scenario Handle)

	// SetInstanceBase binds the buffer the instance draws.
	SetInstanceBase(instance, buffer Handle)

	// SetInstanceVisible shows or hides the instance.
	SetInstanceVisible(instance Handle, visible bool)

	// Free releases a buffer or instance handle.
	Free(h Handle)
}

// World is the rendering scenario a batch lives in.
type World interface {
	// Scenario returns the renderer scenario handle of the world.
	Scenario() Handle
}

// Mesh is a geometry resource shared by the members of a batch.
type Mesh interface {
	// AABB returns the mesh's local-space bounding box.
	AABB() common.AABB

	// Geometry returns the renderer handle passed to CreateBuffer unchanged.
	Geometry() Handle
}

// Object is a registered scene object. The registry never owns it; the caller must
// Unregister it before the object goes away.
type Object interface {
	// GlobalTransform returns the object's current world transform.
	GlobalTransform() common.Transform

	// InstanceColor returns the color packed into colored batches.
	InstanceColor() Color
}

// CameraSource supplies the frustum of the active viewpoint.
type CameraSource interface {
	// ActiveFrustum returns the world-space frustum of the active camera, or false when there is none.
	ActiveFrustum() (common.Frustum, bool)
}

// GroupKey identifies a batch group. World and Mesh must be comparable values (typically pointers).
type GroupKey struct {
	World   World
	Mesh    Mesh
	Colored bool
}

// Format returns the buffer format used by the key's group.
func (k GroupKey) Format() Format {
	if k.Colored {
		return FormatTransformColor
	}
	return FormatTransform
}
