package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeNull selects the in-memory backend. It keeps every uploaded buffer on the CPU
	// and never touches a GPU, which makes it suitable for tests and headless benchmarks.
	BackendTypeNull RendererBackendType = iota

	// BackendTypeWGPU selects the headless WebGPU backend. Instance buffers are GPU storage
	// buffers written through the device queue.
	BackendTypeWGPU
)

// String returns the backend name.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return "null"
	}
}

// ParseBackendType maps a backend name to its type. An empty name selects the null backend.
//
// Parameters:
//   - name: "null" or "wgpu"
//
// Returns:
//   - RendererBackendType: the backend type
//   - error: when the name is not recognised
func ParseBackendType(name string) (RendererBackendType, error) {
	switch name {
	case "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	case "null", "":
		return BackendTypeNull, nil
	}
	return BackendTypeNull, fmt.Errorf("unknown renderer backend %q", name)
}

// BufferState describes a buffer as the backend sees it.
type BufferState struct {
	// Geometry is the mesh geometry handle the buffer was created for.
	Geometry batch.Handle

	// Capacity is the allocated slot count.
	Capacity int

	// Format is the per-slot layout.
	Format batch.Format

	// Visible is the last visible instance count.
	Visible int

	// Uploads counts full-buffer uploads.
	Uploads int

	// Data is a copy of the last upload. Only the null backend retains data.
	Data []float32
}

// InstanceState describes a render instance as the backend sees it.
type InstanceState struct {
	// Base is the buffer the instance draws.
	Base batch.Handle

	// Scenario is the world scenario of the instance.
	Scenario batch.Handle

	// Visible reports whether the instance is shown.
	Visible bool
}

// rendererBackend is implemented by each backend. The Renderer serializes calls into it.
type rendererBackend interface {
	batch.Renderer

	buffer(h batch.Handle) (BufferState, bool)
	instance(h batch.Handle) (InstanceState, bool)
	release()
}
