package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
)

// Stats counts the calls a Renderer completed. A call that panics on a bad handle is not counted.
type Stats struct {
	BufferCreates   int `yaml:"buffer_creates"`
	Reallocations   int `yaml:"reallocations"`
	Uploads         int `yaml:"uploads"`
	UploadedFloats  int `yaml:"uploaded_floats"`
	VisibleUpdates  int `yaml:"visible_updates"`
	InstanceCreates int `yaml:"instance_creates"`
	Frees           int `yaml:"frees"`
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend     rendererBackend
	backendType RendererBackendType
	stats       Stats

	forceFallbackAdapter bool
	retainUploads        bool
}

// Renderer is a batch.Renderer backed by a selectable backend, with call statistics and
// read access to the backend's view of its buffers and instances.
// Thread-safe for concurrent access.
type Renderer interface {
	batch.Renderer

	// BackendType returns the backend this renderer was created with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Stats returns the call counters accumulated since creation or the last ResetStats.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// ResetStats zeroes the call counters.
	ResetStats()

	// Buffer returns the backend state of a buffer handle.
	//
	// Parameters:
	//   - h: the buffer handle
	//
	// Returns:
	//   - BufferState: the buffer state
	//   - bool: false if the handle is not a live buffer
	Buffer(h batch.Handle) (BufferState, bool)

	// Instance returns the backend state of an instance handle.
	//
	// Parameters:
	//   - h: the instance handle
	//
	// Returns:
	//   - InstanceState: the instance state
	//   - bool: false if the handle is not a live instance
	Instance(h batch.Handle) (InstanceState, bool)

	// Close releases every resource still held by the backend.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type.
//
// Parameters:
//   - backendType: the type of backend to use (Null or WGPU)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: an error if the backend could not be initialized
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		backendType:   backendType,
		retainUploads: true,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		b, err := newWGPUBackend(r.forceFallbackAdapter)
		if err != nil {
			return nil, fmt.Errorf("renderer: init wgpu backend: %w", err)
		}
		r.backend = b
	default:
		r.backend = newNullBackend(r.retainUploads)
	}

	return r, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) ResetStats() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = Stats{}
}

func (r *renderer) Buffer(h batch.Handle) (BufferState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.buffer(h)
}

func (r *renderer) Instance(h batch.Handle) (InstanceState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.instance(h)
}

func (r *renderer) CreateBuffer(geometry batch.Handle, capacity int, format batch.Format) batch.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.backend.CreateBuffer(geometry, capacity, format)
	r.stats.BufferCreates++
	return h
}

func (r *renderer) ReallocateBuffer(buffer batch.Handle, capacity int, format batch.Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ReallocateBuffer(buffer, capacity, format)
	r.stats.Reallocations++
}

func (r *renderer) UploadBuffer(buffer batch.Handle, data []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.UploadBuffer(buffer, data)
	r.stats.Uploads++
	r.stats.UploadedFloats += len(data)
}

func (r *renderer) SetVisibleCount(buffer batch.Handle, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetVisibleCount(buffer, n)
	r.stats.VisibleUpdates++
}

func (r *renderer) CreateInstance(buffer, scenario batch.Handle) batch.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.backend.CreateInstance(buffer, scenario)
	r.stats.InstanceCreates++
	return h
}

func (r *renderer) SetInstanceTransform(instance batch.Handle, t common.Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetInstanceTransform(instance, t)
}

func (r *renderer) SetInstanceScenario(instance, scenario batch.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetInstanceScenario(instance, scenario)
}

func (r *renderer) SetInstanceBase(instance, buffer batch.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetInstanceBase(instance, buffer)
}

func (r *renderer) SetInstanceVisible(instance batch.Handle, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetInstanceVisible(instance, visible)
}

func (r *renderer) Free(h batch.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Free(h)
	r.stats.Frees++
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.release()
}
