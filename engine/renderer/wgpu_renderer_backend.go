package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kamstrup/intmap"
)

type wgpuBuffer struct {
	buf   *wgpu.Buffer
	state BufferState
}

type wgpuInstance struct {
	state     InstanceState
	transform common.Transform
}

// wgpuRendererBackendImpl mirrors batch buffers into GPU storage buffers on a headless device.
// Instances are bookkeeping only: drawing them is the job of whoever owns the render pass.
type wgpuRendererBackendImpl struct {
	gpu     *wgpu.Instance
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue

	next      batch.Handle
	buffers   *intmap.Map[batch.Handle, *wgpuBuffer]
	instances *intmap.Map[batch.Handle, *wgpuInstance]
}

var _ rendererBackend = &wgpuRendererBackendImpl{}

func newWGPUBackend(forceFallbackAdapter bool) (*wgpuRendererBackendImpl, error) {
	w := &wgpuRendererBackendImpl{
		gpu:       wgpu.CreateInstance(nil),
		buffers:   intmap.New[batch.Handle, *wgpuBuffer](64),
		instances: intmap.New[batch.Handle, *wgpuInstance](64),
	}

	a, err := w.gpu.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		w.gpu.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Batch Device",
	})
	if err != nil {
		a.Release()
		w.gpu.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) allocHandle() batch.Handle {
	b.next++
	return b.next
}

// createGPUBuffer allocates a storage buffer large enough for capacity slots of format.
// Device allocation failures are fatal: the batching core treats the renderer as infallible.
func (b *wgpuRendererBackendImpl) createGPUBuffer(h batch.Handle, capacity int, format batch.Format) *wgpu.Buffer {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            fmt.Sprintf("Batch Instance Buffer %d", h),
		Size:             uint64(capacity * format.Stride() * 4),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create instance buffer (%d slots, %s): %v", capacity, format, err))
	}
	return buf
}

func (b *wgpuRendererBackendImpl) mustBuffer(h batch.Handle) *wgpuBuffer {
	buf, ok := b.buffers.Get(h)
	if !ok {
		panic(fmt.Sprintf("renderer: unknown buffer handle %d", h))
	}
	return buf
}

func (b *wgpuRendererBackendImpl) mustInstance(h batch.Handle) *wgpuInstance {
	inst, ok := b.instances.Get(h)
	if !ok {
		panic(fmt.Sprintf("renderer: unknown instance handle %d", h))
	}
	return inst
}

func (b *wgpuRendererBackendImpl) CreateBuffer(geometry batch.Handle, capacity int, format batch.Format) batch.Handle {
	h := b.allocHandle()
	b.buffers.Put(h, &wgpuBuffer{
		buf: b.createGPUBuffer(h, capacity, format),
		state: BufferState{
			Geometry: geometry,
			Capacity: capacity,
			Format:   format,
		},
	})
	return h
}

// ReallocateBuffer swaps in a new GPU buffer. The old contents are not copied; the batching
// core re-uploads the full staging buffer right after growing.
func (b *wgpuRendererBackendImpl) ReallocateBuffer(buffer batch.Handle, capacity int, format batch.Format) {
	buf := b.mustBuffer(buffer)
	replacement := b.createGPUBuffer(buffer, capacity, format)
	buf.buf.Release()
	buf.buf = replacement
	buf.state.Capacity = capacity
	buf.state.Format = format
}

func (b *wgpuRendererBackendImpl) UploadBuffer(buffer batch.Handle, data []float32) {
	buf := b.mustBuffer(buffer)
	if want := buf.state.Capacity * buf.state.Format.Stride(); len(data) > want {
		panic(fmt.Sprintf("renderer: upload of %d floats into buffer %d sized for %d", len(data), buffer, want))
	}
	b.queue.WriteBuffer(buf.buf, 0, common.SliceToBytes(data))
	buf.state.Uploads++
}

func (b *wgpuRendererBackendImpl) SetVisibleCount(buffer batch.Handle, n int) {
	b.mustBuffer(buffer).state.Visible = n
}

func (b *wgpuRendererBackendImpl) CreateInstance(buffer, scenario batch.Handle) batch.Handle {
	b.mustBuffer(buffer)
	h := b.allocHandle()
	b.instances.Put(h, &wgpuInstance{
		state:     InstanceState{Base: buffer, Scenario: scenario},
		transform: common.IdentityTransform(),
	})
	return h
}

func (b *wgpuRendererBackendImpl) SetInstanceTransform(instance batch.Handle, t common.Transform) {
	b.mustInstance(instance).transform = t
}

func (b *wgpuRendererBackendImpl) SetInstanceScenario(instance, scenario batch.Handle) {
	b.mustInstance(instance).state.Scenario = scenario
}

func (b *wgpuRendererBackendImpl) SetInstanceBase(instance, buffer batch.Handle) {
	b.mustBuffer(buffer)
	b.mustInstance(instance).state.Base = buffer
}

func (b *wgpuRendererBackendImpl) SetInstanceVisible(instance batch.Handle, visible bool) {
	b.mustInstance(instance).state.Visible = visible
}

func (b *wgpuRendererBackendImpl) Free(h batch.Handle) {
	if b.instances.Del(h) {
		return
	}
	if buf, ok := b.buffers.Get(h); ok {
		buf.buf.Release()
		b.buffers.Del(h)
		return
	}
	panic(fmt.Sprintf("renderer: Free of unknown handle %d", h))
}

func (b *wgpuRendererBackendImpl) buffer(h batch.Handle) (BufferState, bool) {
	buf, ok := b.buffers.Get(h)
	if !ok {
		return BufferState{}, false
	}
	return buf.state, true
}

func (b *wgpuRendererBackendImpl) instance(h batch.Handle) (InstanceState, bool) {
	inst, ok := b.instances.Get(h)
	if !ok {
		return InstanceState{}, false
	}
	return inst.state, true
}

func (b *wgpuRendererBackendImpl) release() {
	b.buffers.ForEach(func(_ batch.Handle, buf *wgpuBuffer) bool {
		buf.buf.Release()
		return true
	})
	b.buffers = intmap.New[batch.Handle, *wgpuBuffer](64)
	b.instances = intmap.New[batch.Handle, *wgpuInstance](64)

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.gpu != nil {
		b.gpu.Release()
		b.gpu = nil
	}
}
