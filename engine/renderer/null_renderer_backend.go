package renderer

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/kamstrup/intmap"
)

type nullBuffer struct {
	state BufferState
}

type nullInstance struct {
	state     InstanceState
	transform common.Transform
}

// nullRendererBackendImpl keeps every resource in memory. Handles for buffers and instances
// come from one counter so a stale handle can never alias a live resource of the other kind.
type nullRendererBackendImpl struct {
	retainUploads bool

	next      batch.Handle
	buffers   *intmap.Map[batch.Handle, *nullBuffer]
	instances *intmap.Map[batch.Handle, *nullInstance]
}

var _ rendererBackend = &nullRendererBackendImpl{}

func newNullBackend(retainUploads bool) *nullRendererBackendImpl {
	return &nullRendererBackendImpl{
		retainUploads: retainUploads,
		buffers:       intmap.New[batch.Handle, *nullBuffer](64),
		instances:     intmap.New[batch.Handle, *nullInstance](64),
	}
}

func (b *nullRendererBackendImpl) allocHandle() batch.Handle {
	b.next++
	return b.next
}

func (b *nullRendererBackendImpl) mustBuffer(h batch.Handle) *nullBuffer {
	buf, ok := b.buffers.Get(h)
	if !ok {
		panic(fmt.Sprintf("renderer: unknown buffer handle %d", h))
	}
	return buf
}

func (b *nullRendererBackendImpl) mustInstance(h batch.Handle) *nullInstance {
	inst, ok := b.instances.Get(h)
	if !ok {
		panic(fmt.Sprintf("renderer: unknown instance handle %d", h))
	}
	return inst
}

func (b *nullRendererBackendImpl) CreateBuffer(geometry batch.Handle, capacity int, format batch.Format) batch.Handle {
	h := b.allocHandle()
	b.buffers.Put(h, &nullBuffer{state: BufferState{
		Geometry: geometry,
		Capacity: capacity,
		Format:   format,
	}})
	return h
}

func (b *nullRendererBackendImpl) ReallocateBuffer(buffer batch.Handle, capacity int, format batch.Format) {
	buf := b.mustBuffer(buffer)
	buf.state.Capacity = capacity
	buf.state.Format = format
	buf.state.Data = nil
}

func (b *nullRendererBackendImpl) UploadBuffer(buffer batch.Handle, data []float32) {
	buf := b.mustBuffer(buffer)
	if want := buf.state.Capacity * buf.state.Format.Stride(); len(data) != want {
		panic(fmt.Sprintf("renderer: upload of %d floats into buffer %d sized for %d", len(data), buffer, want))
	}
	buf.state.Uploads++
	if b.retainUploads {
		buf.state.Data = append(buf.state.Data[:0], data...)
	}
}

func (b *nullRendererBackendImpl) SetVisibleCount(buffer batch.Handle, n int) {
	b.mustBuffer(buffer).state.Visible = n
}

func (b *nullRendererBackendImpl) CreateInstance(buffer, scenario batch.Handle) batch.Handle {
	b.mustBuffer(buffer)
	h := b.allocHandle()
	b.instances.Put(h, &nullInstance{
		state:     InstanceState{Base: buffer, Scenario: scenario},
		transform: common.IdentityTransform(),
	})
	return h
}

func (b *nullRendererBackendImpl) SetInstanceTransform(instance batch.Handle, t common.Transform) {
	b.mustInstance(instance).transform = t
}

func (b *nullRendererBackendImpl) SetInstanceScenario(instance, scenario batch.Handle) {
	b.mustInstance(instance).state.Scenario = scenario
}

func (b *nullRendererBackendImpl) SetInstanceBase(instance, buffer batch.Handle) {
	b.mustBuffer(buffer)
	b.mustInstance(instance).state.Base = buffer
}

func (b *nullRendererBackendImpl) SetInstanceVisible(instance batch.Handle, visible bool) {
	b.mustInstance(instance).state.Visible = visible
}

func (b *nullRendererBackendImpl) Free(h batch.Handle) {
	if b.instances.Del(h) {
		return
	}
	if b.buffers.Del(h) {
		return
	}
	panic(fmt.Sprintf("renderer: Free of unknown handle %d", h))
}

func (b *nullRendererBackendImpl) buffer(h batch.Handle) (BufferState, bool) {
	buf, ok := b.buffers.Get(h)
	if !ok {
		return BufferState{}, false
	}
	st := buf.state
	st.Data = slices.Clone(buf.state.Data)
	return st, true
}

func (b *nullRendererBackendImpl) instance(h batch.Handle) (InstanceState, bool) {
	inst, ok := b.instances.Get(h)
	if !ok {
		return InstanceState{}, false
	}
	return inst.state, true
}

func (b *nullRendererBackendImpl) release() {
	b.buffers.Clear()
	b.instances.Clear()
}
