package batch

import (
	"github.com/Carmen-Shannon/oxy-batch/common"
)

// buffer is the CPU-side staging copy of one renderer instance buffer.
// len(data) is always capacity * format.Stride().
type buffer struct {
	handle   Handle
	format   Format
	capacity int
	data     []float32
	growths  int
}

// newBuffer allocates a ChunkSlots buffer on the renderer, fills every slot with the
// identity transform and uploads it.
func newBuffer(r Renderer, geometry Handle, format Format) *buffer {
	b := &buffer{
		handle:   r.CreateBuffer(geometry, ChunkSlots, format),
		format:   format,
		capacity: ChunkSlots,
		data:     make([]float32, ChunkSlots*format.Stride()),
	}
	b.resetSlots(0, ChunkSlots)
	r.UploadBuffer(b.handle, b.data)
	return b
}

// ensure grows the buffer by whole chunks until it holds at least slots entries.
// New slots are reset to identity and the full buffer is re-uploaded. It reports whether it grew.
func (b *buffer) ensure(r Renderer, slots int) bool {
	if slots <= b.capacity {
		return false
	}

	oldCap := b.capacity
	newCap := oldCap
	for newCap < slots {
		newCap += ChunkSlots
	}

	stride := b.format.Stride()
	grown := make([]float32, newCap*stride)
	copy(grown, b.data)
	b.data = grown
	b.capacity = newCap
	b.resetSlots(oldCap, newCap)
	b.growths++

	r.ReallocateBuffer(b.handle, newCap, b.format)
	r.UploadBuffer(b.handle, b.data)
	return true
}

// slot returns the floats backing slot i.
func (b *buffer) slot(i int) []float32 {
	stride := b.format.Stride()
	return b.data[i*stride : (i+1)*stride]
}

// resetSlots writes the identity transform and a zero color into slots [from, to).
func (b *buffer) resetSlots(from, to int) {
	for i := from; i < to; i++ {
		s := b.slot(i)
		common.PackIdentityRows(s)
		if b.format == FormatTransformColor {
			s[common.TransformFloats] = 0
		}
	}
}
