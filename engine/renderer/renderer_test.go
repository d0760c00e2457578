package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

func newNull(t *testing.T, options ...renderer.RendererBuilderOption) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeNull, options...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		name    string
		want    renderer.RendererBackendType
		wantErr bool
	}{
		{"null", renderer.BackendTypeNull, false},
		{"", renderer.BackendTypeNull, false},
		{"wgpu", renderer.BackendTypeWGPU, false},
		{"webgpu", renderer.BackendTypeWGPU, false},
		{"vulkan", renderer.BackendTypeNull, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderer.ParseBackendType(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "wgpu", renderer.BackendTypeWGPU.String())
	assert.Equal(t, "null", renderer.BackendTypeNull.String())
}

func TestNullRenderer_BufferLifecycle(t *testing.T) {
	r := newNull(t)
	assert.Equal(t, renderer.BackendTypeNull, r.BackendType())

	h := r.CreateBuffer(5, 256, batch.FormatTransform)
	data := make([]float32, 256*batch.FormatTransform.Stride())
	data[0] = 3
	r.UploadBuffer(h, data)
	r.SetVisibleCount(h, 17)

	st, ok := r.Buffer(h)
	require.True(t, ok)
	assert.Equal(t, batch.Handle(5), st.Geometry)
	assert.Equal(t, 256, st.Capacity)
	assert.Equal(t, 17, st.Visible)
	assert.Equal(t, 1, st.Uploads)
	assert.Equal(t, data, st.Data)

	// The returned data is a copy.
	st.Data[0] = 99
	again, _ := r.Buffer(h)
	assert.Equal(t, float32(3), again.Data[0])

	r.ReallocateBuffer(h, 512, batch.FormatTransform)
	assert.Panics(t, func() { r.UploadBuffer(h, data) }, "upload sized for the old capacity")
	r.UploadBuffer(h, make([]float32, 512*batch.FormatTransform.Stride()))

	stats := r.Stats()
	assert.Equal(t, 1, stats.BufferCreates)
	assert.Equal(t, 1, stats.Reallocations)
	assert.Equal(t, 2, stats.Uploads, "the rejected upload is not counted")
	assert.Equal(t, 1, stats.VisibleUpdates)

	r.Free(h)
	_, ok = r.Buffer(h)
	assert.False(t, ok)
	assert.Panics(t, func() { r.Free(h) }, "double free")
}

func TestNullRenderer_InstanceLifecycle(t *testing.T) {
	r := newNull(t)
	buf := r.CreateBuffer(1, 256, batch.FormatTransformColor)
	other := r.CreateBuffer(2, 256, batch.FormatTransformColor)

	inst := r.CreateInstance(buf, 7)
	assert.NotEqual(t, buf, inst, "buffers and instances share one handle space")

	r.SetInstanceTransform(inst, common.IdentityTransform())
	r.SetInstanceScenario(inst, 8)
	r.SetInstanceBase(inst, other)
	r.SetInstanceVisible(inst, true)

	st, ok := r.Instance(inst)
	require.True(t, ok)
	assert.Equal(t, renderer.InstanceState{Base: other, Scenario: 8, Visible: true}, st)

	assert.Panics(t, func() { r.SetInstanceBase(inst, 999) })
	assert.Panics(t, func() { r.CreateInstance(999, 1) })

	r.Free(inst)
	_, ok = r.Instance(inst)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Stats().InstanceCreates)
	assert.Equal(t, 1, r.Stats().Frees)
}

func TestRenderer_StatsSkipRejectedCalls(t *testing.T) {
	r := newNull(t)
	buf := r.CreateBuffer(1, 256, batch.FormatTransform)
	inst := r.CreateInstance(buf, 1)

	assert.Panics(t, func() { r.CreateInstance(999, 1) })
	assert.Panics(t, func() { r.ReallocateBuffer(999, 512, batch.FormatTransform) })
	assert.Panics(t, func() { r.UploadBuffer(buf, make([]float32, 3)) })
	assert.Panics(t, func() { r.SetVisibleCount(999, 1) })

	r.Free(inst)
	assert.Panics(t, func() { r.Free(inst) })

	assert.Equal(t, renderer.Stats{
		BufferCreates:   1,
		InstanceCreates: 1,
		Frees:           1,
	}, r.Stats())
}

func TestNullRenderer_WithoutRetainedUploads(t *testing.T) {
	r := newNull(t, renderer.WithRetainUploads(false))
	h := r.CreateBuffer(1, 256, batch.FormatTransform)
	r.UploadBuffer(h, make([]float32, 256*batch.FormatTransform.Stride()))

	st, ok := r.Buffer(h)
	require.True(t, ok)
	assert.Equal(t, 1, st.Uploads)
	assert.Empty(t, st.Data)
	assert.Equal(t, 256*12, r.Stats().UploadedFloats)
}

func TestRenderer_ResetStatsAndClose(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeNull)
	require.NoError(t, err)

	h := r.CreateBuffer(1, 256, batch.FormatTransform)
	r.ResetStats()
	assert.Equal(t, renderer.Stats{}, r.Stats())

	r.Close()
	_, ok := r.Buffer(h)
	assert.False(t, ok)
}

func TestWGPURenderer_BufferLifecycle(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU)
	if err != nil {
		t.Skipf("no WebGPU adapter available: %v", err)
	}
	t.Cleanup(r.Close)

	h := r.CreateBuffer(3, 256, batch.FormatTransformColor)
	inst := r.CreateInstance(h, 2)
	r.UploadBuffer(h, make([]float32, 256*batch.FormatTransformColor.Stride()))
	r.ReallocateBuffer(h, 512, batch.FormatTransformColor)
	r.UploadBuffer(h, make([]float32, 512*batch.FormatTransformColor.Stride()))

	st, ok := r.Buffer(h)
	require.True(t, ok)
	assert.Equal(t, 512, st.Capacity)

	ist, ok := r.Instance(inst)
	require.True(t, ok)
	assert.Equal(t, h, ist.Base)

	r.Free(inst)
	r.Free(h)
	_, ok = r.Buffer(h)
	assert.False(t, ok)
}
