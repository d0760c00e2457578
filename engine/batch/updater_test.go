package batch_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
)

func TestFrameUpdater_NoCamera_ScenarioC(t *testing.T) {
	r := newNullRenderer(t)
	reg := batch.NewRegistry(r)
	key := batch.GroupKey{World: &testWorld{}, Mesh: unitMesh(1)}
	for i := 0; i < 10; i++ {
		reg.Register(key, newTestObject(mgl32.Vec3{0, 0, -5}))
	}

	for _, cam := range []batch.CameraSource{nil, &fixedCamera{}} {
		r.ResetStats()
		u := batch.NewFrameUpdater(reg, cam)

		stats := u.Update()

		assert.True(t, stats.Skipped)
		assert.Zero(t, r.Stats().Uploads)
		assert.Zero(t, r.Stats().VisibleUpdates)
	}
}

func TestFrameUpdater_EditorHintPacksEverything(t *testing.T) {
	r := newNullRenderer(t)
	reg := batch.NewRegistry(r)
	key := batch.GroupKey{World: &testWorld{}, Mesh: unitMesh(1)}
	reg.Register(key, newTestObject(mgl32.Vec3{0, 0, -5}))
	reg.Register(key, newTestObject(mgl32.Vec3{0, 0, 5000}))

	u := batch.NewFrameUpdater(reg, nil, batch.WithEditorHint(func() bool { return true }))
	stats := u.Update()

	assert.False(t, stats.Skipped)
	assert.False(t, stats.CullingApplied)
	assert.Equal(t, 2, stats.Visible)
	assert.Equal(t, 1, stats.Uploads)

	info, _ := reg.Group(key)
	buf, ok := r.Buffer(info.Buffer)
	require.True(t, ok)
	assert.Equal(t, 2, buf.Visible)
}

func TestFrameUpdater_Culling(t *testing.T) {
	r := newNullRenderer(t)
	reg := batch.NewRegistry(r)
	key := batch.GroupKey{World: &testWorld{}, Mesh: unitMesh(1)}

	reg.Register(key, newTestObject(mgl32.Vec3{0, 0, -10}))
	reg.Register(key, newTestObject(mgl32.Vec3{0, 0, 10}))    // behind
	reg.Register(key, newTestObject(mgl32.Vec3{0, 0, -500}))  // past far plane
	reg.Register(key, newTestObject(mgl32.Vec3{200, 0, -10})) // far right
	reg.Register(key, newTestObject(mgl32.Vec3{10.3, 0, -10}))

	u := batch.NewFrameUpdater(reg, lookDownNegZ(), batch.WithPackWorkers(1))
	stats := u.Update()

	assert.True(t, stats.CullingApplied)
	assert.Equal(t, 5, stats.Members)
	assert.Equal(t, 2, stats.Visible)

	info, _ := reg.Group(key)
	assert.Equal(t, 2, info.Visible)
	stride := batch.FormatTransform.Stride()
	// Visible members are compacted to the front in id order.
	assert.Equal(t, float32(0), info.Staging[3])
	assert.Equal(t, float32(-10), info.Staging[11])
	assert.Equal(t, float32(10.3), info.Staging[stride+3])

	buf, ok := r.Buffer(info.Buffer)
	require.True(t, ok)
	assert.Equal(t, 2, buf.Visible)
	assert.Equal(t, info.Staging, buf.Data)
}

func TestFrameUpdater_CullingDisabled(t *testing.T) {
	r := newNullRenderer(t)
	reg := batch.NewRegistry(r, batch.WithCullingEnabled(false))
	key := batch.GroupKey{World: &testWorld{}, Mesh: unitMesh(1)}
	for i := 0; i < 20; i++ {
		reg.Register(key, newTestObject(mgl32.Vec3{float32(i) * 100, 0, 50}))
	}

	u := batch.NewFrameUpdater(reg, lookDownNegZ())
	stats := u.Update()

	assert.False(t, stats.CullingApplied)
	assert.Equal(t, 20, stats.Visible)
	assert.Equal(t, stats.Members, stats.Visible)
}

func TestFrameUpdater_ColoredPacking(t *testing.T) {
	r := newNullRenderer(t)
	reg := batch.NewRegistry(r)
	key := batch.GroupKey{World: &testWorld{}, Mesh: unitMesh(1), Colored: true}

	obj := newTestObject(mgl32.Vec3{1, 2, -5})
	obj.color = batch.Color{1, 2, 3, 4}
	reg.Register(key, obj)

	u := batch.NewFrameUpdater(reg, lookDownNegZ())
	u.Update()

	info, _ := reg.Group(key)
	slot := info.Staging[:batch.FormatTransformColor.Stride()]
	assert.Equal(t, []float32{1, 0, 0, 1, 0, 1, 0, 2, 0, 0, 1, -5}, slot[:common.TransformFloats])
	assert.Equal(t, batch.Color{1, 2, 3, 4}, batch.UnpackColor(slot[common.TransformFloats]))
}

func TestFrameUpdater_ParallelMatchesSerial(t *testing.T) {
	build := func(workers int) []batch.GroupInfo {
		r := newNullRenderer(t)
		reg := batch.NewRegistry(r)
		world := &testWorld{}
		for m := 0; m < 6; m++ {
			mesh := unitMesh(batch.Handle(m + 1))
			for i := 0; i < 300; i++ {
				pos := mgl32.Vec3{float32(i%40 - 20), float32(m - 3), -float32(i % 90)}
				reg.Register(batch.GroupKey{World: world, Mesh: mesh, Colored: i%3 == 0}, newTestObject(pos))
			}
		}
		u := batch.NewFrameUpdater(reg, lookDownNegZ(), batch.WithPackWorkers(workers))
		u.Update()
		return reg.Groups()
	}

	serial := build(1)
	parallel := build(4)
	require.Len(t, parallel, len(serial))
	for i := range serial {
		assert.Equal(t, serial[i].Visible, parallel[i].Visible)
		assert.LessOrEqual(t, parallel[i].Visible, len(parallel[i].Members))
		assert.Equal(t, serial[i].Staging, parallel[i].Staging)
	}
}

func TestFrameUpdater_SetCameraSource(t *testing.T) {
	r := newNullRenderer(t)
	reg := batch.NewRegistry(r)
	reg.Register(batch.GroupKey{World: &testWorld{}, Mesh: unitMesh(1)}, newTestObject(mgl32.Vec3{0, 0, -3}))

	u := batch.NewFrameUpdater(reg, nil)
	assert.True(t, u.Update().Skipped)

	u.SetCameraSource(lookDownNegZ())
	stats := u.Update()
	assert.False(t, stats.Skipped)
	assert.Equal(t, 1, stats.Visible)
	assert.Same(t, reg, u.Registry())
}

func TestNewFrameUpdater_RequiresRegistry(t *testing.T) {
	assert.Panics(t, func() { batch.NewFrameUpdater(nil, nil) })
}

func BenchmarkFrameUpdater_Update(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run(map[int]string{1: "serial", 4: "parallel"}[workers], func(b *testing.B) {
			r := newNullRenderer(b)
			reg := batch.NewRegistry(r)
			world := &testWorld{}
			for m := 0; m < 8; m++ {
				mesh := unitMesh(batch.Handle(m + 1))
				for i := 0; i < 5000; i++ {
					pos := mgl32.Vec3{float32(i%100 - 50), float32(i%37 - 18), -float32(i % 120)}
					reg.Register(batch.GroupKey{World: world, Mesh: mesh}, newTestObject(pos))
				}
			}
			u := batch.NewFrameUpdater(reg, lookDownNegZ(), batch.WithPackWorkers(workers))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				u.Update()
			}
		})
	}
}
