package batch_test

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

type testWorld struct {
	scenario batch.Handle
}

func (w *testWorld) Scenario() batch.Handle { return w.scenario }

type testMesh struct {
	geometry batch.Handle
	aabb     common.AABB
}

func (m *testMesh) AABB() common.AABB      { return m.aabb }
func (m *testMesh) Geometry() batch.Handle { return m.geometry }

// unitMesh returns a mesh whose AABB is the unit cube centered on the origin.
func unitMesh(geometry batch.Handle) *testMesh {
	return &testMesh{
		geometry: geometry,
		aabb:     common.NewAABB(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}),
	}
}

type testObject struct {
	mu    sync.Mutex
	xf    common.Transform
	color batch.Color
}

// testColor packs to a finite float, so staging buffers compare equal with reflect.DeepEqual.
var testColor = batch.Color{10, 20, 30, 40}

func newTestObject(pos mgl32.Vec3) *testObject {
	return &testObject{xf: common.IdentityTransform().Translated(pos), color: testColor}
}

func (o *testObject) GlobalTransform() common.Transform {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.xf
}

func (o *testObject) InstanceColor() batch.Color {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.color
}

// fixedCamera reports a constant frustum, or none.
type fixedCamera struct {
	frustum common.Frustum
	active  bool
}

func (c *fixedCamera) ActiveFrustum() (common.Frustum, bool) {
	return c.frustum, c.active
}

// lookDownNegZ returns a camera at the origin looking down -Z with a 90 degree field of view,
// near 0.1 and far 100.
func lookDownNegZ() *fixedCamera {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	vp := proj.Mul4(view)
	return &fixedCamera{frustum: common.ExtractFrustumFromMatrix(vp[:]), active: true}
}

// newNullRenderer returns a null renderer retaining uploads, closed when the test ends.
func newNullRenderer(t testing.TB) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeNull)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

// isIdentitySlot reports whether slot holds the identity 3x4 rows followed by zeros.
func isIdentitySlot(slot []float32) bool {
	want := []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}
	for i, v := range want {
		if slot[i] != v {
			return false
		}
	}
	for _, v := range slot[len(want):] {
		if v != 0 {
			return false
		}
	}
	return true
}
