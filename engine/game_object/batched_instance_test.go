package game_object_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/game_object"
	"github.com/Carmen-Shannon/oxy-batch/engine/mesh"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

type testTree struct {
	reg batch.Registry
}

func (tt *testTree) Scenario() batch.Handle   { return 1 }
func (tt *testTree) Registry() batch.Registry { return tt.reg }

func newTree(t *testing.T) *testTree {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeNull)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return &testTree{reg: batch.NewRegistry(r)}
}

func TestBatchedInstance_Eligibility(t *testing.T) {
	tree := newTree(t)
	m := mesh.NewBoxMesh(mgl32.Vec3{1, 1, 1})
	bi := game_object.NewBatchedInstance()

	// No mesh, not in tree.
	_, ok := bi.MemberID()
	assert.False(t, ok)

	bi.EnterTree(tree)
	assert.True(t, bi.InTree())
	_, ok = bi.MemberID()
	assert.False(t, ok, "no mesh yet")

	bi.SetMesh(m)
	id, ok := bi.MemberID()
	require.True(t, ok)
	key, _ := bi.GroupKey()
	assert.True(t, tree.reg.Contains(key, id))

	bi.SetVisible(false)
	_, ok = bi.MemberID()
	assert.False(t, ok)
	assert.False(t, tree.reg.Contains(key, id))
	assert.Zero(t, tree.reg.GroupCount())

	bi.SetVisible(true)
	newID, ok := bi.MemberID()
	require.True(t, ok)
	assert.Greater(t, newID, id)

	bi.ExitTree()
	assert.False(t, bi.InTree())
	_, ok = bi.MemberID()
	assert.False(t, ok)
	assert.Zero(t, tree.reg.MemberCount())

	// Leaving twice is harmless.
	bi.ExitTree()
}

func TestBatchedInstance_EnterTreeTwicePanics(t *testing.T) {
	tree := newTree(t)
	bi := game_object.NewBatchedInstance()
	bi.EnterTree(tree)
	assert.Panics(t, func() { bi.EnterTree(tree) })
	assert.Panics(t, func() { game_object.NewBatchedInstance().EnterTree(nil) })
}

func TestBatchedInstance_ToggleColorMovesGroup(t *testing.T) {
	tree := newTree(t)
	m := mesh.NewBoxMesh(mgl32.Vec3{1, 1, 1})
	bi := game_object.NewBatchedInstance(game_object.WithMesh(m))
	bi.EnterTree(tree)

	plainKey, _ := bi.GroupKey()
	plainID, _ := bi.MemberID()
	assert.False(t, plainKey.Colored)

	bi.SetUseColor(true)
	coloredKey, ok := bi.GroupKey()
	require.True(t, ok)
	coloredID, _ := bi.MemberID()

	assert.True(t, coloredKey.Colored)
	assert.Greater(t, coloredID, plainID)
	assert.False(t, tree.reg.Contains(plainKey, plainID))
	assert.True(t, tree.reg.Contains(coloredKey, coloredID))
	assert.Equal(t, 1, tree.reg.GroupCount())
}

func TestBatchedInstance_SetColorReregistersWhenColored(t *testing.T) {
	tree := newTree(t)
	m := mesh.NewBoxMesh(mgl32.Vec3{1, 1, 1})

	plain := game_object.NewBatchedInstance(game_object.WithMesh(m))
	plain.EnterTree(tree)
	before, _ := plain.MemberID()
	plain.SetColor(batch.Color{1, 2, 3, 4})
	after, _ := plain.MemberID()
	assert.Equal(t, before, after, "uncolored instances keep their membership")

	colored := game_object.NewBatchedInstance(game_object.WithMesh(m), game_object.WithUseColor(true))
	colored.EnterTree(tree)
	before, _ = colored.MemberID()
	colored.SetColor(batch.Color{5, 6, 7, 8})
	after, _ = colored.MemberID()
	assert.Greater(t, after, before)
	assert.Equal(t, batch.Color{5, 6, 7, 8}, colored.InstanceColor())
}

func TestBatchedInstance_SetMeshMovesGroup(t *testing.T) {
	tree := newTree(t)
	a := mesh.NewBoxMesh(mgl32.Vec3{1, 1, 1})
	b := mesh.NewBoxMesh(mgl32.Vec3{2, 2, 2})
	bi := game_object.NewBatchedInstance(game_object.WithMesh(a))
	bi.EnterTree(tree)

	bi.SetMesh(b)
	key, ok := bi.GroupKey()
	require.True(t, ok)
	assert.Equal(t, b, key.Mesh)
	assert.Equal(t, 1, tree.reg.GroupCount())

	bi.SetMesh(nil)
	_, ok = bi.MemberID()
	assert.False(t, ok)
	assert.Zero(t, tree.reg.GroupCount())
	assert.Nil(t, bi.Mesh())
}

func TestBatchedInstance_ColorFloatsAndTransform(t *testing.T) {
	bi := game_object.NewBatchedInstance(game_object.WithName("crate"))
	assert.Equal(t, "crate", bi.Name())
	assert.Equal(t, batch.White, bi.Color())
	assert.True(t, bi.Visible())
	assert.False(t, bi.UseColor())

	bi.SetColorFloats(1, 0.5, 0, 1)
	assert.Equal(t, batch.Color{255, 127, 0, 255}, bi.Color())
	r, g, b, a := bi.ColorFloats()
	assert.InDelta(t, 1, r, 1e-6)
	assert.InDelta(t, 127.0/255, g, 1e-6)
	assert.InDelta(t, 0, b, 1e-6)
	assert.InDelta(t, 1, a, 1e-6)

	bi.SetTransform(common.IdentityTransform().Translated(mgl32.Vec3{1, 2, 3}))
	bi.Translate(mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, bi.GlobalTransform().Origin)
	assert.Equal(t, bi.Transform(), bi.GlobalTransform())
	assert.NotEqual(t, game_object.NewBatchedInstance().ID(), bi.ID())
}
