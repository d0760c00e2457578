package scene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/game_object"
	"github.com/Carmen-Shannon/oxy-batch/engine/mesh"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/scene"
)

func newRegistry(t *testing.T) (batch.Registry, renderer.Renderer) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeNull)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return batch.NewRegistry(r), r
}

func TestScene_AddRemove(t *testing.T) {
	reg, _ := newRegistry(t)
	s := scene.NewScene(reg, scene.WithName("level"))
	m := mesh.NewBoxMesh(mgl32.Vec3{1, 1, 1})

	a := game_object.NewBatchedInstance(game_object.WithMesh(m))
	b := game_object.NewBatchedInstance(game_object.WithMesh(m))
	s.Add(a, b, a)

	assert.Equal(t, "level", s.Name())
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 2, reg.MemberCount())
	assert.True(t, a.InTree())
	assert.Same(t, a, s.Get(a.ID()))

	s.Remove(a.ID())
	assert.False(t, a.InTree())
	assert.Nil(t, s.Get(a.ID()))
	assert.Equal(t, 1, reg.MemberCount())

	s.Remove(a.ID())
	assert.Equal(t, 1, s.Count())
}

func TestScene_SharedRegistryDistinctWorlds(t *testing.T) {
	reg, r := newRegistry(t)
	m := mesh.NewBoxMesh(mgl32.Vec3{1, 1, 1})
	s1 := scene.NewScene(reg, scene.WithInstances(game_object.NewBatchedInstance(game_object.WithMesh(m))))
	s2 := scene.NewScene(reg, scene.WithInstances(game_object.NewBatchedInstance(game_object.WithMesh(m))))

	assert.NotEqual(t, s1.Scenario(), s2.Scenario())
	require.Equal(t, 2, reg.GroupCount(), "same mesh in two worlds makes two groups")

	for _, g := range reg.Groups() {
		inst, ok := r.Instance(g.Instance)
		require.True(t, ok)
		assert.Equal(t, g.Key.World.Scenario(), inst.Scenario)
	}
}

func TestScene_ClearAndForEach(t *testing.T) {
	reg, _ := newRegistry(t)
	m := mesh.NewBoxMesh(mgl32.Vec3{1, 1, 1})
	s := scene.NewScene(reg, scene.WithActive(false))
	assert.False(t, s.Active())
	s.SetActive(true)
	assert.True(t, s.Active())

	for i := 0; i < 5; i++ {
		s.Add(game_object.NewBatchedInstance(game_object.WithMesh(m)))
	}

	seen := 0
	s.ForEach(func(game_object.BatchedInstance) bool {
		seen++
		return true
	})
	assert.Equal(t, 5, seen)

	s.Clear()
	assert.Zero(t, s.Count())
	assert.Zero(t, reg.GroupCount())
}

func TestNewScene_RequiresRegistry(t *testing.T) {
	assert.Panics(t, func() { scene.NewScene(nil) })
}
