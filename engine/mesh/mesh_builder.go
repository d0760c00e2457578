package mesh

import (
	"github.com/Carmen-Shannon/oxy-batch/common"
)

// MeshBuilderOption is a functional option for configuring a Mesh.
type MeshBuilderOption func(*mesh)

// WithName sets the mesh identifier.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithVertices sets the vertex positions and derives the AABB from them.
//
// Parameters:
//   - vertices: packed xyz positions
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithVertices(vertices []float32) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices = vertices
		m.aabb = boundsOf(vertices)
	}
}

// WithAABB overrides the local-space bounds. Apply after WithVertices to take effect.
//
// Parameters:
//   - aabb: the bounding box
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithAABB(aabb common.AABB) MeshBuilderOption {
	return func(m *mesh) {
		m.aabb = aabb
	}
}
