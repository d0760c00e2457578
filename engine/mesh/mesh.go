package mesh

import (
	"strconv"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/go-gl/mathgl/mgl32"
)

// geometryCount generates unique geometry handles for every mesh created in the process.
var geometryCount atomic.Uint64

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name     string
	geometry batch.Handle
	aabb     common.AABB
	vertices []float32
}

// Mesh is an immutable geometry resource shared by every instance drawn through the same batch.
// The geometry handle is what batch buffers are bound to; the AABB is the local-space bounds
// used for frustum culling.
type Mesh interface {
	batch.Mesh

	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns the vertex positions as packed xyz triples.
	//
	// Returns:
	//   - []float32: the vertex positions, may be empty
	Vertices() []float32

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: len(Vertices()) / 3
	VertexCount() int
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh with a fresh geometry handle. Without vertices or an explicit AABB
// the bounds are an empty box at the origin.
//
// Parameters:
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{
		geometry: batch.Handle(geometryCount.Add(1)),
	}
	for _, option := range options {
		option(m)
	}
	if m.name == "" {
		m.name = "mesh_" + strconv.FormatUint(uint64(m.geometry), 10)
	}
	return m
}

// NewBoxMesh creates a box mesh of the given size centered on the origin, as 12 triangles.
//
// Parameters:
//   - size: edge lengths along X, Y and Z
//   - options: further options, applied after the box geometry
//
// Returns:
//   - Mesh: the box mesh
func NewBoxMesh(size mgl32.Vec3, options ...MeshBuilderOption) Mesh {
	h := size.Mul(0.5)
	corner := func(x, y, z float32) [3]float32 {
		return [3]float32{x * h[0], y * h[1], z * h[2]}
	}
	c := [8][3]float32{
		corner(-1, -1, -1), corner(1, -1, -1), corner(1, 1, -1), corner(-1, 1, -1),
		corner(-1, -1, 1), corner(1, -1, 1), corner(1, 1, 1), corner(-1, 1, 1),
	}
	faces := [6][4]int{
		{4, 5, 6, 7}, // +Z
		{1, 0, 3, 2}, // -Z
		{5, 1, 2, 6}, // +X
		{0, 4, 7, 3}, // -X
		{7, 6, 2, 3}, // +Y
		{0, 1, 5, 4}, // -Y
	}

	verts := make([]float32, 0, 6*6*3)
	for _, f := range faces {
		for _, i := range [6]int{f[0], f[1], f[2], f[0], f[2], f[3]} {
			verts = append(verts, c[i][0], c[i][1], c[i][2])
		}
	}

	opts := append([]MeshBuilderOption{WithName("box"), WithVertices(verts)}, options...)
	return NewMesh(opts...)
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Geometry() batch.Handle {
	return m.geometry
}

func (m *mesh) AABB() common.AABB {
	return m.aabb
}

func (m *mesh) Vertices() []float32 {
	return m.vertices
}

func (m *mesh) VertexCount() int {
	return len(m.vertices) / 3
}

// boundsOf returns the AABB enclosing the packed xyz positions.
func boundsOf(vertices []float32) common.AABB {
	if len(vertices) < 3 {
		return common.AABB{}
	}
	lo := mgl32.Vec3{vertices[0], vertices[1], vertices[2]}
	hi := lo
	for i := 3; i+2 < len(vertices); i += 3 {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], vertices[i+a])
			hi[a] = max(hi[a], vertices[i+a])
		}
	}
	return common.NewAABB(lo, hi)
}
