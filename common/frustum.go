package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// NewPlane creates a plane through point with the given normal. The normal is normalized.
//
// Parameters:
//   - normal: the plane normal, pointing into the positive half-space
//   - point: any point on the plane
//
// Returns:
//   - Plane: the normalized plane
func NewPlane(normal, point mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Distance: -n.Dot(point)}
}

// DistanceTo returns the signed distance from the plane to point. Positive values lie in the
// half-space the normal points into.
//
// Parameters:
//   - point: the point to test
//
// Returns:
//   - float32: the signed distance
func (p Plane) DistanceTo(point mgl32.Vec3) float32 {
	return p.Normal[0]*point[0] + p.Normal[1]*point[1] + p.Normal[2]*point[2] + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix in OpenGL clip space
// (z in [-1, 1]), as produced by mgl32.Perspective.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: 16 float32 values representing the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	var f Frustum

	// M[row][col] lives at viewProj[col*4+row]; row r of M is (vp[r], vp[4+r], vp[8+r], vp[12+r]).
	row := func(r int) [4]float32 {
		return [4]float32{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	set := func(index int, a [4]float32, b [4]float32, sign float32) {
		p := &f.Planes[index]
		p.Normal[0] = a[0] + sign*b[0]
		p.Normal[1] = a[1] + sign*b[1]
		p.Normal[2] = a[2] + sign*b[2]
		p.Distance = a[3] + sign*b[3]
	}

	set(FrustumLeft, r3, r0, 1)
	set(FrustumRight, r3, r0, -1)
	set(FrustumBottom, r3, r1, 1)
	set(FrustumTop, r3, r1, -1)
	set(FrustumNear, r3, r2, 1)
	set(FrustumFar, r3, r2, -1)

	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// IsPointVisible reports whether p lies inside or on every plane of the frustum.
//
// Parameters:
//   - p: the world-space point
//
// Returns:
//   - bool: true if the point is inside the frustum
func (f Frustum) IsPointVisible(p mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}

// IsAABBVisible reports whether a local-space box, placed in the world by xf, can be visible.
// The box is rejected only when it lies entirely in the negative half-space of at least one
// plane. The test uses the world-space extents of the transformed box, so it never rejects a
// visible box but may accept a box that only touches the frustum's corner regions.
//
// Parameters:
//   - box: the mesh-local bounding box
//   - xf: the world transform of the box
//
// Returns:
//   - bool: false only if the box is guaranteed to be outside the frustum
func (f Frustum) IsAABBVisible(box AABB, xf Transform) bool {
	center := xf.XformPoint(box.Center())
	half := box.HalfExtents()

	// World-space half extents of the oriented box: |basis| * half.
	var ext mgl32.Vec3
	for r := 0; r < 3; r++ {
		ext[r] = abs32(xf.Basis.At(r, 0))*half[0] +
			abs32(xf.Basis.At(r, 1))*half[1] +
			abs32(xf.Basis.At(r, 2))*half[2]
	}

	for i := range f.Planes {
		p := &f.Planes[i]
		radius := abs32(p.Normal[0])*ext[0] + abs32(p.Normal[1])*ext[1] + abs32(p.Normal[2])*ext[2]
		if p.DistanceTo(center)+radius < 0 {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := float32(math.Sqrt(float64(
		p.Normal[0]*p.Normal[0] +
			p.Normal[1]*p.Normal[1] +
			p.Normal[2]*p.Normal[2],
	)))

	if length > 0 {
		invLen := 1.0 / length
		p.Normal[0] *= invLen
		p.Normal[1] *= invLen
		p.Normal[2] *= invLen
		p.Distance *= invLen
	}
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
