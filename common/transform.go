// Package common contains the plain math types shared across the engine: transforms, bounding boxes and
// frustum planes. They are value types, not interface-wrapped structs.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformFloats is the number of floats a Transform occupies when packed as a 3x4 row-major matrix.
const TransformFloats = 12

// Transform is an affine 3D transform made of a 3x3 basis (rotation and scale, column-major)
// and a translation origin.
type Transform struct {
	// Basis holds the rotation/scale columns. Basis.Col(0) is the local X axis in parent space.
	Basis mgl32.Mat3

	// Origin is the translation component.
	Origin mgl32.Vec3
}

// IdentityTransform returns a Transform with an identity basis and a zero origin.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{Basis: mgl32.Ident3()}
}

// NewTransform builds a Transform from a translation, Euler rotation (radians, applied Y * X * Z)
// and a per-axis scale.
//
// Parameters:
//   - origin: translation in parent space
//   - rotation: rotation angles in radians around X, Y and Z
//   - scale: scale factors along each local axis
//
// Returns:
//   - Transform: the composed transform
func NewTransform(origin, rotation, scale mgl32.Vec3) Transform {
	rot := mgl32.Rotate3DY(rotation.Y()).
		Mul3(mgl32.Rotate3DX(rotation.X())).
		Mul3(mgl32.Rotate3DZ(rotation.Z()))
	return Transform{
		Basis:  rot.Mul3(mgl32.Diag3(scale)),
		Origin: origin,
	}
}

// Translated returns a copy of the transform moved by offset in parent space.
//
// Parameters:
//   - offset: translation to add to the origin
//
// Returns:
//   - Transform: the translated transform
func (t Transform) Translated(offset mgl32.Vec3) Transform {
	t.Origin = t.Origin.Add(offset)
	return t
}

// Mul composes t with child so that the result maps child-local points through child and then t.
//
// Parameters:
//   - child: the transform applied first
//
// Returns:
//   - Transform: t * child
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Basis:  t.Basis.Mul3(child.Basis),
		Origin: t.XformPoint(child.Origin),
	}
}

// XformPoint transforms a point from local space into parent space.
//
// Parameters:
//   - p: the local-space point
//
// Returns:
//   - mgl32.Vec3: the transformed point
func (t Transform) XformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return t.Basis.Mul3x1(p).Add(t.Origin)
}

// PackRows writes the transform into dst as a 3x4 row-major matrix: each row holds the
// row of the basis for one axis followed by that axis' translation. dst must hold at
// least TransformFloats elements.
//
// Parameters:
//   - dst: destination slice
func (t Transform) PackRows(dst []float32) {
	_ = dst[TransformFloats-1]
	for row := 0; row < 3; row++ {
		dst[row*4+0] = t.Basis.At(row, 0)
		dst[row*4+1] = t.Basis.At(row, 1)
		dst[row*4+2] = t.Basis.At(row, 2)
		dst[row*4+3] = t.Origin[row]
	}
}

// PackIdentityRows writes an identity 3x4 row-major matrix into dst.
//
// Parameters:
//   - dst: destination slice (at least TransformFloats elements)
func PackIdentityRows(dst []float32) {
	for i := 0; i < TransformFloats; i++ {
		dst[i] = 0
	}
	dst[0], dst[5], dst[10] = 1, 1, 1
}

// AABB is an axis-aligned bounding box described by its minimum corner and size.
type AABB struct {
	Position mgl32.Vec3
	Size     mgl32.Vec3
}

// NewAABB creates an AABB spanning the two corners. The corners may be given in any order.
//
// Parameters:
//   - a, b: opposite corners of the box
//
// Returns:
//   - AABB: the box
func NewAABB(a, b mgl32.Vec3) AABB {
	lo := mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
	hi := mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
	return AABB{Position: lo, Size: hi.Sub(lo)}
}

// Center returns the center of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Position.Add(b.Size.Mul(0.5))
}

// HalfExtents returns half of the box size along each axis.
func (b AABB) HalfExtents() mgl32.Vec3 {
	return b.Size.Mul(0.5)
}

// End returns the maximum corner of the box.
func (b AABB) End() mgl32.Vec3 {
	return b.Position.Add(b.Size)
}
