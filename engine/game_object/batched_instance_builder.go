package game_object

import (
	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/mesh"
)

// BatchedInstanceBuilderOption is a functional option for configuring a BatchedInstance during construction.
type BatchedInstanceBuilderOption func(*batchedInstance)

// WithName sets the display name of the instance.
//
// Parameters:
//   - name: the instance name
//
// Returns:
//   - BatchedInstanceBuilderOption: functional option to set the name
func WithName(name string) BatchedInstanceBuilderOption {
	return func(bi *batchedInstance) {
		bi.name = name
	}
}

// WithMesh sets the mesh the instance draws.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - BatchedInstanceBuilderOption: functional option to set the mesh
func WithMesh(m mesh.Mesh) BatchedInstanceBuilderOption {
	return func(bi *batchedInstance) {
		bi.mesh = m
	}
}

// WithUseColor selects the colored batch group for the instance.
//
// Parameters:
//   - useColor: true to batch with a per-instance color
//
// Returns:
//   - BatchedInstanceBuilderOption: functional option to set the color mode
func WithUseColor(useColor bool) BatchedInstanceBuilderOption {
	return func(bi *batchedInstance) {
		bi.useColor = useColor
	}
}

// WithColor sets the initial instance color.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - BatchedInstanceBuilderOption: functional option to set the color
func WithColor(c batch.Color) BatchedInstanceBuilderOption {
	return func(bi *batchedInstance) {
		bi.color = c
	}
}

// WithTransform sets the initial world transform.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - BatchedInstanceBuilderOption: functional option to set the transform
func WithTransform(t common.Transform) BatchedInstanceBuilderOption {
	return func(bi *batchedInstance) {
		bi.transform = t
	}
}

// WithVisible sets the initial visibility. Instances are visible by default.
//
// Parameters:
//   - visible: the visibility flag
//
// Returns:
//   - BatchedInstanceBuilderOption: functional option to set the visibility
func WithVisible(visible bool) BatchedInstanceBuilderOption {
	return func(bi *batchedInstance) {
		bi.visible = visible
	}
}
