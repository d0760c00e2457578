package batch

import (
	"github.com/rs/zerolog"
)

// RegistryBuilderOption is a functional option for configuring a Registry.
// Use the With* functions to create options.
type RegistryBuilderOption func(reg *registry)

// WithLogger sets the logger used for group lifecycle events. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RegistryBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) RegistryBuilderOption {
	return func(reg *registry) {
		reg.logger = logger.With().Str("component", "batch").Logger()
	}
}

// WithCullingEnabled sets the initial culling toggle. Culling is enabled by default.
//
// Parameters:
//   - enabled: true to cull against the camera frustum
//
// Returns:
//   - RegistryBuilderOption: option function to apply
func WithCullingEnabled(enabled bool) RegistryBuilderOption {
	return func(reg *registry) {
		reg.cullingEnabled = enabled
	}
}
