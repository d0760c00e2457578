package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Ignored by the null backend.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithRetainUploads controls whether the null backend keeps a copy of every upload.
// Defaults to true; benchmarks turn it off to measure packing without copy overhead.
//
// Parameters:
//   - retain: true to keep the last uploaded data per buffer
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithRetainUploads(retain bool) RendererBuilderOption {
	return func(r *renderer) {
		r.retainUploads = retain
	}
}
