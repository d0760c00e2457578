package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/rs/zerolog"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxTicks stops Run after n ticks. 0 runs until quit.
//
// Parameters:
//   - n: the tick limit
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxTicks(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxTicks = n
	}
}

// WithTickCallback registers the game logic callback run at the start of each tick.
//
// Parameters:
//   - callback: function receiving the delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithBeforeBatch registers a hook run after the tick callback and before the frame updaters,
// typically to refresh camera matrices.
//
// Parameters:
//   - hook: the function to run
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBeforeBatch(hook func()) EngineBuilderOption {
	return func(e *engine) {
		e.beforeBatch = hook
	}
}

// WithFrameUpdaters registers batch frame updaters run at the end of every tick.
//
// Parameters:
//   - updaters: the frame updaters, run in order
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameUpdaters(updaters ...batch.FrameUpdater) EngineBuilderOption {
	return func(e *engine) {
		e.updaters = append(e.updaters, updaters...)
	}
}

// WithLogger sets the logger for engine lifecycle and profiler output. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.baseLogger = logger
	}
}
