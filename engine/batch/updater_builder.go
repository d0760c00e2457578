package batch

// FrameUpdaterBuilderOption is a functional option for configuring a FrameUpdater.
type FrameUpdaterBuilderOption func(u *frameUpdater)

// WithEditorHint sets the function reporting whether the host is an editor preview.
// When it returns true and no camera is active, frame updates pack every member instead of
// skipping the tick.
//
// Parameters:
//   - hint: reports the editor state; nil resets to "never an editor"
//
// Returns:
//   - FrameUpdaterBuilderOption: option function to apply
func WithEditorHint(hint func() bool) FrameUpdaterBuilderOption {
	return func(u *frameUpdater) {
		if hint == nil {
			hint = func() bool { return false }
		}
		u.editorHint = hint
	}
}

// WithPackWorkers sets the number of goroutines packing groups in parallel.
// Defaults to runtime.NumCPU()-1. A value of 1 packs every group on the calling goroutine.
//
// Parameters:
//   - n: the number of pack workers (minimum 1)
//
// Returns:
//   - FrameUpdaterBuilderOption: option function to apply
func WithPackWorkers(n int) FrameUpdaterBuilderOption {
	return func(u *frameUpdater) {
		if n < 1 {
			n = 1
		}
		u.packWorkers = n
	}
}
