package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-batch/engine"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
)

// orderUpdater records when it ran relative to the tick callback.
type orderUpdater struct {
	events *[]string
	stats  batch.FrameStats
}

func (u *orderUpdater) Update() batch.FrameStats {
	*u.events = append(*u.events, "update")
	return u.stats
}

func (u *orderUpdater) Registry() batch.Registry           { return nil }
func (u *orderUpdater) SetCameraSource(batch.CameraSource) {}

func TestEngine_StepOrder(t *testing.T) {
	var events []string
	e := engine.NewEngine(
		engine.WithTickCallback(func(float32) { events = append(events, "tick") }),
		engine.WithBeforeBatch(func() { events = append(events, "camera") }),
		engine.WithFrameUpdaters(
			&orderUpdater{events: &events, stats: batch.FrameStats{Groups: 1, Members: 10, Visible: 4, Uploads: 1, CullingApplied: true}},
			&orderUpdater{events: &events, stats: batch.FrameStats{Groups: 2, Members: 5, Visible: 5, Uploads: 2}},
		),
	)

	stats := e.Step(1.0 / 60)

	assert.Equal(t, []string{"tick", "camera", "update", "update"}, events)
	assert.Equal(t, batch.FrameStats{Groups: 3, Members: 15, Visible: 9, Uploads: 3, CullingApplied: true}, stats)
	assert.Equal(t, uint64(1), e.Ticks())
}

func TestEngine_RunStopsAfterMaxTicks(t *testing.T) {
	var events []string
	e := engine.NewEngine(
		engine.WithTickRate(1000),
		engine.WithMaxTicks(5),
		engine.WithFrameUpdaters(&orderUpdater{events: &events}),
		engine.WithProfiling(true),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, uint64(5), e.Ticks())
	assert.Len(t, events, 5)
}

func TestEngine_RunAgainAfterStop(t *testing.T) {
	var events []string
	e := engine.NewEngine(
		engine.WithTickRate(1000),
		engine.WithMaxTicks(3),
		engine.WithFrameUpdaters(&orderUpdater{events: &events}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, e.Run(ctx))
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, uint64(6), e.Ticks(), "each run gets its own tick limit")
	assert.Len(t, events, 6)

	e.Quit()
	require.NoError(t, e.Run(ctx), "a quit outside a run does not stop the next one")
	assert.Equal(t, uint64(9), e.Ticks())
}

func TestEngine_RunStopsOnContext(t *testing.T) {
	e := engine.NewEngine(engine.WithTickRate(1000))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEngine_Quit(t *testing.T) {
	e := engine.NewEngine(engine.WithTickRate(1000))
	e.SetTickCallback(func(float32) {
		if e.Ticks() >= 2 {
			e.Quit()
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after Quit")
	}
	e.Quit()
}

func TestEngine_RunRecoversTickPanic(t *testing.T) {
	e := engine.NewEngine(
		engine.WithTickRate(1000),
		engine.WithTickCallback(func(float32) { panic("boom") }),
	)

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
