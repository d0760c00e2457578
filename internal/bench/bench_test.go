package bench_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-batch/internal/bench"
	"github.com/Carmen-Shannon/oxy-batch/internal/config"
)

// smallConfig returns a quick configuration: a few hundred instances for three fast ticks.
func smallConfig() *config.Config {
	cfg := config.Defaults()
	cfg.TickRate = 1000
	cfg.Workers = 2
	cfg.Bench.Objects = 200
	cfg.Bench.Meshes = 2
	cfg.Bench.Ticks = 3
	cfg.Bench.Churn = 4
	return cfg
}

func TestRun_Small(t *testing.T) {
	res, err := bench.Run(context.Background(), smallConfig(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "null", res.Renderer)
	assert.Equal(t, uint64(3), res.Ticks)
	assert.Zero(t, res.Skipped, "the orbit camera is always active")
	assert.Equal(t, 200, res.Objects)
	assert.Positive(t, res.Groups)
	assert.LessOrEqual(t, res.Groups, 4, "two meshes times two color modes")
	assert.Positive(t, res.Members)
	assert.LessOrEqual(t, res.Members, 200)
	assert.GreaterOrEqual(t, res.CulledRatio, 0.0)
	assert.LessOrEqual(t, res.CulledRatio, 1.0)
	// Setup uploads are excluded, so each tick uploads every group once and nothing grows.
	assert.Equal(t, 3*res.Groups, res.Calls.Uploads)
	assert.Zero(t, res.Calls.BufferCreates)
	assert.Zero(t, res.Calls.Reallocations)
}

func TestRun_NoCulling(t *testing.T) {
	cfg := smallConfig()
	cfg.Culling = false

	res, err := bench.Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Zero(t, res.CulledRatio)
	assert.Positive(t, res.AvgVisible)
}

func TestRun_ContextCancel(t *testing.T) {
	cfg := smallConfig()
	cfg.Bench.Ticks = 0
	cfg.TickRate = 200

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := bench.Run(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Positive(t, res.Ticks)
}

func TestRun_UnknownRenderer(t *testing.T) {
	cfg := smallConfig()
	cfg.Bench.Renderer = "vulkan"

	_, err := bench.Run(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown renderer backend")
}
