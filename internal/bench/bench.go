// Package bench runs the headless batching stress scene: many drifting instances over a few
// meshes, watched by an orbiting camera, packed every tick by the batch frame updater.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/camera"
	"github.com/Carmen-Shannon/oxy-batch/engine/game_object"
	"github.com/Carmen-Shannon/oxy-batch/engine/mesh"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/scene"
	"github.com/Carmen-Shannon/oxy-batch/internal/config"
)

// Result summarizes a bench run.
type Result struct {
	Renderer string        `yaml:"renderer"`
	Duration time.Duration `yaml:"duration"`
	Ticks    uint64        `yaml:"ticks"`
	Skipped  uint64        `yaml:"skipped_ticks"`

	Objects int `yaml:"objects"`
	Groups  int `yaml:"groups"`
	Members int `yaml:"members"`

	// AvgVisible is the mean number of packed instances per non-skipped tick.
	AvgVisible float64 `yaml:"avg_visible"`

	// CulledRatio is the fraction of members rejected by the frustum, averaged over ticks.
	CulledRatio float64 `yaml:"culled_ratio"`

	// Calls counts the renderer calls made while the engine ran. Scene setup is excluded.
	Calls renderer.Stats `yaml:"renderer_calls"`
}

// recorder wraps a FrameUpdater and accumulates its statistics.
type recorder struct {
	batch.FrameUpdater

	mu      sync.Mutex
	ticks   uint64
	skipped uint64
	members uint64
	visible uint64
	last    batch.FrameStats
}

func (rec *recorder) Update() batch.FrameStats {
	s := rec.FrameUpdater.Update()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.ticks++
	rec.last = s
	if s.Skipped {
		rec.skipped++
		return s
	}
	rec.members += uint64(s.Members)
	rec.visible += uint64(s.Visible)
	return s
}

// mover is one instance of the stress scene and its velocity.
type mover struct {
	inst     game_object.BatchedInstance
	velocity mgl32.Vec3
}

// Run builds the stress scene described by cfg and drives it with the engine tick loop until
// cfg.Bench.Ticks ticks have run or ctx is cancelled.
//
// Parameters:
//   - ctx: cancels the run
//   - cfg: the configuration
//   - logger: the destination for engine, batch and profiler logs
//
// Returns:
//   - Result: the run summary
//   - error: when the renderer cannot be created or a tick panicked
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Result, error) {
	backendType, err := renderer.ParseBackendType(cfg.Bench.Renderer)
	if err != nil {
		return Result{}, err
	}

	r, err := renderer.NewRenderer(backendType, renderer.WithRetainUploads(false))
	if err != nil {
		return Result{}, fmt.Errorf("creating renderer: %w", err)
	}
	defer r.Close()

	reg := batch.NewRegistry(r,
		batch.WithLogger(logger),
		batch.WithCullingEnabled(cfg.Culling),
	)
	defer reg.Close()

	spread := cfg.Bench.Spread
	rng := rand.New(rand.NewPCG(uint64(cfg.Bench.Seed), uint64(cfg.Bench.Seed)^0x9e3779b97f4a7c15))

	meshes := make([]mesh.Mesh, cfg.Bench.Meshes)
	for i := range meshes {
		edge := float32(1 + i)
		meshes[i] = mesh.NewBoxMesh(mgl32.Vec3{edge, edge, edge}, mesh.WithName(fmt.Sprintf("box_%d", i)))
	}

	movers := make([]mover, cfg.Bench.Objects)
	instances := make([]game_object.BatchedInstance, cfg.Bench.Objects)
	for i := range movers {
		inst := game_object.NewBatchedInstance(
			game_object.WithName(fmt.Sprintf("instance_%d", i)),
			game_object.WithMesh(meshes[i%len(meshes)]),
			game_object.WithUseColor(rng.Float64() < cfg.Bench.ColoredRatio),
			game_object.WithColor(batch.ColorFromFloats(rng.Float32(), rng.Float32(), rng.Float32(), 1)),
			game_object.WithTransform(common.NewTransform(
				randomVec(rng, spread),
				randomVec(rng, math.Pi),
				mgl32.Vec3{1, 1, 1},
			)),
		)
		movers[i] = mover{inst: inst, velocity: randomVec(rng, cfg.Bench.Drift)}
		instances[i] = inst
	}

	sc := scene.NewScene(reg, scene.WithName("bench"), scene.WithInstances(instances...))
	defer sc.Clear()

	ctrl := camera.NewCameraController(
		camera.WithRadius(spread*1.5),
		camera.WithRadiusLimits(1, spread*4),
	)
	cam := camera.NewCamera(
		camera.WithController(ctrl),
		camera.WithClipPlanes(0.1, spread*4),
	)
	vp := camera.NewViewport(cam)

	rec := &recorder{
		FrameUpdater: batch.NewFrameUpdater(reg, vp, batch.WithPackWorkers(cfg.Workers)),
	}

	tick := func(dt float32) {
		ctrl.Orbit(0.25*dt, 0)
		for i := range movers {
			m := &movers[i]
			pos := m.inst.Transform().Origin.Add(m.velocity.Mul(dt))
			for a := 0; a < 3; a++ {
				if pos[a] < -spread || pos[a] > spread {
					m.velocity[a] = -m.velocity[a]
				}
			}
			m.inst.Translate(m.velocity.Mul(dt))
		}
		for n := 0; n < cfg.Bench.Churn && len(movers) > 0; n++ {
			inst := movers[rng.IntN(len(movers))].inst
			inst.SetVisible(!inst.Visible())
		}
	}

	eng := engine.NewEngine(
		engine.WithTickRate(cfg.TickRate),
		engine.WithMaxTicks(cfg.Bench.Ticks),
		engine.WithTickCallback(tick),
		engine.WithBeforeBatch(cam.Update),
		engine.WithFrameUpdaters(rec),
		engine.WithLogger(logger),
		engine.WithProfiling(cfg.Profile),
	)

	logger.Info().
		Int("objects", cfg.Bench.Objects).
		Int("meshes", cfg.Bench.Meshes).
		Int("groups", reg.GroupCount()).
		Stringer("renderer", backendType).
		Bool("culling", cfg.Culling).
		Msg("bench scene ready")

	r.ResetStats()
	start := time.Now()
	runErr := eng.Run(ctx)
	elapsed := time.Since(start)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return Result{}, runErr
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	res := Result{
		Renderer: backendType.String(),
		Duration: elapsed,
		Ticks:    rec.ticks,
		Skipped:  rec.skipped,
		Objects:  cfg.Bench.Objects,
		Groups:   rec.last.Groups,
		Members:  rec.last.Members,
		Calls:    r.Stats(),
	}
	if packed := rec.ticks - rec.skipped; packed > 0 {
		res.AvgVisible = float64(rec.visible) / float64(packed)
	}
	if rec.members > 0 {
		res.CulledRatio = 1 - float64(rec.visible)/float64(rec.members)
	}
	return res, nil
}

// randomVec returns a vector with every component uniform in [-extent, extent].
func randomVec(rng *rand.Rand, extent float32) mgl32.Vec3 {
	c := func() float32 { return (rng.Float32()*2 - 1) * extent }
	return mgl32.Vec3{c(), c(), c()}
}
