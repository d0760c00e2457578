package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/profiler"
	"github.com/rs/zerolog"
)

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	// quitChannel and quitOnce are replaced at the start of every Run. Guarded by mu.
	quitChannel chan struct{}
	quitOnce    *sync.Once

	baseLogger zerolog.Logger
	logger     zerolog.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	maxTicks       uint64
	ticks          atomic.Uint64
	tickCallback   func(deltaTime float32)
	beforeBatch    func()

	updaters []batch.FrameUpdater
}

// Engine drives the fixed-rate tick loop. Every tick runs the game logic callback first and the
// batch frame updaters last, so the packed buffers always reflect the transforms of the tick
// that just ran.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// If the engine is running, the change takes effect immediately.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the start of each engine tick.
	// Use this for game logic that moves, adds or removes batched instances.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddFrameUpdater registers a batch frame updater run at the end of every tick.
	// Updaters run in registration order.
	//
	// Parameters:
	//   - u: the frame updater
	AddFrameUpdater(u batch.FrameUpdater)

	// Step runs a single tick synchronously: the tick callback, then every frame updater.
	//
	// Parameters:
	//   - deltaTime: the delta time passed to the tick callback, in seconds
	//
	// Returns:
	//   - batch.FrameStats: the summed statistics of every updater
	Step(deltaTime float32) batch.FrameStats

	// Ticks returns the number of ticks run so far.
	Ticks() uint64

	// Run starts the tick loop and blocks until ctx is done, Quit is called, or the configured
	// tick limit is reached. An engine can be run again after Run returns; the tick limit counts
	// the ticks of each run separately. Panics if the engine is already running.
	//
	// Parameters:
	//   - ctx: cancels the loop when done
	//
	// Returns:
	//   - error: ctx.Err() when stopped by the context, or the panic recovered from a tick
	Run(ctx context.Context) error

	// Quit signals the running tick loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops. Calling it while the engine is
	// not running has no effect on a later Run.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		quitOnce:        &sync.Once{},
		baseLogger:      zerolog.Nop(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	e.logger = e.baseLogger.With().Str("component", "engine").Logger()
	e.profiler = profiler.NewProfiler(e.baseLogger)
	return e
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		panic("engine: Run called while the engine is already running")
	}
	defer e.running.Store(false)

	e.mu.Lock()
	quit := make(chan struct{})
	e.quitChannel = quit
	e.quitOnce = &sync.Once{}
	e.mu.Unlock()

	e.logger.Info().
		Dur("tick_rate", e.engineTickRate).
		Uint64("max_ticks", e.maxTicks).
		Int("updaters", len(e.updaters)).
		Msg("engine started")

	errCh := make(chan error, 1)
	e.wg.Add(2)
	go e.handleEngine(quit, e.ticks.Load(), errCh)
	go e.handleQuit(ctx, quit)
	e.wg.Wait()

	e.logger.Info().Uint64("ticks", e.ticks.Load()).Msg("engine stopped")

	select {
	case err := <-errCh:
		return err
	default:
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the current quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.mu.Lock()
	quit, once := e.quitChannel, e.quitOnce
	e.mu.Unlock()
	once.Do(func() {
		close(quit)
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Runs one Step per tick and listens for dynamic rate changes via tickRateChannel.
// Exits when the quit channel is closed or the tick limit is reached. A panic inside a tick is
// recovered, reported on errCh, and stops the engine.
func (e *engine) handleEngine(quit <-chan struct{}, startTicks uint64, errCh chan<- error) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("engine tick recovered from panic")
			errCh <- fmt.Errorf("engine: tick panicked: %v", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.Step(dt)

			if e.maxTicks > 0 && e.ticks.Load()-startTicks >= e.maxTicks {
				e.signalQuit()
				return
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed or ctx is done, then stops the engine.
func (e *engine) handleQuit(ctx context.Context, quit <-chan struct{}) {
	defer e.wg.Done()
	select {
	case <-ctx.Done():
		e.signalQuit()
	case <-quit:
	}
}

func (e *engine) Step(deltaTime float32) batch.FrameStats {
	e.mu.Lock()
	callback := e.tickCallback
	beforeBatch := e.beforeBatch
	updaters := e.updaters
	e.mu.Unlock()

	if callback != nil {
		callback(deltaTime)
	}
	if beforeBatch != nil {
		beforeBatch()
	}

	var total batch.FrameStats
	for _, u := range updaters {
		s := u.Update()
		total.Skipped = total.Skipped || s.Skipped
		total.CullingApplied = total.CullingApplied || s.CullingApplied
		total.Groups += s.Groups
		total.Members += s.Members
		total.Visible += s.Visible
		total.Uploads += s.Uploads
	}

	e.ticks.Add(1)
	if e.profilingEnabled.Load() {
		e.profiler.Tick(total)
	}
	return total
}

func (e *engine) Ticks() uint64 {
	return e.ticks.Load()
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddFrameUpdater(u batch.FrameUpdater) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updaters = append(e.updaters, u)
}
