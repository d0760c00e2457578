package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/rs/zerolog"
)

// Profiler tracks tick rate, batch throughput and memory statistics for performance monitoring.
// Outputs stats to its logger at a configurable interval.
type Profiler struct {
	logger         zerolog.Logger
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// batch counters accumulated since the last report
	members int
	visible int
	skipped int
}

// NewProfiler creates a new Profiler logging to logger.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: the destination for periodic reports
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger zerolog.Logger) *Profiler {
	return &Profiler{
		logger:         logger.With().Str("component", "profiler").Logger(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetUpdateInterval changes how often reports are logged.
//
// Parameters:
//   - d: the interval between reports
func (p *Profiler) SetUpdateInterval(d time.Duration) {
	p.updateInterval = d
}

// Tick should be called once per engine tick with that tick's batch statistics.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: tick rate, average members and visible instances per tick, cull ratio,
// heap usage, allocation rate and GC count/pause times.
//
// Parameters:
//   - stats: the batch statistics of the tick
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats batch.FrameStats) bool {
	p.tickCount++
	if stats.Skipped {
		p.skipped++
	}
	p.members += stats.Members
	p.visible += stats.Visible

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	tps := float64(p.tickCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	culled := 0.0
	if p.members > 0 {
		culled = 1 - float64(p.visible)/float64(p.members)
	}

	p.logger.Info().
		Float64("tps", tps).
		Int("avg_members", p.members/p.tickCount).
		Int("avg_visible", p.visible/p.tickCount).
		Float64("culled_ratio", culled).
		Int("skipped_ticks", p.skipped).
		Float64("heap_mb", allocMB).
		Float64("alloc_rate_mb_s", allocRateMB).
		Uint32("gc", gcCount).
		Uint64("gc_last_us", lastPauseUs).
		Uint64("gc_max_us", maxPauseUs).
		Msg("profile")

	p.tickCount = 0
	p.members, p.visible, p.skipped = 0, 0, 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
