package batch

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-batch/common"
)

// FrameStats summarizes one frame update.
type FrameStats struct {
	// Skipped is true when there was no camera and no editor hint; nothing was touched.
	Skipped bool

	// CullingApplied is true when members were tested against a frustum.
	CullingApplied bool

	// Groups is the number of groups packed and uploaded.
	Groups int

	// Members is the total member count across packed groups.
	Members int

	// Visible is the total number of packed (visible) members.
	Visible int

	// Uploads is the number of buffer uploads submitted to the renderer.
	Uploads int
}

// FrameUpdater culls and packs every batch group once per tick and uploads the result.
type FrameUpdater interface {
	// Update runs one frame pass. It must be called after the tick's transforms are final.
	// Without an active camera the pass is skipped, unless the editor hint is set, in which
	// case every member is packed without culling.
	//
	// Returns:
	//   - FrameStats: what the pass did
	Update() FrameStats

	// Registry returns the registry the updater packs.
	Registry() Registry

	// SetCameraSource replaces the source of the active frustum.
	//
	// Parameters:
	//   - cam: the new camera source, may be nil
	SetCameraSource(cam CameraSource)
}

type frameUpdater struct {
	mu *sync.Mutex

	reg *registry
	cam CameraSource

	editorHint func() bool

	// packPool fans group packing out across goroutines. Workers persist across frames.
	packPool    worker.DynamicWorkerPool
	packWorkers int

	// Reused each frame to avoid per-frame allocations.
	groupsPool []*group
}

var _ FrameUpdater = &frameUpdater{}

// NewFrameUpdater creates a FrameUpdater for reg reading the active frustum from cam.
// reg must have been created by NewRegistry. cam may be nil, in which case every tick is
// skipped unless the editor hint is set.
//
// Parameters:
//   - reg: the registry to pack
//   - cam: the camera source
//   - options: functional options to further configure the updater
//
// Returns:
//   - FrameUpdater: the new updater
func NewFrameUpdater(reg Registry, cam CameraSource, options ...FrameUpdaterBuilderOption) FrameUpdater {
	impl, ok := reg.(*registry)
	if !ok {
		panic("batch: NewFrameUpdater requires a Registry created by NewRegistry")
	}

	u := &frameUpdater{
		mu:          &sync.Mutex{},
		reg:         impl,
		cam:         cam,
		editorHint:  func() bool { return false },
		packWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(u)
	}

	if u.packWorkers > 1 {
		u.packPool = worker.NewDynamicWorkerPool(u.packWorkers, 256, 1*time.Second)
	}

	return u
}

func (u *frameUpdater) Registry() Registry {
	return u.reg
}

func (u *frameUpdater) SetCameraSource(cam CameraSource) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cam = cam
}

func (u *frameUpdater) Update() FrameStats {
	u.mu.Lock()
	defer u.mu.Unlock()

	var frustum common.Frustum
	hasFrustum := false
	if u.cam != nil {
		frustum, hasFrustum = u.cam.ActiveFrustum()
	}

	reg := u.reg
	reg.mu.Lock()
	defer reg.mu.Unlock()

	cull := reg.cullingEnabled
	if !hasFrustum {
		if !u.editorHint() {
			reg.logger.Trace().Msg("no active camera, skipping batch update")
			return FrameStats{Skipped: true}
		}
		// Nothing to cull against in the editor; draw everything.
		cull = false
	}

	var fr *common.Frustum
	if cull {
		fr = &frustum
	}

	groups := u.groupsPool[:0]
	groups = append(groups, reg.orderedGroups()...)
	u.groupsPool = groups

	u.packAll(groups, fr)

	stats := FrameStats{CullingApplied: cull, Groups: len(groups)}
	for _, g := range groups {
		g.submit(reg.r)
		stats.Uploads++
		stats.Members += len(g.members)
		stats.Visible += g.visible
	}
	return stats
}

// packAll packs every group, in parallel when a pool is configured. Each group writes only
// its own staging buffer, so groups never contend. Renderer submission happens afterwards,
// serially, on the caller's goroutine.
func (u *frameUpdater) packAll(groups []*group, fr *common.Frustum) {
	if u.packPool == nil || len(groups) < 2 {
		for _, g := range groups {
			g.pack(fr)
		}
		return
	}

	// A WaitGroup gives a per-frame barrier; the pool's own Wait blocks until workers idle-exit.
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		gCap := g
		u.packPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				return gCap.pack(fr), nil
			},
		})
	}
	wg.Wait()
}
