package batch

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps (world, mesh, color mode) keys to batch groups and owns their renderer resources.
// Member ids are allocated from a single counter that never resets, so an id is never reissued,
// even across groups. Thread-safe: every mutation holds the write lock for its whole duration.
type Registry interface {
	// Register adds obj to the group for key, creating the group and its renderer resources
	// on first use and growing its buffer when the member count exceeds the slot capacity.
	// The returned id must be kept by the caller to Unregister the object later.
	//
	// Parameters:
	//   - key: the group key
	//   - obj: the object to batch (not owned by the registry)
	//
	// Returns:
	//   - MemberID: the newly allocated member id
	Register(key GroupKey, obj Object) MemberID

	// Unregister removes the member id from the group for key. When the group becomes empty its
	// instance and buffer are freed and the group is deleted; otherwise the renderer is told the
	// remaining member count.
	//
	// Panics if no group exists for key or id is not a member of it.
	//
	// Parameters:
	//   - key: the group key used at registration
	//   - id: the id returned by Register
	Unregister(key GroupKey, id MemberID)

	// CullingEnabled returns whether frame updates cull members against the camera frustum.
	//
	// Returns:
	//   - bool: true if culling is enabled
	CullingEnabled() bool

	// SetCullingEnabled enables or disables frustum culling for subsequent frame updates.
	//
	// Parameters:
	//   - enabled: true to cull, false to pack every member
	SetCullingEnabled(enabled bool)

	// Contains reports whether id is a member of the group for key.
	//
	// Parameters:
	//   - key: the group key
	//   - id: the member id
	//
	// Returns:
	//   - bool: true if the group exists and holds id
	Contains(key GroupKey, id MemberID) bool

	// Group returns a snapshot of the group for key.
	//
	// Parameters:
	//   - key: the group key
	//
	// Returns:
	//   - GroupInfo: the snapshot
	//   - bool: false if no group exists for key
	Group(key GroupKey) (GroupInfo, bool)

	// Groups returns snapshots of every group, uncolored groups first, each in creation order.
	//
	// Returns:
	//   - []GroupInfo: the snapshots
	Groups() []GroupInfo

	// GroupCount returns the number of live groups.
	GroupCount() int

	// MemberCount returns the number of registered members across all groups.
	MemberCount() int

	// NextID returns the id the next Register call will allocate.
	NextID() MemberID

	// Renderer returns the renderer the registry allocates resources from.
	Renderer() Renderer

	// Close frees the renderer resources of every group and empties the registry.
	// The id counter is kept so ids stay unique if the registry is reused.
	Close()
}

type registry struct {
	mu *sync.RWMutex

	r      Renderer
	logger zerolog.Logger

	nextID   MemberID
	groupSeq uint64
	groups   map[GroupKey]*group

	cullingEnabled bool
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry allocating batch resources from r.
// Culling is enabled by default. Panics if r is nil.
//
// Parameters:
//   - r: the renderer backend
//   - options: functional options to configure the registry
//
// Returns:
//   - Registry: the new registry
func NewRegistry(r Renderer, options ...RegistryBuilderOption) Registry {
	if r == nil {
		panic("batch: NewRegistry requires a non-nil Renderer")
	}

	reg := &registry{
		mu:             &sync.RWMutex{},
		r:              r,
		logger:         zerolog.Nop(),
		groups:         make(map[GroupKey]*group),
		cullingEnabled: true,
	}

	for _, option := range options {
		option(reg)
	}

	return reg
}

func (reg *registry) Register(key GroupKey, obj Object) MemberID {
	if key.World == nil || key.Mesh == nil {
		panic("batch: Register requires a World and a Mesh in the group key")
	}
	if obj == nil {
		panic("batch: Register requires a non-nil Object")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := reg.nextID
	reg.nextID++

	g, exists := reg.groups[key]
	if !exists {
		reg.groupSeq++
		g = newGroup(reg.r, key, reg.groupSeq)
		reg.groups[key] = g
		reg.logger.Debug().
			Uint64("instance", uint64(g.instance)).
			Uint64("buffer", uint64(g.buf.handle)).
			Stringer("format", key.Format()).
			Msg("adding batch group")
	}

	g.add(id, obj)

	if g.buf.ensure(reg.r, len(g.members)) {
		reg.logger.Debug().
			Uint64("buffer", uint64(g.buf.handle)).
			Int("capacity", g.buf.capacity).
			Int("members", len(g.members)).
			Msg("grew batch buffer")
	}

	return id
}

func (reg *registry) Unregister(key GroupKey, id MemberID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	g, exists := reg.groups[key]
	if !exists {
		panic(fmt.Sprintf("batch: Unregister of member %d: no group for key (colored=%t)", id, key.Colored))
	}

	index, found := g.find(id)
	if !found {
		panic(fmt.Sprintf("batch: Unregister: member %d not found in group", id))
	}
	g.remove(index)

	if len(g.members) == 0 {
		reg.logger.Debug().
			Uint64("instance", uint64(g.instance)).
			Uint64("buffer", uint64(g.buf.handle)).
			Msg("removing batch group")
		g.release(reg.r)
		delete(reg.groups, key)
		return
	}

	reg.r.SetVisibleCount(g.buf.handle, len(g.members))
}

func (reg *registry) CullingEnabled() bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.cullingEnabled
}

func (reg *registry) SetCullingEnabled(enabled bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.cullingEnabled = enabled
}

func (reg *registry) Contains(key GroupKey, id MemberID) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	g, exists := reg.groups[key]
	if !exists {
		return false
	}
	_, found := g.find(id)
	return found
}

func (reg *registry) Group(key GroupKey) (GroupInfo, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	g, exists := reg.groups[key]
	if !exists {
		return GroupInfo{}, false
	}
	return g.info(), true
}

func (reg *registry) Groups() []GroupInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ordered := reg.orderedGroups()
	infos := make([]GroupInfo, len(ordered))
	for i, g := range ordered {
		infos[i] = g.info()
	}
	return infos
}

func (reg *registry) GroupCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.groups)
}

func (reg *registry) MemberCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	n := 0
	for _, g := range reg.groups {
		n += len(g.members)
	}
	return n
}

func (reg *registry) NextID() MemberID {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.nextID
}

func (reg *registry) Renderer() Renderer {
	return reg.r
}

func (reg *registry) Close() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, g := range reg.orderedGroups() {
		g.release(reg.r)
	}
	if n := len(reg.groups); n > 0 {
		reg.logger.Debug().Int("groups", n).Msg("released batch groups")
	}
	reg.groups = make(map[GroupKey]*group)
}

// orderedGroups returns the groups with uncolored groups first, each in creation order.
// Caller must hold reg.mu.
func (reg *registry) orderedGroups() []*group {
	out := make([]*group, 0, len(reg.groups))
	for _, g := range reg.groups {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b *group) int {
		if a.key.Colored != b.key.Colored {
			if !a.key.Colored {
				return -1
			}
			return 1
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}
