package batch

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-batch/common"
)

type member struct {
	id  MemberID
	obj Object
}

// group is one batch: a render instance, its buffer and the members drawn through it.
// members stays sorted by id because ids are allocated in increasing order and only appended.
type group struct {
	key      GroupKey
	seq      uint64
	instance Handle
	buf      *buffer
	members  []member
	visible  int
}

// newGroup creates the renderer resources for key: a buffer bound to the mesh geometry and an
// instance drawing it in the world's scenario.
func newGroup(r Renderer, key GroupKey, seq uint64) *group {
	scenario := key.World.Scenario()
	buf := newBuffer(r, key.Mesh.Geometry(), key.Format())

	inst := r.CreateInstance(buf.handle, scenario)
	r.SetInstanceTransform(inst, common.IdentityTransform())
	r.SetInstanceScenario(inst, scenario)
	r.SetInstanceBase(inst, buf.handle)
	r.SetInstanceVisible(inst, true)

	return &group{
		key:      key,
		seq:      seq,
		instance: inst,
		buf:      buf,
		members:  make([]member, 0, ChunkSlots),
	}
}

func (g *group) add(id MemberID, obj Object) {
	g.members = append(g.members, member{id: id, obj: obj})
}

// find returns the index of id in the member list using binary search.
func (g *group) find(id MemberID) (int, bool) {
	return slices.BinarySearchFunc(g.members, id, func(m member, target MemberID) int {
		return cmp.Compare(m.id, target)
	})
}

func (g *group) remove(index int) {
	g.members = slices.Delete(g.members, index, index+1)
}

// pack writes every member that passes the frustum test into the leading slots of the
// staging buffer and returns how many were written. A nil frustum packs every member.
func (g *group) pack(frustum *common.Frustum) int {
	box := g.key.Mesh.AABB()
	colored := g.buf.format == FormatTransformColor

	count := 0
	for i := range g.members {
		m := &g.members[i]
		xf := m.obj.GlobalTransform()
		if frustum != nil && !frustum.IsAABBVisible(box, xf) {
			continue
		}
		s := g.buf.slot(count)
		xf.PackRows(s)
		if colored {
			s[common.TransformFloats] = m.obj.InstanceColor().Packed()
		}
		count++
	}
	g.visible = count
	return count
}

// submit publishes the last packed state to the renderer.
func (g *group) submit(r Renderer) {
	r.SetVisibleCount(g.buf.handle, g.visible)
	r.UploadBuffer(g.buf.handle, g.buf.data)
}

// release frees the instance and its buffer. The group must not be used afterwards.
func (g *group) release(r Renderer) {
	r.Free(g.instance)
	r.Free(g.buf.handle)
	g.members = nil
}

func (g *group) info() GroupInfo {
	ids := make([]MemberID, len(g.members))
	for i, m := range g.members {
		ids[i] = m.id
	}
	return GroupInfo{
		Key:      g.key,
		Instance: g.instance,
		Buffer:   g.buf.handle,
		Members:  ids,
		Capacity: g.buf.capacity,
		Visible:  g.visible,
		Growths:  g.buf.growths,
		Staging:  slices.Clone(g.buf.data),
	}
}

// GroupInfo is a snapshot of one batch group.
type GroupInfo struct {
	// Key is the group's key.
	Key GroupKey

	// Instance is the render instance handle.
	Instance Handle

	// Buffer is the instance buffer handle.
	Buffer Handle

	// Members lists the member ids in ascending order.
	Members []MemberID

	// Capacity is the slot capacity of the staging buffer.
	Capacity int

	// Visible is the number of members packed by the last frame update.
	Visible int

	// Growths counts how many times the buffer grew past its initial chunk.
	Growths int

	// Staging is a copy of the staging buffer, Capacity * stride floats.
	Staging []float32
}
