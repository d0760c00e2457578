package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// instanceCount generates unique instance ids.
var instanceCount atomic.Uint64

// Tree is the world a BatchedInstance enters. It supplies the scenario the instance is drawn in
// and the registry its batch membership is kept in.
type Tree interface {
	batch.World

	// Registry returns the batch registry members of this world register with.
	Registry() batch.Registry
}

type batchedInstance struct {
	id   uint64
	name string

	// stateMu guards lifecycle state and is held across registry calls.
	stateMu *sync.Mutex
	mesh    mesh.Mesh
	tree    Tree
	visible bool

	useColor   bool
	registered bool
	key        batch.GroupKey
	memberID   batch.MemberID

	// dataMu guards the values the frame updater reads while packing. It is never held
	// across a registry call.
	dataMu    *sync.RWMutex
	transform common.Transform
	color     batch.Color
}

// BatchedInstance is a scene object drawn through a shared batch instead of its own draw call.
// It is a batch member exactly while it has a mesh, is inside a world and is visible; every
// setter re-evaluates that and registers or unregisters accordingly. Toggling the color mode
// moves the instance between the colored and uncolored group of its mesh.
// Thread-safe for concurrent access.
type BatchedInstance interface {
	batch.Object

	// ID returns the instance's process-unique identifier.
	//
	// Returns:
	//   - uint64: the instance id
	ID() uint64

	// Name returns the instance's display name.
	Name() string

	// Mesh returns the mesh drawn by this instance, or nil.
	//
	// Returns:
	//   - mesh.Mesh: the mesh or nil
	Mesh() mesh.Mesh

	// SetMesh replaces the mesh. A registered instance moves to the new mesh's group;
	// nil removes it from batching.
	//
	// Parameters:
	//   - m: the new mesh, may be nil
	SetMesh(m mesh.Mesh)

	// UseColor reports whether the instance is batched with a per-instance color.
	UseColor() bool

	// SetUseColor switches between the colored and uncolored group of the mesh.
	//
	// Parameters:
	//   - useColor: true to draw with the instance color
	SetUseColor(useColor bool)

	// Color returns the 8-bit instance color.
	//
	// Returns:
	//   - batch.Color: the color
	Color() batch.Color

	// SetColor sets the instance color. A registered colored instance is re-registered so the
	// change reaches its group.
	//
	// Parameters:
	//   - c: the new color
	SetColor(c batch.Color)

	// ColorFloats returns the instance color as normalized channels.
	//
	// Returns:
	//   - r, g, b, a: channels in [0, 1]
	ColorFloats() (r, g, b, a float32)

	// SetColorFloats sets the instance color from normalized channels. Values are clamped and
	// truncated to 8 bits.
	//
	// Parameters:
	//   - r, g, b, a: channels in [0, 1]
	SetColorFloats(r, g, b, a float32)

	// Transform returns the instance's world transform.
	Transform() common.Transform

	// SetTransform replaces the instance's world transform. The next frame update picks it up.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t common.Transform)

	// Translate moves the instance by offset in world space.
	//
	// Parameters:
	//   - offset: the translation to apply
	Translate(offset mgl32.Vec3)

	// Visible reports the instance's own visibility flag.
	Visible() bool

	// SetVisible shows or hides the instance. Hidden instances are not batch members.
	//
	// Parameters:
	//   - visible: the new visibility
	SetVisible(visible bool)

	// InTree reports whether the instance is inside a world.
	InTree() bool

	// EnterTree places the instance in world t and registers it when eligible.
	// Panics if the instance is already in a world.
	//
	// Parameters:
	//   - t: the world to enter
	EnterTree(t Tree)

	// ExitTree removes the instance from its world, unregistering it first.
	// Calling it outside a world is a no-op.
	ExitTree()

	// MemberID returns the batch member id while the instance is registered.
	//
	// Returns:
	//   - batch.MemberID: the current member id
	//   - bool: false if the instance is not a batch member
	MemberID() (batch.MemberID, bool)

	// GroupKey returns the key of the group the instance is a member of.
	//
	// Returns:
	//   - batch.GroupKey: the group key
	//   - bool: false if the instance is not a batch member
	GroupKey() (batch.GroupKey, bool)
}

var _ BatchedInstance = &batchedInstance{}

// NewBatchedInstance creates a visible, uncolored instance with an identity transform and a white
// color. It is not in any world until EnterTree is called.
//
// Parameters:
//   - options: functional options to configure the instance
//
// Returns:
//   - BatchedInstance: the new instance
func NewBatchedInstance(options ...BatchedInstanceBuilderOption) BatchedInstance {
	bi := &batchedInstance{
		id:        instanceCount.Add(1),
		stateMu:   &sync.Mutex{},
		dataMu:    &sync.RWMutex{},
		visible:   true,
		transform: common.IdentityTransform(),
		color:     batch.White,
	}
	for _, option := range options {
		option(bi)
	}
	return bi
}

func (bi *batchedInstance) ID() uint64 {
	return bi.id
}

func (bi *batchedInstance) Name() string {
	return bi.name
}

func (bi *batchedInstance) GlobalTransform() common.Transform {
	bi.dataMu.RLock()
	defer bi.dataMu.RUnlock()
	return bi.transform
}

func (bi *batchedInstance) InstanceColor() batch.Color {
	bi.dataMu.RLock()
	defer bi.dataMu.RUnlock()
	return bi.color
}

func (bi *batchedInstance) Mesh() mesh.Mesh {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	return bi.mesh
}

func (bi *batchedInstance) SetMesh(m mesh.Mesh) {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	if bi.mesh == m {
		return
	}
	bi.unregister()
	bi.mesh = m
	bi.sync()
}

func (bi *batchedInstance) UseColor() bool {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	return bi.useColor
}

func (bi *batchedInstance) SetUseColor(useColor bool) {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	if bi.useColor == useColor {
		return
	}
	bi.unregister()
	bi.useColor = useColor
	bi.sync()
}

func (bi *batchedInstance) Color() batch.Color {
	return bi.InstanceColor()
}

func (bi *batchedInstance) SetColor(c batch.Color) {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()

	bi.dataMu.Lock()
	bi.color = c
	bi.dataMu.Unlock()

	if bi.registered && bi.useColor {
		bi.unregister()
		bi.sync()
	}
}

func (bi *batchedInstance) ColorFloats() (r, g, b, a float32) {
	return bi.InstanceColor().Floats()
}

func (bi *batchedInstance) SetColorFloats(r, g, b, a float32) {
	bi.SetColor(batch.ColorFromFloats(r, g, b, a))
}

func (bi *batchedInstance) Transform() common.Transform {
	return bi.GlobalTransform()
}

func (bi *batchedInstance) SetTransform(t common.Transform) {
	bi.dataMu.Lock()
	defer bi.dataMu.Unlock()
	bi.transform = t
}

func (bi *batchedInstance) Translate(offset mgl32.Vec3) {
	bi.dataMu.Lock()
	defer bi.dataMu.Unlock()
	bi.transform = bi.transform.Translated(offset)
}

func (bi *batchedInstance) Visible() bool {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	return bi.visible
}

func (bi *batchedInstance) SetVisible(visible bool) {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	bi.visible = visible
	bi.sync()
}

func (bi *batchedInstance) InTree() bool {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	return bi.tree != nil
}

func (bi *batchedInstance) EnterTree(t Tree) {
	if t == nil {
		panic("game_object: EnterTree requires a non-nil Tree")
	}
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	if bi.tree != nil {
		panic("game_object: EnterTree called on an instance already in a tree")
	}
	bi.tree = t
	bi.sync()
}

func (bi *batchedInstance) ExitTree() {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	bi.unregister()
	bi.tree = nil
}

func (bi *batchedInstance) MemberID() (batch.MemberID, bool) {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	return bi.memberID, bi.registered
}

func (bi *batchedInstance) GroupKey() (batch.GroupKey, bool) {
	bi.stateMu.Lock()
	defer bi.stateMu.Unlock()
	return bi.key, bi.registered
}

// eligible reports whether the instance should be a batch member. Caller must hold stateMu.
func (bi *batchedInstance) eligible() bool {
	return bi.mesh != nil && bi.tree != nil && bi.visible
}

// sync registers or unregisters so that membership matches eligibility. Caller must hold stateMu.
func (bi *batchedInstance) sync() {
	switch {
	case bi.eligible() && !bi.registered:
		bi.key = batch.GroupKey{World: bi.tree, Mesh: bi.mesh, Colored: bi.useColor}
		bi.memberID = bi.tree.Registry().Register(bi.key, bi)
		bi.registered = true
	case !bi.eligible() && bi.registered:
		bi.unregister()
	}
}

// unregister drops the instance's batch membership if it has one. Caller must hold stateMu.
func (bi *batchedInstance) unregister() {
	if !bi.registered {
		return
	}
	bi.tree.Registry().Unregister(bi.key, bi.memberID)
	bi.registered = false
	bi.key = batch.GroupKey{}
}
