package scene

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/game_object"
	"github.com/kamstrup/intmap"
)

// scenarioCount generates unique scenario handles for every scene created in the process.
var scenarioCount atomic.Uint64

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name     string
	scenario batch.Handle
	active   bool

	registry  batch.Registry
	instances *intmap.Map[uint64, game_object.BatchedInstance]

	// pending holds instances passed to WithInstances until the scene is fully built.
	pending []game_object.BatchedInstance
}

// Scene is a world that batched instances live in. It owns a renderer scenario handle, shares a
// batch registry, and tracks the instances added to it. Adding an instance makes it enter the
// scene's tree; removing it makes it exit, dropping its batch membership.
// Thread-safe for concurrent access.
type Scene interface {
	game_object.Tree

	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active.
	Active() bool

	// SetActive sets whether this scene is active.
	SetActive(active bool)

	// Add places instances in the scene. Instances already in this scene are ignored.
	//
	// Panics if an instance is already in another scene.
	//
	// Parameters:
	//   - instances: the instances to add
	Add(instances ...game_object.BatchedInstance)

	// Get retrieves an instance by its ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the instance ID
	//
	// Returns:
	//   - game_object.BatchedInstance: the instance or nil
	Get(id uint64) game_object.BatchedInstance

	// Remove takes the instance with id out of the scene. Unknown ids are ignored.
	//
	// Parameters:
	//   - id: the instance ID
	Remove(id uint64)

	// Count returns the number of instances in the scene.
	//
	// Returns:
	//   - int: the instance count
	Count() int

	// ForEach calls fn for every instance in the scene. fn must not add or remove instances.
	//
	// Parameters:
	//   - fn: the callback, returning false stops the iteration
	ForEach(fn func(game_object.BatchedInstance) bool)

	// Clear removes every instance from the scene.
	Clear()
}

var _ Scene = &scene{}

// NewScene creates an empty, active Scene whose instances register with reg.
// Panics if reg is nil.
//
// Parameters:
//   - reg: the batch registry shared by the scene's instances
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(reg batch.Registry, options ...SceneBuilderOption) Scene {
	if reg == nil {
		panic("scene: NewScene requires a non-nil Registry")
	}

	s := &scene{
		mu:        &sync.RWMutex{},
		scenario:  batch.Handle(scenarioCount.Add(1)),
		active:    true,
		registry:  reg,
		instances: intmap.New[uint64, game_object.BatchedInstance](64),
	}

	for _, option := range options {
		option(s)
	}
	if s.name == "" {
		s.name = "scene_" + strconv.FormatUint(uint64(s.scenario), 10)
	}

	pending := s.pending
	s.pending = nil
	s.Add(pending...)

	return s
}

func (s *scene) Scenario() batch.Handle {
	return s.scenario
}

func (s *scene) Registry() batch.Registry {
	return s.registry
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Add(instances ...game_object.BatchedInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range instances {
		if _, exists := s.instances.Get(inst.ID()); exists {
			continue
		}
		inst.EnterTree(s)
		s.instances.Put(inst.ID(), inst)
	}
}

func (s *scene) Get(id uint64) game_object.BatchedInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, _ := s.instances.Get(id)
	return inst
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, exists := s.instances.Get(id)
	if !exists {
		return
	}
	inst.ExitTree()
	s.instances.Del(id)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances.Len()
}

func (s *scene) ForEach(fn func(game_object.BatchedInstance) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.instances.ForEach(func(_ uint64, inst game_object.BatchedInstance) bool {
		return fn(inst)
	})
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances.ForEach(func(_ uint64, inst game_object.BatchedInstance) bool {
		inst.ExitTree()
		return true
	})
	s.instances.Clear()
}
