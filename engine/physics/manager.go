package physics

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/math"
	"github.com/spaghettifunk/ember/engine/scene"
)

var ErrNotInitialized = fmt.Errorf("physics manager is not initialized")

// Manager owns the physics world. ReInit rebuilds the world wholesale; it is
// called on every play-mode entry and every scene swap, so it must be
// idempotent.
type Manager struct {
	world       *World
	gravity     math.Vec3
	initialized bool
}

func NewManager() *Manager {
	return &Manager{
		gravity: math.NewVec3(0, -9.81, 0),
	}
}

func (m *Manager) Init() error {
	if m.initialized {
		return nil
	}
	m.world = NewWorld(m.gravity)
	m.initialized = true
	core.LogInfo("Physics manager initialized")
	return nil
}

// ReInit throws away the current world and starts a fresh one. Bodies from
// the previous world do not survive; scene init repopulates them.
func (m *Manager) ReInit() error {
	if !m.initialized {
		return m.Init()
	}
	m.world = NewWorld(m.gravity)
	core.LogDebug("Physics world rebuilt")
	return nil
}

func (m *Manager) World() *World {
	return m.world
}

// PopulateFromScene registers a body for every rigidbody-carrying entity.
func (m *Manager) PopulateFromScene(s *scene.Scene) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	for _, entity := range s.Entities {
		c := entity.Component("rigidbody")
		if c == nil {
			continue
		}
		rb, ok := c.(*scene.RigidBodyComponent)
		if !ok {
			continue
		}
		m.world.AddBody(&Body{
			EntityID:  entity.ID,
			Transform: entity.Transform,
			Mass:      rb.Mass,
			Extents:   rb.Extents,
			Static:    rb.Static,
		})
	}
	return nil
}

// Step advances the world by one fixed interval. Called only from the
// fixed-step loop.
func (m *Manager) Step(deltaTime float64) {
	if !m.initialized || m.world == nil {
		return
	}
	m.world.Step(float32(deltaTime))
}

func (m *Manager) Shutdown() error {
	m.world = nil
	m.initialized = false
	return nil
}
