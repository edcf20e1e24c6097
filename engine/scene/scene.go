package scene

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/filesystem"
	"github.com/spaghettifunk/ember/engine/math"
)

// FixedUpdatable components receive the fixed-rate scene update.
type FixedUpdatable interface {
	FixedUpdate(deltaTime float64)
}

// Scene is a deserialized level: a flat list of entities plus lifecycle
// observers. At most one scene is active in a window at a time.
type Scene struct {
	ID       uuid.UUID
	Name     string
	Path     string
	Entities []*Entity

	fs          *filesystem.FileSystem
	initialized bool

	// Readiness observers, dispatched synchronously in registration order
	// from the frame thread during OnInit.
	preInitObservers  []func(*Scene)
	postInitObservers []func(*Scene)
}

func New(fs *filesystem.FileSystem) *Scene {
	return &Scene{
		ID: uuid.New(),
		fs: fs,
	}
}

// sceneFile is the TOML shape of a .scene document.
type sceneFile struct {
	Name     string       `toml:"name"`
	Entities []entityFile `toml:"entities"`
}

type entityFile struct {
	Name       string                            `toml:"name"`
	Position   []float64                         `toml:"position"`
	Script     string                            `toml:"script"`
	Components map[string]map[string]interface{} `toml:"components"`
}

// Deserialize replaces the scene's content with the parsed document.
// Components are constructed by name through the component registry.
func (s *Scene) Deserialize(content []byte) error {
	var doc sceneFile
	if err := toml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("parse scene: %w", err)
	}

	s.Name = doc.Name
	s.Entities = s.Entities[:0]

	for _, ef := range doc.Entities {
		if ef.Name == "" {
			return fmt.Errorf("scene %s: entity with empty name", s.Name)
		}
		entity := NewEntity(ef.Name)
		if len(ef.Position) == 3 {
			entity.Transform.Position = math.NewVec3(
				float32(ef.Position[0]),
				float32(ef.Position[1]),
				float32(ef.Position[2]),
			)
		}
		entity.Script = ef.Script
		for name, props := range ef.Components {
			component, err := newComponent(name, props)
			if err != nil {
				return fmt.Errorf("scene %s, entity %s: %w", s.Name, ef.Name, err)
			}
			entity.Components = append(entity.Components, component)
		}
		s.Entities = append(s.Entities, entity)
	}
	return nil
}

// OnPreInitialize registers an observer fired just before the scene's
// internal pieces are ready.
func (s *Scene) OnPreInitialize(fn func(*Scene)) {
	s.preInitObservers = append(s.preInitObservers, fn)
}

// OnPostInitialize registers an observer fired once the scene is fully
// initialized and loaded.
func (s *Scene) OnPostInitialize(fn func(*Scene)) {
	s.postInitObservers = append(s.postInitObservers, fn)
}

// OnInit brings the scene up for play mode. Entity scripts are validated
// against the filesystem root before any observer fires, so a failed init
// leaves no observer half-notified.
func (s *Scene) OnInit() error {
	if s.initialized {
		return fmt.Errorf("scene %s is already initialized", s.Name)
	}

	for _, entity := range s.Entities {
		if entity.Script == "" {
			continue
		}
		if s.fs == nil || !s.fs.FileExists(entity.Script) {
			return fmt.Errorf("scene %s, entity %s: script %q not found", s.Name, entity.Name, entity.Script)
		}
	}

	for _, observer := range s.preInitObservers {
		observer(s)
	}

	for _, entity := range s.Entities {
		entity.acquireID()
	}
	s.initialized = true
	core.LogInfo("Scene %s initialized with %d entities", s.Name, len(s.Entities))

	for _, observer := range s.postInitObservers {
		observer(s)
	}
	return nil
}

// OnExit tears the scene down. Safe to call on a scene that never
// initialized.
func (s *Scene) OnExit() {
	if !s.initialized {
		return
	}
	for _, entity := range s.Entities {
		entity.releaseID()
	}
	s.initialized = false
	core.LogInfo("Scene %s exited", s.Name)
}

func (s *Scene) IsInitialized() bool {
	return s.initialized
}

// Update runs the variable-rate update over components that want it.
func (s *Scene) Update(deltaTime float64) {
	for _, entity := range s.Entities {
		for _, component := range entity.Components {
			if u, ok := component.(Updatable); ok {
				u.Update(deltaTime)
			}
		}
	}
}

// FixedUpdate runs the fixed-rate update over components that want it.
func (s *Scene) FixedUpdate(deltaTime float64) {
	for _, entity := range s.Entities {
		for _, component := range entity.Components {
			if u, ok := component.(FixedUpdatable); ok {
				u.FixedUpdate(deltaTime)
			}
		}
	}
}

// EditorUpdate ticks while the engine is not in play mode. Entities do not
// simulate here.
func (s *Scene) EditorUpdate(deltaTime float64) {}

// FindEntity returns the first entity with the given name, or nil.
func (s *Scene) FindEntity(name string) *Entity {
	for _, entity := range s.Entities {
		if entity.Name == name {
			return entity
		}
	}
	return nil
}
