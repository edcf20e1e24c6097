package scene

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/math"
)

// Entity is a named object in a scene: a transform, an optional script and a
// set of components. The runtime ID is acquired on scene init and released on
// scene exit; the UUID is stable across save/load.
type Entity struct {
	ID         uint32
	UUID       uuid.UUID
	Name       string
	Transform  *math.Transform
	Script     string
	Components []Component
}

func NewEntity(name string) *Entity {
	return &Entity{
		UUID:      uuid.New(),
		Name:      name,
		Transform: math.TransformCreate(),
	}
}

func (e *Entity) acquireID() {
	e.ID = core.IdentifierAcquireNewID(e)
}

func (e *Entity) releaseID() {
	if err := core.IdentifierReleaseID(e.ID); err != nil {
		core.LogWarn(err.Error())
	}
	e.ID = 0
}

// Component returns the first component with the given name, or nil.
func (e *Entity) Component(name string) Component {
	for _, c := range e.Components {
		if c.ComponentName() == name {
			return c
		}
	}
	return nil
}

func (e *Entity) HasComponent(name string) bool {
	return e.Component(name) != nil
}
