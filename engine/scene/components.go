package scene

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine/math"
)

// Component is a piece of data attached to an entity. Concrete component
// types are constructed by name through the registry so that scene files can
// reference them without the deserializer knowing every type.
type Component interface {
	ComponentName() string
}

// Updatable components receive the variable-rate scene update.
type Updatable interface {
	Update(deltaTime float64)
}

type ComponentFactory func(props map[string]interface{}) (Component, error)

var componentFactories = map[string]ComponentFactory{}

// RegisterComponent binds a component name to its factory. Later
// registrations for the same name win, which lets games override built-ins.
func RegisterComponent(name string, factory ComponentFactory) {
	componentFactories[name] = factory
}

func newComponent(name string, props map[string]interface{}) (Component, error) {
	factory, ok := componentFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown component type %q", name)
	}
	return factory(props)
}

// RegisterCoreComponents installs the built-in component types. Called once
// from engine Init, before any scene is deserialized.
func RegisterCoreComponents() {
	RegisterComponent("rigidbody", newRigidBodyComponent)
	RegisterComponent("navagent", newNavAgentComponent)
	RegisterComponent("audiosource", newAudioSourceComponent)
}

// RigidBodyComponent marks an entity as physics-simulated.
type RigidBodyComponent struct {
	Mass    float32
	Extents math.Vec3
	Static  bool
}

func (c *RigidBodyComponent) ComponentName() string { return "rigidbody" }

func newRigidBodyComponent(props map[string]interface{}) (Component, error) {
	c := &RigidBodyComponent{
		Mass:    1.0,
		Extents: math.NewVec3One(),
	}
	if v, ok := props["mass"]; ok {
		mass, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("rigidbody: mass must be a number")
		}
		c.Mass = float32(mass)
	}
	if v, ok := props["static"]; ok {
		s, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("rigidbody: static must be a boolean")
		}
		c.Static = s
	}
	if v, ok := props["extents"]; ok {
		e, err := toVec3(v)
		if err != nil {
			return nil, fmt.Errorf("rigidbody: %w", err)
		}
		c.Extents = e
	}
	return c, nil
}

// NavAgentComponent marks an entity as navigating the scene's nav surface.
type NavAgentComponent struct {
	Speed float32
}

func (c *NavAgentComponent) ComponentName() string { return "navagent" }

func newNavAgentComponent(props map[string]interface{}) (Component, error) {
	c := &NavAgentComponent{Speed: 1.0}
	if v, ok := props["speed"]; ok {
		speed, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("navagent: speed must be a number")
		}
		c.Speed = float32(speed)
	}
	return c, nil
}

// AudioSourceComponent plays a clip through the audio manager's voice pool.
type AudioSourceComponent struct {
	Clip    string
	Volume  float32
	Looping bool
}

func (c *AudioSourceComponent) ComponentName() string { return "audiosource" }

func newAudioSourceComponent(props map[string]interface{}) (Component, error) {
	c := &AudioSourceComponent{Volume: 1.0}
	if v, ok := props["clip"]; ok {
		clip, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("audiosource: clip must be a string")
		}
		c.Clip = clip
	}
	if v, ok := props["volume"]; ok {
		vol, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("audiosource: volume must be a number")
		}
		c.Volume = float32(math.Clamp(vol, 0.0, 1.0))
	}
	if v, ok := props["looping"]; ok {
		l, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("audiosource: looping must be a boolean")
		}
		c.Looping = l
	}
	return c, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toVec3(v interface{}) (math.Vec3, error) {
	raw, ok := v.([]interface{})
	if !ok || len(raw) != 3 {
		return math.Vec3{}, fmt.Errorf("expected an array of 3 numbers")
	}
	var out [3]float32
	for i, item := range raw {
		f, ok := toFloat(item)
		if !ok {
			return math.Vec3{}, fmt.Errorf("expected an array of 3 numbers")
		}
		out[i] = float32(f)
	}
	return math.NewVec3(out[0], out[1], out[2]), nil
}
