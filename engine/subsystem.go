package engine

import (
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/scene"
	"github.com/spaghettifunk/ember/engine/scripting"
)

// Subsystem is a gameplay-level service with engine lifetime. Instances come
// from the game assembly and are rebuilt whenever it reloads.
type Subsystem interface {
	Initialize() error
	CanEverTick() bool
	Tick(deltaTime float64)
	OnScenePreDestroy(s *scene.Scene)
	OnScenePreInitialize(s *scene.Scene)
	OnScenePostInitialize(s *scene.Scene)
}

// ScriptedSubsystem bridges a script object into the Subsystem interface.
// Script errors are logged, never propagated past the hook that raised them.
type ScriptedSubsystem struct {
	name   string
	object *scripting.ScriptObject
}

func NewScriptedSubsystem(name string, object *scripting.ScriptObject) *ScriptedSubsystem {
	return &ScriptedSubsystem{name: name, object: object}
}

func (ss *ScriptedSubsystem) Name() string { return ss.name }

func (ss *ScriptedSubsystem) Object() *scripting.ScriptObject { return ss.object }

func (ss *ScriptedSubsystem) Initialize() error {
	return ss.object.Invoke("initialize")
}

func (ss *ScriptedSubsystem) CanEverTick() bool {
	return ss.object.PropertyBool("can_ever_tick")
}

func (ss *ScriptedSubsystem) Tick(deltaTime float64) {
	if err := ss.object.Invoke("tick", deltaTime); err != nil {
		core.LogError("subsystem %s tick: %s", ss.name, err)
	}
}

func (ss *ScriptedSubsystem) OnScenePreDestroy(s *scene.Scene) {
	ss.invokeSceneHook("on_scene_pre_destroy", s)
}

func (ss *ScriptedSubsystem) OnScenePreInitialize(s *scene.Scene) {
	ss.invokeSceneHook("on_scene_pre_initialize", s)
}

func (ss *ScriptedSubsystem) OnScenePostInitialize(s *scene.Scene) {
	ss.invokeSceneHook("on_scene_post_initialize", s)
}

func (ss *ScriptedSubsystem) invokeSceneHook(hook string, s *scene.Scene) {
	info := scripting.SceneInfo{}
	if s != nil {
		info.Name = s.Name
		info.Path = s.Path
	}
	if err := ss.object.Invoke(hook, info); err != nil {
		core.LogError("subsystem %s %s: %s", ss.name, hook, err)
	}
}

// SubsystemRegistry keeps subsystems in insertion order. A subsystem's ID is
// its position in that order; the name index is a secondary key over the
// same entries.
type SubsystemRegistry struct {
	ordered []*ScriptedSubsystem
	byName  map[string]*ScriptedSubsystem
}

func NewSubsystemRegistry() *SubsystemRegistry {
	return &SubsystemRegistry{
		byName: make(map[string]*ScriptedSubsystem),
	}
}

// Reset drops every registered subsystem. Called before rebuilding from a
// freshly loaded assembly.
func (r *SubsystemRegistry) Reset() {
	r.ordered = r.ordered[:0]
	r.byName = make(map[string]*ScriptedSubsystem)
}

// Add registers a subsystem and returns its assigned ID.
func (r *SubsystemRegistry) Add(ss *ScriptedSubsystem) int {
	id := len(r.ordered)
	r.ordered = append(r.ordered, ss)
	r.byName[ss.Name()] = ss
	return id
}

func (r *SubsystemRegistry) Len() int {
	return len(r.ordered)
}

// ByIndex returns the subsystem with the given ID, nil when out of range.
func (r *SubsystemRegistry) ByIndex(id int) *ScriptedSubsystem {
	if id < 0 || id >= len(r.ordered) {
		return nil
	}
	return r.ordered[id]
}

// ByName returns the named subsystem, nil when absent.
func (r *SubsystemRegistry) ByName(name string) *ScriptedSubsystem {
	return r.byName[name]
}

// Ordered returns the subsystems in registration order. Callers must not
// mutate the returned slice.
func (r *SubsystemRegistry) Ordered() []*ScriptedSubsystem {
	return r.ordered
}
