package scripting

import (
	"fmt"

	"github.com/Shopify/go-lua"
)

// BaseSubsystemTypeName is the qualified name of the well-known base type
// scripted subsystems must derive from.
const BaseSubsystemTypeName = "EngineSubsystem"

// SceneInfo is the shape scene lifecycle hooks receive on the script side.
type SceneInfo struct {
	Name string
	Path string
}

// Assembly is one loaded game-script bundle: a Lua state plus the types the
// bundle declared, enumerated in declaration order. A reload produces a brand
// new Assembly; nothing is patched in place.
type Assembly struct {
	state       *lua.State
	types       []*ScriptType
	byName      map[string]*ScriptType
	instanceSeq int
}

// Types returns every declared type in declaration order, the base type
// included.
func (a *Assembly) Types() []*ScriptType {
	return a.types
}

// Type returns the declared type with the given qualified name, or nil.
func (a *Assembly) Type(name string) *ScriptType {
	return a.byName[name]
}

// enumerateTypes walks the prelude's __script_types registry and pins every
// type table into the Lua registry so Go-side handles stay valid.
func (a *Assembly) enumerateTypes() error {
	l := a.state
	l.Global("__script_types")
	if l.TypeOf(-1) != lua.TypeTable {
		l.Pop(1)
		return fmt.Errorf("assembly prelude is missing the type registry")
	}

	count := l.RawLength(-1)
	for i := 1; i <= count; i++ {
		l.RawGetInt(-1, i)
		l.Field(-1, "__typename")
		name, ok := l.ToString(-1)
		l.Pop(1)
		if !ok || name == "" {
			l.Pop(1)
			return fmt.Errorf("script type %d has no __typename", i)
		}
		if _, exists := a.byName[name]; exists {
			l.Pop(1)
			return fmt.Errorf("duplicate script type %q", name)
		}

		t := &ScriptType{
			assembly:    a,
			name:        name,
			registryKey: "ember.type." + name,
		}
		// Pops the type table into the registry slot.
		l.SetField(lua.RegistryIndex, t.registryKey)

		a.types = append(a.types, t)
		a.byName[name] = t
	}
	l.Pop(1)
	return nil
}

// ScriptType is a handle on a type table declared by the assembly.
type ScriptType struct {
	assembly    *Assembly
	name        string
	registryKey string
}

// FullName returns the qualified name the type was declared with.
func (t *ScriptType) FullName() string {
	return t.name
}

// IsSubclassOf walks the metatable chain. A type is not a subclass of
// itself.
func (t *ScriptType) IsSubclassOf(base *ScriptType) bool {
	if base == nil || t.assembly != base.assembly {
		return false
	}
	l := t.assembly.state
	l.Global("__is_subclass_of")
	l.Field(lua.RegistryIndex, t.registryKey)
	l.Field(lua.RegistryIndex, base.registryKey)
	if err := l.ProtectedCall(2, 1, 0); err != nil {
		l.Pop(1)
		return false
	}
	result := l.ToBoolean(-1)
	l.Pop(1)
	return result
}

// CreateInstance constructs a fresh object of this type and pins it in the
// Lua registry.
func (t *ScriptType) CreateInstance() (*ScriptObject, error) {
	l := t.assembly.state
	base := l.Top()
	l.Global("__new_instance")
	l.Field(lua.RegistryIndex, t.registryKey)
	if err := l.ProtectedCall(1, 1, 0); err != nil {
		l.SetTop(base)
		return nil, fmt.Errorf("instantiate %s: %w", t.name, err)
	}

	t.assembly.instanceSeq++
	obj := &ScriptObject{
		assembly:    t.assembly,
		typeName:    t.name,
		registryKey: fmt.Sprintf("ember.obj.%s.%d", t.name, t.assembly.instanceSeq),
	}
	l.SetField(lua.RegistryIndex, obj.registryKey)
	return obj, nil
}

// ScriptObject is a handle on one script-side object instance.
type ScriptObject struct {
	assembly    *Assembly
	typeName    string
	registryKey string
}

func (o *ScriptObject) TypeName() string {
	return o.typeName
}

// SetPropertyValue writes a field on the object.
func (o *ScriptObject) SetPropertyValue(name string, value interface{}) error {
	l := o.assembly.state
	l.Field(lua.RegistryIndex, o.registryKey)
	if err := pushGoValue(l, value); err != nil {
		l.Pop(1)
		return err
	}
	l.SetField(-2, name)
	l.Pop(1)
	return nil
}

// PropertyBool reads a boolean field, falling back through the type chain.
func (o *ScriptObject) PropertyBool(name string) bool {
	l := o.assembly.state
	l.Field(lua.RegistryIndex, o.registryKey)
	l.Field(-1, name)
	result := l.ToBoolean(-1)
	l.Pop(2)
	return result
}

// PropertyNumber reads a numeric field, falling back through the type chain.
func (o *ScriptObject) PropertyNumber(name string) (float64, bool) {
	l := o.assembly.state
	l.Field(lua.RegistryIndex, o.registryKey)
	l.Field(-1, name)
	result, ok := l.ToNumber(-1)
	l.Pop(2)
	return result, ok
}

// Invoke calls a method on the object with the given arguments. Missing
// methods are an error; the base type provides empty defaults for every
// lifecycle hook, so a missing hook means a broken assembly.
func (o *ScriptObject) Invoke(method string, args ...interface{}) error {
	l := o.assembly.state
	base := l.Top()
	l.Field(lua.RegistryIndex, o.registryKey)
	l.Field(-1, method)
	if l.TypeOf(-1) != lua.TypeFunction {
		l.SetTop(base)
		return fmt.Errorf("%s has no method %q", o.typeName, method)
	}
	// self argument
	l.PushValue(-2)
	for _, arg := range args {
		if err := pushGoValue(l, arg); err != nil {
			l.SetTop(base)
			return err
		}
	}
	if err := l.ProtectedCall(1+len(args), 0, 0); err != nil {
		l.SetTop(base)
		return fmt.Errorf("%s.%s: %w", o.typeName, method, err)
	}
	l.SetTop(base)
	return nil
}

func pushGoValue(l *lua.State, value interface{}) error {
	switch v := value.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(v)
	case int:
		l.PushInteger(v)
	case uint32:
		l.PushInteger(int(v))
	case float32:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case string:
		l.PushString(v)
	case SceneInfo:
		l.NewTable()
		l.PushString(v.Name)
		l.SetField(-2, "name")
		l.PushString(v.Path)
		l.SetField(-2, "path")
	default:
		return fmt.Errorf("unsupported script argument type %T", value)
	}
	return nil
}
