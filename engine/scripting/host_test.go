package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/ember/engine/filesystem"
	"github.com/spaghettifunk/ember/engine/resources"
)

const subsystemScript = `
Announcer = class("Announcer", EngineSubsystem)

function Announcer:initialize()
    self.initialized = true
    self.tick_count = 0
end

function Announcer:tick(dt)
    self.tick_count = self.tick_count + 1
    self.last_dt = dt
end

function Announcer:on_scene_pre_destroy(scene)
    self.destroyed_scene = scene.name
end
`

const helperScript = `
-- Plain type, not a subsystem.
Vec = class("Vec")

Quiet = class("Quiet", EngineSubsystem)
Quiet.can_ever_tick = false
`

func newTestHost(t *testing.T, scripts map[string]string) (*Host, *resources.Project) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o755))
	for name, source := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", name), []byte(source), 0o644))
	}

	fs := filesystem.New()
	fs.SetRootDirectory(root)

	host := NewHost(fs)
	require.NoError(t, host.Initialize())

	project := &resources.Project{
		Name:         "Test",
		DefaultScene: "scenes/main.scene",
		ScriptsDir:   "scripts",
		FullPath:     filepath.Join(root, "test.ember"),
	}
	return host, project
}

func TestHostLoadsTypesInDeclarationOrder(t *testing.T) {
	host, project := newTestHost(t, map[string]string{
		"a_announcer.lua": subsystemScript,
		"b_helpers.lua":   helperScript,
	})

	require.NoError(t, host.LoadProjectAssembly(project))
	assembly := host.GameAssembly()
	require.NotNil(t, assembly)

	var names []string
	for _, st := range assembly.Types() {
		names = append(names, st.FullName())
	}
	// The prelude declares the base type first; scripts load sorted by file
	// name after it.
	assert.Equal(t, []string{"EngineSubsystem", "Announcer", "Vec", "Quiet"}, names)
}

func TestScriptTypeSubclassFilter(t *testing.T) {
	host, project := newTestHost(t, map[string]string{
		"a_announcer.lua": subsystemScript,
		"b_helpers.lua":   helperScript,
	})
	require.NoError(t, host.LoadProjectAssembly(project))
	assembly := host.GameAssembly()

	base := assembly.Type(BaseSubsystemTypeName)
	require.NotNil(t, base)

	assert.True(t, assembly.Type("Announcer").IsSubclassOf(base))
	assert.True(t, assembly.Type("Quiet").IsSubclassOf(base))
	assert.False(t, assembly.Type("Vec").IsSubclassOf(base))
	// A type is not a subclass of itself.
	assert.False(t, base.IsSubclassOf(base))
}

func TestScriptObjectLifecycleHooks(t *testing.T) {
	host, project := newTestHost(t, map[string]string{
		"announcer.lua": subsystemScript,
	})
	require.NoError(t, host.LoadProjectAssembly(project))

	announcer := host.GameAssembly().Type("Announcer")
	require.NotNil(t, announcer)

	obj, err := announcer.CreateInstance()
	require.NoError(t, err)

	require.NoError(t, obj.Invoke("initialize"))
	assert.True(t, obj.PropertyBool("initialized"))

	require.NoError(t, obj.Invoke("tick", 0.25))
	require.NoError(t, obj.Invoke("tick", 0.25))
	count, ok := obj.PropertyNumber("tick_count")
	require.True(t, ok)
	assert.Equal(t, 2.0, count)
	last, ok := obj.PropertyNumber("last_dt")
	require.True(t, ok)
	assert.Equal(t, 0.25, last)

	// Hooks not overridden fall back to the base type's empty defaults.
	require.NoError(t, obj.Invoke("on_scene_post_initialize", SceneInfo{Name: "Arena"}))
}

func TestScriptObjectProperties(t *testing.T) {
	host, project := newTestHost(t, map[string]string{
		"helpers.lua": helperScript,
	})
	require.NoError(t, host.LoadProjectAssembly(project))

	quiet, err := host.GameAssembly().Type("Quiet").CreateInstance()
	require.NoError(t, err)

	// can_ever_tick resolves through the type chain.
	assert.False(t, quiet.PropertyBool("can_ever_tick"))

	require.NoError(t, quiet.SetPropertyValue("id", 3))
	id, ok := quiet.PropertyNumber("id")
	require.True(t, ok)
	assert.Equal(t, 3.0, id)

	// The base default is visible on types that never set it.
	assert.Error(t, quiet.Invoke("no_such_method"))
}

func TestHostInstancesAreIndependent(t *testing.T) {
	host, project := newTestHost(t, map[string]string{
		"announcer.lua": subsystemScript,
	})
	require.NoError(t, host.LoadProjectAssembly(project))

	announcer := host.GameAssembly().Type("Announcer")
	a, err := announcer.CreateInstance()
	require.NoError(t, err)
	b, err := announcer.CreateInstance()
	require.NoError(t, err)

	require.NoError(t, a.Invoke("initialize"))
	require.NoError(t, b.Invoke("initialize"))
	require.NoError(t, a.Invoke("tick", 0.1))

	countA, _ := a.PropertyNumber("tick_count")
	countB, _ := b.PropertyNumber("tick_count")
	assert.Equal(t, 1.0, countA)
	assert.Equal(t, 0.0, countB)
}

func TestHostReloadProducesFreshAssembly(t *testing.T) {
	host, project := newTestHost(t, map[string]string{
		"announcer.lua": subsystemScript,
	})
	require.NoError(t, host.LoadProjectAssembly(project))
	first := host.GameAssembly()

	loads := 0
	host.OnGameAssemblyLoaded(func() { loads++ })

	// Nothing pending, nothing happens.
	host.ProcessPending()
	assert.Zero(t, loads)

	// Requests collapse into a single reload.
	host.RequestReload()
	host.RequestReload()
	host.ProcessPending()
	assert.Equal(t, 1, loads)
	assert.NotSame(t, first, host.GameAssembly())

	host.ProcessPending()
	assert.Equal(t, 1, loads)
}

func TestHostLoadFailsOnBrokenScript(t *testing.T) {
	host, project := newTestHost(t, map[string]string{
		"broken.lua": "this is not lua(",
	})

	err := host.LoadProjectAssembly(project)
	require.Error(t, err)
	// A failed load never publishes a partial assembly.
	assert.Nil(t, host.GameAssembly())
}

func TestHostMissingScriptsDirIsEmptyAssembly(t *testing.T) {
	root := t.TempDir()
	fs := filesystem.New()
	fs.SetRootDirectory(root)

	host := NewHost(fs)
	require.NoError(t, host.Initialize())

	project := &resources.Project{Name: "Bare", DefaultScene: "x.scene", ScriptsDir: "scripts"}
	require.NoError(t, host.LoadProjectAssembly(project))

	// Only the prelude's base type exists.
	require.Len(t, host.GameAssembly().Types(), 1)
	assert.Equal(t, BaseSubsystemTypeName, host.GameAssembly().Types()[0].FullName())
}
