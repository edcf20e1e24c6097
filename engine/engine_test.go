package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/modules"
)

const rulesScript = `
Rules = class("Rules", EngineSubsystem)

function Rules:initialize()
    self.ready = true
    self.ticks = 0
    self.scene_destroys = 0
    self.scene_inits = 0
end

function Rules:tick(dt)
    self.ticks = self.ticks + 1
end

function Rules:on_scene_pre_destroy(scene)
    self.scene_destroys = self.scene_destroys + 1
end

function Rules:on_scene_post_initialize(scene)
    self.scene_inits = self.scene_inits + 1
end
`

const silentScript = `
Silent = class("Silent", EngineSubsystem)
Silent.can_ever_tick = false

function Silent:initialize()
    self.ticks = 0
end

function Silent:tick(dt)
    self.ticks = self.ticks + 1
end

-- Plain helper type, must never become a subsystem.
Palette = class("Palette")
`

const mainScene = `
name = "Main"

[[entities]]
name = "player"
position = [0.0, 1.0, 0.0]
script = "scripts/player.lua"

[entities.components.rigidbody]
mass = 80.0
`

const otherScene = `
name = "Other"

[[entities]]
name = "crate"

[entities.components.rigidbody]
mass = 10.0
`

// writeProject lays a complete project on disk and returns the project file
// path.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "scenes"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o755))

	files := map[string]string{
		"project.ember":        "name = \"Test\"\ndefault_scene = \"scenes/main.scene\"\nscripts = \"scripts\"\n",
		"scenes/main.scene":    mainScene,
		"scripts/player.lua":   "-- entity script stub",
		"scripts/a_rules.lua":  rulesScript,
		"scripts/b_silent.lua": silentScript,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return filepath.Join(root, "project.ember")
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(&ApplicationConfig{
		Name:        "test",
		StartWidth:  640,
		StartHeight: 480,
		LogLevel:    core.ErrorLevel,
		Headless:    true,
	})
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

func newPlayableEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	e := newTestEngine(t)
	projectPath := writeProject(t)
	require.NoError(t, e.LoadProject(projectPath))
	return e, filepath.Dir(projectPath)
}

func TestEnginePlayModeTransitions(t *testing.T) {
	e, _ := newPlayableEngine(t)

	assert.Equal(t, GameStateStopped, e.State())
	require.NotNil(t, e.Window().Scene())
	assert.Equal(t, "Main", e.Window().Scene().Name)

	e.EnterPlayMode()
	assert.Equal(t, GameStatePlaying, e.State())
	assert.True(t, e.Window().Scene().IsInitialized())

	// Re-entry while playing is a no-op.
	e.EnterPlayMode()
	assert.Equal(t, GameStatePlaying, e.State())

	e.ExitPlayMode()
	assert.Equal(t, GameStateStopped, e.State())
	assert.False(t, e.Window().Scene().IsInitialized())

	// Exit is idempotent.
	e.ExitPlayMode()
	assert.Equal(t, GameStateStopped, e.State())

	// A stopped engine can start playing again.
	e.EnterPlayMode()
	assert.Equal(t, GameStatePlaying, e.State())
}

func TestEnginePlayModeWithoutScene(t *testing.T) {
	e := newTestEngine(t)

	e.EnterPlayMode()
	assert.Equal(t, GameStateStopped, e.State())
}

func TestEngineFailedSceneInitLeavesStopped(t *testing.T) {
	e, root := newPlayableEngine(t)

	// The scene references scripts/player.lua; removing it makes OnInit fail.
	require.NoError(t, os.Remove(filepath.Join(root, "scripts", "player.lua")))

	e.EnterPlayMode()
	assert.Equal(t, GameStateStopped, e.State())
	assert.False(t, e.Window().Scene().IsInitialized())
}

func TestEngineSubsystemRegistry(t *testing.T) {
	e, _ := newPlayableEngine(t)

	// Nothing is registered until a play session scans the assembly.
	assert.Nil(t, e.GetScriptedSubsystem("Rules"))

	e.EnterPlayMode()

	rules := e.GetScriptedSubsystem("Rules")
	require.NotNil(t, rules)
	silent := e.GetScriptedSubsystem("Silent")
	require.NotNil(t, silent)
	// Plain script types never become subsystems.
	assert.Nil(t, e.GetScriptedSubsystem("Palette"))

	// IDs follow insertion order and both lookups agree.
	assert.Same(t, rules, e.GetScriptedSubsystemByID(0))
	assert.Same(t, silent, e.GetScriptedSubsystemByID(1))
	assert.Nil(t, e.GetScriptedSubsystemByID(2))
	assert.Nil(t, e.GetScriptedSubsystemByID(-1))

	id, ok := rules.Object().PropertyNumber("id")
	require.True(t, ok)
	assert.Equal(t, 0.0, id)
	id, ok = silent.Object().PropertyNumber("id")
	require.True(t, ok)
	assert.Equal(t, 1.0, id)

	// Initialize ran on discovery.
	assert.True(t, rules.Object().PropertyBool("ready"))
}

func TestEngineSubsystemTickGating(t *testing.T) {
	e, _ := newPlayableEngine(t)

	// Ticking while stopped reaches no subsystem.
	e.Tick()

	e.EnterPlayMode()
	rules := e.GetScriptedSubsystem("Rules")
	silent := e.GetScriptedSubsystem("Silent")
	require.NotNil(t, rules)
	require.NotNil(t, silent)

	for i := 0; i < 3; i++ {
		e.Tick()
	}

	ticks, _ := rules.Object().PropertyNumber("ticks")
	assert.Equal(t, 3.0, ticks)

	// can_ever_tick false means the subsystem is skipped entirely.
	silentTicks, _ := silent.Object().PropertyNumber("ticks")
	assert.Zero(t, silentTicks)

	e.ExitPlayMode()
	e.Tick()
	ticks, _ = rules.Object().PropertyNumber("ticks")
	assert.Equal(t, 3.0, ticks)
}

func TestEngineQueueSceneSwitchOnlyWhilePlaying(t *testing.T) {
	e, _ := newPlayableEngine(t)

	assert.False(t, e.QueueSceneSwitch("scenes/other.scene"))

	e.EnterPlayMode()
	assert.True(t, e.QueueSceneSwitch("scenes/other.scene"))
}

func TestEngineQueuedSwitchRetriesUntilSceneAppears(t *testing.T) {
	e, root := newPlayableEngine(t)

	e.EnterPlayMode()
	require.True(t, e.QueueSceneSwitch("scenes/other.scene"))

	// The scene file does not exist yet; the switch keeps retrying without
	// disturbing the current scene.
	for i := 0; i < 3; i++ {
		e.Tick()
		assert.Equal(t, "Main", e.Window().Scene().Name)
		assert.Equal(t, GameStatePlaying, e.State())
	}

	require.NoError(t, os.WriteFile(filepath.Join(root, "scenes", "other.scene"), []byte(otherScene), 0o644))

	e.Tick()
	assert.Equal(t, "Other", e.Window().Scene().Name)
	assert.True(t, e.Window().Scene().IsInitialized())
	assert.Equal(t, GameStatePlaying, e.State())
}

func TestEngineSceneSwitchNotifiesSubsystems(t *testing.T) {
	e, root := newPlayableEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "scenes", "other.scene"), []byte(otherScene), 0o644))

	e.EnterPlayMode()
	rules := e.GetScriptedSubsystem("Rules")
	require.NotNil(t, rules)

	// Entering play mode already initialized the main scene once.
	inits, _ := rules.Object().PropertyNumber("scene_inits")
	require.Equal(t, 1.0, inits)

	require.True(t, e.QueueSceneSwitch("scenes/other.scene"))
	e.Tick()

	destroys, _ := rules.Object().PropertyNumber("scene_destroys")
	assert.Equal(t, 1.0, destroys)
	inits, _ = rules.Object().PropertyNumber("scene_inits")
	assert.Equal(t, 2.0, inits)
}

func TestEngineExitPlayModeDropsQueuedSwitch(t *testing.T) {
	e, root := newPlayableEngine(t)

	e.EnterPlayMode()
	require.True(t, e.QueueSceneSwitch("scenes/other.scene"))
	e.ExitPlayMode()

	require.NoError(t, os.WriteFile(filepath.Join(root, "scenes", "other.scene"), []byte(otherScene), 0o644))

	// The dropped request must not resurface on the next play session.
	e.EnterPlayMode()
	e.Tick()
	assert.Equal(t, "Main", e.Window().Scene().Name)
}

func TestWindowRejectsNilScene(t *testing.T) {
	e := newTestEngine(t)
	assert.Error(t, e.Window().SetScene(nil))
}

func TestEngineModuleHooks(t *testing.T) {
	e, err := New(&ApplicationConfig{
		Name:        "test",
		StartWidth:  640,
		StartHeight: 480,
		LogLevel:    core.ErrorLevel,
		Headless:    true,
	})
	require.NoError(t, err)

	var trace []string
	require.NoError(t, e.RegisterModule(modules.Module{
		Name:     "analytics",
		Startup:  func() error { trace = append(trace, "up"); return nil },
		Shutdown: func() error { trace = append(trace, "down"); return nil },
	}))

	require.NoError(t, e.Initialize())
	assert.Equal(t, []string{"up"}, trace)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, []string{"up", "down"}, trace)
}

func TestGameStateString(t *testing.T) {
	assert.Equal(t, "stopped", GameStateStopped.String())
	assert.Equal(t, "loading", GameStateLoading.String())
	assert.Equal(t, "playing", GameStatePlaying.String())
}
