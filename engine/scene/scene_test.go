package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/ember/engine/filesystem"
)

const sceneDoc = `
name = "Arena"

[[entities]]
name = "player"
position = [1.0, 2.0, 3.0]
script = "scripts/player.lua"

[entities.components.rigidbody]
mass = 80.0
extents = [0.5, 1.8, 0.5]

[[entities]]
name = "ground"

[entities.components.rigidbody]
mass = 0.0
static = true
`

func newTestScene(t *testing.T) (*Scene, string) {
	t.Helper()
	RegisterCoreComponents()

	root := t.TempDir()
	fs := filesystem.New()
	fs.SetRootDirectory(root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", "player.lua"), []byte("-- stub"), 0o644))

	s := New(fs)
	require.NoError(t, s.Deserialize([]byte(sceneDoc)))
	return s, root
}

func TestSceneDeserialize(t *testing.T) {
	s, _ := newTestScene(t)

	assert.Equal(t, "Arena", s.Name)
	require.Len(t, s.Entities, 2)

	player := s.FindEntity("player")
	require.NotNil(t, player)
	assert.Equal(t, float32(2.0), player.Transform.Position.Y)
	assert.Equal(t, "scripts/player.lua", player.Script)

	rb, ok := player.Component("rigidbody").(*RigidBodyComponent)
	require.True(t, ok)
	assert.Equal(t, float32(80.0), rb.Mass)
	assert.False(t, rb.Static)

	ground := s.FindEntity("ground")
	require.NotNil(t, ground)
	grb, ok := ground.Component("rigidbody").(*RigidBodyComponent)
	require.True(t, ok)
	assert.True(t, grb.Static)
}

func TestSceneDeserializeRejectsUnknownComponent(t *testing.T) {
	RegisterCoreComponents()
	s := New(filesystem.New())

	err := s.Deserialize([]byte(`
name = "Broken"

[[entities]]
name = "thing"

[entities.components.warpdrive]
power = 9000
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warpdrive")
}

func TestSceneOnInitObserverOrder(t *testing.T) {
	s, _ := newTestScene(t)

	var order []string
	s.OnPreInitialize(func(sc *Scene) {
		order = append(order, "pre")
		assert.False(t, sc.IsInitialized())
	})
	s.OnPostInitialize(func(sc *Scene) {
		order = append(order, "post")
		assert.True(t, sc.IsInitialized())
	})

	require.NoError(t, s.OnInit())
	assert.Equal(t, []string{"pre", "post"}, order)

	s.OnExit()
}

func TestSceneOnInitFailsOnMissingScript(t *testing.T) {
	s, root := newTestScene(t)
	require.NoError(t, os.Remove(filepath.Join(root, "scripts", "player.lua")))

	preFired := false
	s.OnPreInitialize(func(*Scene) { preFired = true })

	err := s.OnInit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player.lua")
	// Validation happens before any observer runs.
	assert.False(t, preFired)
	assert.False(t, s.IsInitialized())
}

func TestSceneDoubleInitFails(t *testing.T) {
	s, _ := newTestScene(t)

	require.NoError(t, s.OnInit())
	assert.Error(t, s.OnInit())
	s.OnExit()
}

func TestSceneOnExitIdempotent(t *testing.T) {
	s, _ := newTestScene(t)

	// Exiting a scene that never initialized is a no-op.
	s.OnExit()
	assert.False(t, s.IsInitialized())

	require.NoError(t, s.OnInit())
	s.OnExit()
	s.OnExit()
	assert.False(t, s.IsInitialized())

	// A full exit allows a clean re-init.
	require.NoError(t, s.OnInit())
	s.OnExit()
}
